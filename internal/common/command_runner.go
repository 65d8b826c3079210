package common

import (
	"bytes"
	"context"
	"io"
	"path/filepath"

	"resumeforge/internal/errors"
	"resumeforge/internal/formatters"
	"resumeforge/internal/layout"
	"resumeforge/internal/resume"
	"resumeforge/internal/templates"
	"resumeforge/internal/utils"
)

// Renderable is a decoded document that can check itself before layout.
type Renderable interface {
	Validate() error
}

// DocumentMeta are the fields the render command reads from a document.
type DocumentMeta struct {
	Name     string
	Title    string
	Template string
	PageSize string
}

// DocumentKind ties a document type to its decoder and templates.
type DocumentKind[T Renderable] struct {
	Kind     string
	Registry *templates.Registry[T]
	Decode   func(io.Reader) (T, error)
	Meta     func(T) DocumentMeta
}

// ResumeKind renders resumes with the given registry.
func ResumeKind(reg *templates.Registry[*resume.Resume]) DocumentKind[*resume.Resume] {
	return DocumentKind[*resume.Resume]{
		Kind:     resume.KindResume,
		Registry: reg,
		Decode:   resume.Decode,
		Meta: func(r *resume.Resume) DocumentMeta {
			return DocumentMeta{Name: r.PersonalInfo.Name, Title: r.PersonalInfo.Title, Template: r.TemplateName, PageSize: r.PageSize}
		},
	}
}

// CoverLetterKind renders cover letters with the given registry.
func CoverLetterKind(reg *templates.Registry[*resume.CoverLetter]) DocumentKind[*resume.CoverLetter] {
	return DocumentKind[*resume.CoverLetter]{
		Kind:     resume.KindCoverLetter,
		Registry: reg,
		Decode:   resume.DecodeCoverLetter,
		Meta: func(c *resume.CoverLetter) DocumentMeta {
			return DocumentMeta{Name: c.Name, Title: c.Title, Template: c.TemplateName, PageSize: c.PageSize}
		},
	}
}

// RenderConfig holds the render command's flags.
type RenderConfig struct {
	CommandConfig

	// Template and PageSize override the document's own choice when set.
	Template string
	PageSize string

	// Output is the PDF path. When empty a name is derived from the
	// document and placed in OutputDir.
	Output    string
	OutputDir string
}

// RunRenderCommand reads input, lays the document out, writes the PDF and
// reports the build.
func RunRenderCommand[T Renderable](
	ctx context.Context,
	logger *errors.Logger,
	kind DocumentKind[T],
	cfg RenderConfig,
	input string,
	out io.Writer,
) (*formatters.Report, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger, out)

	if err := ValidatePageSize(cfg.PageSize); err != nil {
		return nil, err
	}

	content, err := fileProcessor.ValidateAndReadFile(input)
	if err != nil {
		return nil, err
	}

	doc, err := kind.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	meta := kind.Meta(doc)
	if cfg.Template != "" {
		meta.Template = cfg.Template
	}
	if cfg.PageSize != "" {
		meta.PageSize = cfg.PageSize
	}

	tmpl, err := kind.Registry.Get(meta.Template)
	if err != nil {
		return nil, err
	}
	page := layout.ParsePageSize(meta.PageSize)

	logger.Info("Rendering document",
		"kind", kind.Kind,
		"input", input,
		"template", tmpl.Name(),
		"page_size", page.Name)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := templates.Generate(tmpl, doc, page, templates.GenerateOptions{
		Title:  meta.Name,
		Author: meta.Name,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	output := cfg.Output
	if output == "" {
		output = filepath.Join(cfg.OutputDir, resume.Filename(meta.Name, kind.Kind))
	} else if !utils.IsPDFFile(output) {
		logger.Warn("Output file does not end in .pdf", "file", output)
	}
	if err := fileProcessor.WriteFile(output, result.Document); err != nil {
		return nil, err
	}

	logger.Info("Document written",
		"file", output,
		"size", utils.FormatFileSize(int64(len(result.Document))),
		"pages", result.TotalPages,
		"warnings", len(result.Warnings))

	report := &formatters.Report{
		Template: tmpl.Name(),
		Kind:     kind.Kind,
		PageSize: page.Name,
		Output:   output,
		Bytes:    len(result.Document),
		Result:   result,
	}
	if err := outputHandler.HandleOutput(report, cfg.CommandConfig); err != nil {
		return report, err
	}
	return report, nil
}
