package templates

import (
	"resumeforge/internal/errors"
	"resumeforge/internal/layout"
)

// GenerateOptions carry document metadata and the logger for one build.
type GenerateOptions struct {
	Title  string
	Author string
	Logger *errors.Logger
}

// Generate composes data with t and lays it out on page.
func Generate[T any](t Template[T], data T, page layout.PageSize, opts GenerateOptions) (*layout.Result, error) {
	g, err := t.Geometry(page)
	if err != nil {
		return nil, err
	}

	comp, err := t.Compose(data)
	if err != nil {
		return nil, errors.NewRenderError(errors.ErrCodeComposeFailed, "failed to compose document", err).
			WithContext("template", t.Name())
	}

	logger := opts.Logger
	if logger == nil {
		logger = errors.Discard()
	}
	engine, err := layout.NewEngine(layout.Options{
		Geometry: g,
		Decorate: t.Decorate,
		Title:    opts.Title,
		Author:   opts.Author,
		Logger:   logger.With("template", t.Name()),
	})
	if err != nil {
		return nil, err
	}

	for _, b := range comp.Main {
		if err := engine.AppendMain(b); err != nil {
			return nil, err
		}
	}
	for _, b := range comp.Sidebar {
		if err := engine.AppendSidebar(b); err != nil {
			return nil, err
		}
	}

	logger.Debug("composed document",
		"template", t.Name(),
		"page_size", page.Name,
		"main_blocks", len(comp.Main),
		"sidebar_blocks", len(comp.Sidebar))

	return engine.Build()
}
