// Package formatters renders build reports and template listings for the
// command line in json, text or markdown.
package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"resumeforge/internal/layout"
	"resumeforge/internal/templates"
)

// Report summarizes one rendered document.
type Report struct {
	Template string         `json:"template"`
	Kind     string         `json:"kind"`
	PageSize string         `json:"page_size"`
	Output   string         `json:"output"`
	Bytes    int            `json:"bytes"`
	Result   *layout.Result `json:"layout"`
}

// TemplateList is the set of templates available for each document kind.
type TemplateList map[string][]templates.Info

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "Report", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "Report", &ReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "TemplateList", &TemplateListTextFormatter{})
	registry.RegisterFormatter("markdown", "TemplateList", &TemplateListMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case Report, *Report:
		return "Report"
	case TemplateList:
		return "TemplateList"
	default:
		return "any"
	}
}

func asReport(data any) (Report, error) {
	switch r := data.(type) {
	case Report:
		return r, nil
	case *Report:
		if r == nil {
			return Report{}, fmt.Errorf("nil report")
		}
		return *r, nil
	default:
		return Report{}, fmt.Errorf("expected Report, got %T", data)
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ReportTextFormatter handles text formatting for build reports
type ReportTextFormatter struct{}

func (f *ReportTextFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}
	res := report.Result
	if res == nil {
		res = &layout.Result{}
	}

	var output strings.Builder

	output.WriteString("=== DOCUMENT ===\n")
	fmt.Fprintf(&output, "Output:    %s (%d bytes)\n", report.Output, report.Bytes)
	fmt.Fprintf(&output, "Template:  %s (%s)\n", report.Template, report.Kind)
	fmt.Fprintf(&output, "Page size: %s\n\n", report.PageSize)

	output.WriteString("=== PAGES ===\n")
	fmt.Fprintf(&output, "Main: %d  Overflow: %d  Total: %d\n\n", res.MainPages, res.OverflowPages, res.TotalPages)

	output.WriteString("=== SIDEBAR PLACEMENT ===\n")
	if len(res.Placements) == 0 {
		output.WriteString("No sidebar content\n")
	}
	for _, p := range res.Placements {
		fmt.Fprintf(&output, "Page %d: blocks %s", p.Page, blockRange(p.Blocks))
		if p.Forced {
			output.WriteString(" (forced)")
		}
		output.WriteString("\n")
	}
	output.WriteString("\n")

	fmt.Fprintf(&output, "=== WARNINGS (%d) ===\n", len(res.Warnings))
	if len(res.Warnings) == 0 {
		output.WriteString("None\n")
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&output, "[%s] page %d, %s block %d: %s\n", w.Kind, w.Page, w.Column, w.Block, w.Message)
	}
	if res.FailedBlocks > 0 {
		fmt.Fprintf(&output, "\nFailed blocks: %d\n", res.FailedBlocks)
	}

	return output.String(), nil
}

func (f *ReportTextFormatter) SupportedType() string {
	return "Report"
}

// ReportMarkdownFormatter handles markdown formatting for build reports
type ReportMarkdownFormatter struct{}

func (f *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, err := asReport(data)
	if err != nil {
		return "", err
	}
	res := report.Result
	if res == nil {
		res = &layout.Result{}
	}

	var output strings.Builder

	output.WriteString("# Build Report\n\n")
	fmt.Fprintf(&output, "- **Output:** `%s` (%d bytes)\n", report.Output, report.Bytes)
	fmt.Fprintf(&output, "- **Template:** %s (%s)\n", report.Template, report.Kind)
	fmt.Fprintf(&output, "- **Page size:** %s\n\n", report.PageSize)

	output.WriteString("## Pages\n\n")
	output.WriteString("| Main | Overflow | Total |\n|---:|---:|---:|\n")
	fmt.Fprintf(&output, "| %d | %d | %d |\n\n", res.MainPages, res.OverflowPages, res.TotalPages)

	output.WriteString("## Sidebar Placement\n\n")
	if len(res.Placements) == 0 {
		output.WriteString("_No sidebar content._\n\n")
	} else {
		output.WriteString("| Page | Blocks | Forced |\n|---:|---|:---:|\n")
		for _, p := range res.Placements {
			forced := ""
			if p.Forced {
				forced = "yes"
			}
			fmt.Fprintf(&output, "| %d | %s | %s |\n", p.Page, blockRange(p.Blocks), forced)
		}
		output.WriteString("\n")
	}

	output.WriteString("## Warnings\n\n")
	if len(res.Warnings) == 0 {
		output.WriteString("_None._\n")
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&output, "- **%s** on page %d (%s block %d): %s\n", w.Kind, w.Page, w.Column, w.Block, w.Message)
	}

	return output.String(), nil
}

func (f *ReportMarkdownFormatter) SupportedType() string {
	return "Report"
}

// TemplateListTextFormatter lists templates one per line
type TemplateListTextFormatter struct{}

func (f *TemplateListTextFormatter) Format(data any) (string, error) {
	list, ok := data.(TemplateList)
	if !ok {
		return "", fmt.Errorf("expected TemplateList, got %T", data)
	}

	var output strings.Builder
	for _, kind := range sortedKinds(list) {
		fmt.Fprintf(&output, "%s:\n", kind)
		for _, info := range list[kind] {
			fmt.Fprintf(&output, "  %-14s %s\n", info.Name, info.Description)
		}
	}
	return output.String(), nil
}

func (f *TemplateListTextFormatter) SupportedType() string {
	return "TemplateList"
}

// TemplateListMarkdownFormatter lists templates as markdown tables
type TemplateListMarkdownFormatter struct{}

func (f *TemplateListMarkdownFormatter) Format(data any) (string, error) {
	list, ok := data.(TemplateList)
	if !ok {
		return "", fmt.Errorf("expected TemplateList, got %T", data)
	}

	var output strings.Builder
	for _, kind := range sortedKinds(list) {
		fmt.Fprintf(&output, "## %s\n\n| Template | Description |\n|---|---|\n", kind)
		for _, info := range list[kind] {
			fmt.Fprintf(&output, "| `%s` | %s |\n", info.Name, info.Description)
		}
		output.WriteString("\n")
	}
	return output.String(), nil
}

func (f *TemplateListMarkdownFormatter) SupportedType() string {
	return "TemplateList"
}

func sortedKinds(list TemplateList) []string {
	kinds := make([]string, 0, len(list))
	for kind := range list {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// blockRange prints consecutive indexes as ranges, e.g. "0-11, 14".
func blockRange(blocks []int) string {
	if len(blocks) == 0 {
		return "-"
	}
	var parts []string
	start, prev := blocks[0], blocks[0]
	flush := func() {
		if start == prev {
			parts = append(parts, fmt.Sprintf("%d", start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, b := range blocks[1:] {
		if b == prev+1 {
			prev = b
			continue
		}
		flush()
		start, prev = b, b
	}
	flush()
	return strings.Join(parts, ", ")
}
