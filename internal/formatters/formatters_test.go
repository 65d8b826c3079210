package formatters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/layout"
	"resumeforge/internal/templates"
)

func sampleReport() Report {
	return Report{
		Template: "modern",
		Kind:     "resume",
		PageSize: "A4",
		Output:   "John_Doe_resume.pdf",
		Bytes:    2048,
		Result: &layout.Result{
			Document:      []byte("%PDF-1.3"),
			MainPages:     1,
			OverflowPages: 1,
			TotalPages:    2,
			Placements: []layout.PagePlacement{
				{Page: 1, Blocks: []int{0, 1, 2, 3}},
				{Page: 2, Blocks: []int{4}, Forced: true},
			},
			Warnings: []layout.Warning{
				{Page: 2, Block: 4, Column: layout.ColumnSidebar, Kind: layout.WarningClipped, Message: "block taller than frame"},
			},
		},
	}
}

func TestFormatReport(t *testing.T) {
	registry := NewFormatterRegistry()
	report := sampleReport()

	tests := []struct {
		format   string
		contains []string
	}{
		{"text", []string{"=== PAGES ===", "Main: 1  Overflow: 1  Total: 2", "Page 1: blocks 0-3", "Page 2: blocks 4 (forced)", "[clipped] page 2, sidebar block 4"}},
		{"markdown", []string{"# Build Report", "| 1 | 1 | 2 |", "| 2 | 4 | yes |", "- **clipped** on page 2"}},
		{"json", []string{`"template": "modern"`, `"total_pages": 2`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := registry.Format(report, tt.format)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestJSONReportOmitsDocumentBytes(t *testing.T) {
	out, err := NewFormatterRegistry().Format(sampleReport(), "json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	lay, ok := decoded["layout"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, lay, "Document")
	assert.NotContains(t, lay, "document")
}

func TestFormatReportPointerAndEmpty(t *testing.T) {
	registry := NewFormatterRegistry()

	out, err := registry.Format(&Report{Template: "professional", Kind: "resume"}, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "No sidebar content")
	assert.Contains(t, out, "=== WARNINGS (0) ===")

	_, err = (&ReportTextFormatter{}).Format("not a report")
	assert.Error(t, err)
}

func TestFormatTemplateList(t *testing.T) {
	registry := NewFormatterRegistry()
	list := TemplateList{
		"resume": {
			templates.Info{Name: "modern", Description: "Dark sidebar"},
			templates.Info{Name: "professional", Description: "Muted"},
		},
		"cover_letter": {templates.Info{Name: "cover", Description: "Letter"}},
	}

	text, err := registry.Format(list, "text")
	require.NoError(t, err)
	assert.Equal(t, "cover_letter:\n  cover          Letter\nresume:\n  modern         Dark sidebar\n  professional   Muted\n", text)

	md, err := registry.Format(list, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "## resume")
	assert.Contains(t, md, "| `modern` | Dark sidebar |")

	_, err = registry.Format(list, "yaml")
	assert.Error(t, err)
}

func TestSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, NewFormatterRegistry().GetSupportedFormats())
}

func TestBlockRange(t *testing.T) {
	tests := []struct {
		in   []int
		want string
	}{
		{nil, "-"},
		{[]int{3}, "3"},
		{[]int{0, 1, 2}, "0-2"},
		{[]int{0, 1, 4, 6, 7}, "0-1, 4, 6-7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, blockRange(tt.in))
	}
}
