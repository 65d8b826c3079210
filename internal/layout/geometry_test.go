package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/errors"
)

func TestParsePageSize(t *testing.T) {
	tests := []struct {
		input    string
		expected PageSize
	}{
		{"A4", A4},
		{"a4", A4},
		{" A4 ", A4},
		{"Letter", Letter},
		{"legal", Letter},
		{"", Letter},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePageSize(tt.input))
		})
	}
}

func TestNewGeometryDefaults(t *testing.T) {
	g, err := NewGeometry(A4, DefaultGeometryOptions())
	require.NoError(t, err)

	assert.InDelta(t, 168.43, g.SidebarWidth, 0.01)
	assert.InDelta(t, 148.43, g.SidebarContentWidth(), 0.01)
	assert.InDelta(t, 40, g.FirstFrameTop, 0.001)
	assert.InDelta(t, 20, g.LaterFrameTop, 0.001)
	assert.InDelta(t, 781.89, g.FirstFrameHeight, 0.001)
	assert.InDelta(t, 801.89, g.LaterFrameHeight, 0.001)
	assert.InDelta(t, 761.89, g.SidebarBudget(true), 0.001)
	assert.InDelta(t, 781.89, g.SidebarBudget(false), 0.001)
	assert.InDelta(t, 248.43, g.MainX, 0.01)
	assert.InDelta(t, 326.85, g.MainWidth, 0.01)
	assert.InDelta(t, 821.89, g.MainBottom(), 0.001)
	assert.Less(t, g.SidebarBudget(true), g.SidebarBudget(false))
}

func TestNewGeometryRejectsDegenerateLayouts(t *testing.T) {
	tests := []struct {
		name string
		page PageSize
		opts GeometryOptions
	}{
		{
			name: "zero page",
			page: PageSize{Name: "none"},
			opts: DefaultGeometryOptions(),
		},
		{
			name: "narrow page leaves no sidebar",
			page: PageSize{Name: "strip", Width: 60, Height: 800},
			opts: DefaultGeometryOptions(),
		},
		{
			name: "header reserve eats first page",
			page: A4,
			opts: GeometryOptions{SidebarX: 20, SidebarInset: 30, SidebarPadding: 10, HeaderReserve: 900, Margin: 20, Gutter: 60},
		},
		{
			name: "gutter pushes main column off the page",
			page: A4,
			opts: GeometryOptions{SidebarX: 20, SidebarInset: 30, SidebarPadding: 10, Margin: 20, Gutter: 500},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeometry(tt.page, tt.opts)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeDegenerateGeometry))
		})
	}
}

func TestHex(t *testing.T) {
	assert.Equal(t, Color{0x2C, 0x2A, 0x2A}, Hex("#2C2A2A"))
	assert.Equal(t, Color{255, 255, 255}, Hex("ffffff"))
	assert.Equal(t, Black, Hex("nope"))
	assert.Equal(t, "#2c2a2a", Hex("#2C2A2A").String())
}
