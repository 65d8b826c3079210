package layout

import (
	"fmt"
	"strings"

	"resumeforge/internal/errors"
)

// PageSize is a physical page in points (1" = 72pt).
type PageSize struct {
	Name   string
	Width  float64
	Height float64
}

var (
	A4     = PageSize{Name: "A4", Width: 595.28, Height: 841.89}
	Letter = PageSize{Name: "Letter", Width: 612, Height: 792}
)

// ParsePageSize returns A4 for "a4" in any case and Letter for everything else.
func ParsePageSize(name string) PageSize {
	if strings.EqualFold(strings.TrimSpace(name), "a4") {
		return A4
	}
	return Letter
}

// GeometryOptions are the fixed offsets a template places its columns with.
type GeometryOptions struct {
	SidebarX       float64 // left edge of the sidebar frame
	SidebarInset   float64 // subtracted from a third of the page width
	SidebarPadding float64 // inner padding on every side of the frame
	HeaderReserve  float64 // extra space taken from the top of page 1
	Margin         float64 // outer top/bottom/right margin
	Gutter         float64 // space between sidebar frame and main column
}

// DefaultGeometryOptions mirrors the classic sidebar layout.
func DefaultGeometryOptions() GeometryOptions {
	return GeometryOptions{
		SidebarX:       20,
		SidebarInset:   30,
		SidebarPadding: 10,
		HeaderReserve:  20,
		Margin:         20,
		Gutter:         60,
	}
}

// Geometry holds the per-page constants of a two-column document.
// It is immutable once built by NewGeometry.
type Geometry struct {
	Page           PageSize
	Margin         float64
	SidebarX       float64
	SidebarWidth   float64
	SidebarPadding float64

	FirstFrameTop    float64
	FirstFrameHeight float64
	LaterFrameTop    float64
	LaterFrameHeight float64

	MainX     float64
	MainWidth float64
}

// NewGeometry derives the column geometry for page and rejects layouts
// that would leave a column with no room.
func NewGeometry(page PageSize, opts GeometryOptions) (Geometry, error) {
	if page.Width <= 0 || page.Height <= 0 {
		return Geometry{}, degenerate("page size must be positive", page)
	}

	g := Geometry{
		Page:           page,
		Margin:         opts.Margin,
		SidebarX:       opts.SidebarX,
		SidebarWidth:   page.Width/3 - opts.SidebarInset,
		SidebarPadding: opts.SidebarPadding,
	}

	g.LaterFrameTop = opts.Margin
	g.LaterFrameHeight = page.Height - 2*opts.Margin
	g.FirstFrameTop = opts.Margin + opts.HeaderReserve
	g.FirstFrameHeight = g.LaterFrameHeight - opts.HeaderReserve

	g.MainX = g.SidebarX + g.SidebarWidth + opts.Gutter
	g.MainWidth = page.Width - g.MainX - opts.Margin

	if err := g.validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

func (g Geometry) validate() error {
	switch {
	case g.SidebarContentWidth() <= 0:
		return degenerate(fmt.Sprintf("sidebar content width is %.2fpt", g.SidebarContentWidth()), g.Page)
	case g.SidebarBudget(true) <= 0:
		return degenerate(fmt.Sprintf("first page sidebar height is %.2fpt", g.SidebarBudget(true)), g.Page)
	case g.SidebarBudget(false) <= 0:
		return degenerate(fmt.Sprintf("sidebar height is %.2fpt", g.SidebarBudget(false)), g.Page)
	case g.MainWidth <= 0:
		return degenerate(fmt.Sprintf("main column width is %.2fpt", g.MainWidth), g.Page)
	case g.SidebarX < 0 || g.Margin < 0 || g.SidebarPadding < 0:
		return degenerate("offsets must not be negative", g.Page)
	}
	return nil
}

func degenerate(message string, page PageSize) error {
	return errors.NewLayoutError(errors.ErrCodeDegenerateGeometry, message, nil).
		WithContext("page_size", page.Name).
		WithContext("page_width", page.Width).
		WithContext("page_height", page.Height)
}

// SidebarContentWidth is the width blocks are wrapped into.
func (g Geometry) SidebarContentWidth() float64 {
	return g.SidebarWidth - 2*g.SidebarPadding
}

// SidebarBudget is the vertical space available to sidebar blocks on one page.
func (g Geometry) SidebarBudget(first bool) float64 {
	return g.frameHeight(first) - 2*g.SidebarPadding
}

func (g Geometry) frameTop(first bool) float64 {
	if first {
		return g.FirstFrameTop
	}
	return g.LaterFrameTop
}

func (g Geometry) frameHeight(first bool) float64 {
	if first {
		return g.FirstFrameHeight
	}
	return g.LaterFrameHeight
}

// MainBottom is the y coordinate at which the main column breaks to a new page.
func (g Geometry) MainBottom() float64 {
	return g.Page.Height - g.Margin
}

// MainHeight is the full height of the main column on one page.
func (g Geometry) MainHeight() float64 {
	return g.MainBottom() - g.Margin
}
