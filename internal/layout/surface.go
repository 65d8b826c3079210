package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Color is an RGB triple in the 0-255 range.
type Color struct {
	R, G, B int
}

var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
)

// Hex parses "#rrggbb" (the leading # is optional). Invalid input yields black.
func Hex(s string) Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Black
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Black
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// TextStyle describes how a run of text is set.
type TextStyle struct {
	Family      string
	Style       string // "", "B", "I", "BI"
	Size        float64
	Color       Color
	LineHeight  float64 // defaults to 1.25 x Size
	Align       string  // "L", "C", "R" or "J"
	SpaceBefore float64
	SpaceAfter  float64
}

// DefaultTextStyle is 10pt Helvetica in black.
func DefaultTextStyle() TextStyle {
	return TextStyle{Family: "Helvetica", Size: 10, Align: "L"}
}

func (ts TextStyle) normalized() TextStyle {
	if ts.Family == "" {
		ts.Family = "Helvetica"
	}
	if ts.Size <= 0 {
		ts.Size = 10
	}
	if ts.LineHeight <= 0 {
		ts.LineHeight = ts.Size * 1.25
	}
	if ts.Align == "" {
		ts.Align = "L"
	}
	return ts
}

// Surface is the drawing target handed to blocks. It wraps one gofpdf
// document together with the UTF-8 to cp1252 translation its core fonts need.
type Surface struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

// NewSurface wraps pdf.
func NewSurface(pdf *gofpdf.Fpdf) *Surface {
	return &Surface{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// PDF exposes the underlying document for custom blocks.
func (s *Surface) PDF() *gofpdf.Fpdf {
	return s.pdf
}

// Text converts UTF-8 input into the encoding of the core fonts.
func (s *Surface) Text(str string) string {
	return s.tr(str)
}

// ApplyText selects the font and text colour of style.
func (s *Surface) ApplyText(style TextStyle) TextStyle {
	style = style.normalized()
	s.pdf.SetFont(style.Family, style.Style, style.Size)
	s.pdf.SetTextColor(style.Color.R, style.Color.G, style.Color.B)
	return style
}

// Lines splits text into the lines MultiCell would print at width.
func (s *Surface) Lines(text string, width float64) []string {
	raw := s.pdf.SplitLines([]byte(s.tr(text)), width)
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = string(line)
	}
	return lines
}

// FillRect paints a solid rectangle.
func (s *Surface) FillRect(x, y, w, h float64, c Color) {
	s.pdf.SetFillColor(c.R, c.G, c.B)
	s.pdf.Rect(x, y, w, h, "F")
}

// VLine draws a vertical stroke.
func (s *Surface) VLine(x, y1, y2, width float64, c Color) {
	s.pdf.SetDrawColor(c.R, c.G, c.B)
	s.pdf.SetLineWidth(width)
	s.pdf.Line(x, y1, x, y2)
}

// takeError clears and returns the sticky gofpdf error, if any.
func (s *Surface) takeError() error {
	if !s.pdf.Err() {
		return nil
	}
	err := s.pdf.Error()
	s.pdf.ClearError()
	return err
}
