package layout

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Block is a pre-styled visual element. Blocks are created by template code,
// appended to one column and never mutated afterwards.
type Block interface {
	// Wrap reports the height the block needs when laid out at width with
	// avail points of vertical space left. It must not depend on prior calls.
	Wrap(s *Surface, width, avail float64) (float64, error)
	// Draw renders the block with its top-left corner at (x, y) and leaves
	// the cursor at the line below it.
	Draw(s *Surface, x, y, width float64) error
}

// Splittable is implemented by blocks the main column may break across pages.
type Splittable interface {
	Splittable() bool
}

func isSplittable(b Block) bool {
	sp, ok := b.(Splittable)
	return ok && sp.Splittable()
}

// Spacer is vertical whitespace.
type Spacer struct {
	Height float64
}

func (b Spacer) Wrap(*Surface, float64, float64) (float64, error) {
	return b.Height, nil
}

func (b Spacer) Draw(s *Surface, x, y, width float64) error {
	s.pdf.SetY(y + b.Height)
	return nil
}

func (Spacer) Splittable() bool { return true }

// Paragraph is a run of wrapped text in one style.
type Paragraph struct {
	Text  string
	Style TextStyle
}

// NewParagraph is shorthand for a paragraph in style.
func NewParagraph(text string, style TextStyle) Paragraph {
	return Paragraph{Text: text, Style: style}
}

func (b Paragraph) Wrap(s *Surface, width, avail float64) (float64, error) {
	if width <= 0 {
		return 0, fmt.Errorf("paragraph width must be positive, got %.2f", width)
	}
	style := s.ApplyText(b.Style)
	lines := s.Lines(b.Text, width)
	return style.SpaceBefore + float64(len(lines))*style.LineHeight + style.SpaceAfter, nil
}

func (b Paragraph) Draw(s *Surface, x, y, width float64) error {
	style := s.ApplyText(b.Style)
	s.pdf.SetXY(x, y+style.SpaceBefore)
	if strings.TrimSpace(b.Text) != "" {
		s.pdf.MultiCell(width, style.LineHeight, s.Text(b.Text), "", style.Align, false)
	}
	s.pdf.SetY(s.pdf.GetY() + style.SpaceAfter)
	return nil
}

func (Paragraph) Splittable() bool { return true }

// Rule is a horizontal divider.
type Rule struct {
	Thickness   float64
	Color       Color
	SpaceBefore float64
	SpaceAfter  float64
	Fraction    float64 // share of the column width, 0 means full width
}

func (b Rule) Wrap(*Surface, float64, float64) (float64, error) {
	return b.SpaceBefore + b.thickness() + b.SpaceAfter, nil
}

func (b Rule) Draw(s *Surface, x, y, width float64) error {
	length := width
	if b.Fraction > 0 && b.Fraction < 1 {
		length = width * b.Fraction
	}
	lineY := y + b.SpaceBefore + b.thickness()/2
	s.pdf.SetDrawColor(b.Color.R, b.Color.G, b.Color.B)
	s.pdf.SetLineWidth(b.thickness())
	s.pdf.Line(x, lineY, x+length, lineY)
	s.pdf.SetY(y + b.SpaceBefore + b.thickness() + b.SpaceAfter)
	return nil
}

func (b Rule) thickness() float64 {
	if b.Thickness <= 0 {
		return 0.5
	}
	return b.Thickness
}

// Table lays rows of blocks out in proportional columns.
type Table struct {
	Columns []float64 // fractions of the available width
	Rows    [][]Block
	CellGap float64
	RowGap  float64
}

func (b Table) columnWidths(width float64) ([]float64, error) {
	if len(b.Columns) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}
	var total float64
	for _, c := range b.Columns {
		if c <= 0 {
			return nil, fmt.Errorf("table column fractions must be positive")
		}
		total += c
	}
	gaps := b.CellGap * float64(len(b.Columns)-1)
	usable := width - gaps
	if usable <= 0 {
		return nil, fmt.Errorf("table is too narrow for %d columns", len(b.Columns))
	}
	widths := make([]float64, len(b.Columns))
	for i, c := range b.Columns {
		widths[i] = usable * c / total
	}
	return widths, nil
}

func (b Table) rowHeight(s *Surface, row []Block, widths []float64, avail float64) (float64, error) {
	var h float64
	for i, cell := range row {
		if i >= len(widths) {
			return 0, fmt.Errorf("row has %d cells for %d columns", len(row), len(widths))
		}
		if cell == nil {
			continue
		}
		ch, err := cell.Wrap(s, widths[i], avail)
		if err != nil {
			return 0, err
		}
		h = max(h, ch)
	}
	return h, nil
}

func (b Table) Wrap(s *Surface, width, avail float64) (float64, error) {
	widths, err := b.columnWidths(width)
	if err != nil {
		return 0, err
	}
	var total float64
	for i, row := range b.Rows {
		h, err := b.rowHeight(s, row, widths, avail-total)
		if err != nil {
			return 0, err
		}
		total += h
		if i < len(b.Rows)-1 {
			total += b.RowGap
		}
	}
	return total, nil
}

func (b Table) Draw(s *Surface, x, y, width float64) error {
	widths, err := b.columnWidths(width)
	if err != nil {
		return err
	}
	rowY := y
	for i, row := range b.Rows {
		h, err := b.rowHeight(s, row, widths, 0)
		if err != nil {
			return err
		}
		cellX := x
		for c, cell := range row {
			if cell != nil {
				if err := cell.Draw(s, cellX, rowY, widths[c]); err != nil {
					return err
				}
			}
			cellX += widths[c] + b.CellGap
		}
		rowY += h
		if i < len(b.Rows)-1 {
			rowY += b.RowGap
		}
	}
	s.pdf.SetY(rowY)
	return nil
}

// Image embeds a raster picture. The data is decoded while measuring so a
// corrupt picture fails before anything is drawn.
type Image struct {
	Name   string
	Data   []byte
	Width  float64 // 0 fills the column, wider images are scaled down
	Height float64 // 0 keeps the aspect ratio
	Align  string  // "L" or "C"
}

func (b Image) decode(column float64) (string, float64, float64, error) {
	if len(b.Data) == 0 {
		return "", 0, 0, fmt.Errorf("image %q has no data", b.Name)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(b.Data))
	if err != nil {
		return "", 0, 0, fmt.Errorf("decode image %q: %w", b.Name, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return "", 0, 0, fmt.Errorf("image %q has zero size", b.Name)
	}
	var imageType string
	switch format {
	case "png":
		imageType = "PNG"
	case "jpeg":
		imageType = "JPG"
	case "gif":
		imageType = "GIF"
	default:
		return "", 0, 0, fmt.Errorf("image %q has unsupported format %s", b.Name, format)
	}

	w := b.Width
	if w <= 0 || w > column {
		w = column
	}
	if w <= 0 {
		return "", 0, 0, fmt.Errorf("image %q has no room", b.Name)
	}
	h := b.Height
	switch {
	case h <= 0:
		h = w * float64(cfg.Height) / float64(cfg.Width)
	case w < b.Width:
		h = h * w / b.Width
	}
	return imageType, w, h, nil
}

func (b Image) Wrap(s *Surface, width, avail float64) (float64, error) {
	_, _, h, err := b.decode(width)
	return h, err
}

func (b Image) Draw(s *Surface, x, y, width float64) error {
	imageType, w, h, err := b.decode(width)
	if err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: imageType}
	if s.pdf.GetImageInfo(b.Name) == nil {
		s.pdf.RegisterImageOptionsReader(b.Name, opts, bytes.NewReader(b.Data))
		if err := s.takeError(); err != nil {
			return fmt.Errorf("register image %q: %w", b.Name, err)
		}
	}
	drawX := x
	if b.Align == "C" && width > w {
		drawX = x + (width-w)/2
	}
	s.pdf.ImageOptions(b.Name, drawX, y, w, h, false, opts, 0, "")
	s.pdf.SetY(y + h)
	return nil
}

// Group keeps its blocks on one page in the main column.
type Group struct {
	Blocks []Block
}

func (b Group) Wrap(s *Surface, width, avail float64) (float64, error) {
	var total float64
	for _, child := range b.Blocks {
		h, err := child.Wrap(s, width, avail-total)
		if err != nil {
			return 0, err
		}
		total += h
	}
	return total, nil
}

func (b Group) Draw(s *Surface, x, y, width float64) error {
	s.pdf.SetY(y)
	for _, child := range b.Blocks {
		if err := child.Draw(s, x, s.pdf.GetY(), width); err != nil {
			return err
		}
	}
	return nil
}

// placeholder stands in for a block that could not be measured.
type placeholder struct {
	height float64
}

func (b placeholder) Wrap(*Surface, float64, float64) (float64, error) {
	return b.height, nil
}

func (b placeholder) Draw(s *Surface, x, y, width float64) error {
	s.pdf.SetY(y + b.height)
	return nil
}
