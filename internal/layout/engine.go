package layout

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/jung-kurt/gofpdf"

	"resumeforge/internal/errors"
)

// State is the lifecycle stage of an Engine.
type State int

const (
	NotStarted State = iota
	MainRendering
	OverflowRendering
	Merged
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case MainRendering:
		return "main_rendering"
	case OverflowRendering:
		return "overflow_rendering"
	case Merged:
		return "merged"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// PageDecorator paints page furniture (backgrounds, dividers) before the
// sidebar is drawn. page is the 1-based page number in the final document.
type PageDecorator func(s *Surface, g Geometry, page int)

// Options configure one Engine.
type Options struct {
	Geometry          Geometry
	Decorate          PageDecorator
	PlaceholderHeight float64
	Title             string
	Author            string
	Logger            *errors.Logger
}

// Warning kinds.
const (
	WarningClipped     = "clipped"
	WarningPlaceholder = "placeholder"
	WarningDrawFailed  = "draw_failed"
)

// Column names used in warnings.
const (
	ColumnSidebar = "sidebar"
	ColumnMain    = "main"
)

// Warning is a recoverable per-block problem found during a build.
type Warning struct {
	Page    int    `json:"page"`
	Block   int    `json:"block"`
	Column  string `json:"column"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// PagePlacement lists the sidebar blocks drawn on one page.
type PagePlacement struct {
	Page   int   `json:"page"`
	Blocks []int `json:"blocks"`
	Forced bool  `json:"forced,omitempty"`
}

// Result is the outcome of a successful build.
type Result struct {
	Document      []byte          `json:"-"`
	MainPages     int             `json:"main_pages"`
	OverflowPages int             `json:"overflow_pages"`
	TotalPages    int             `json:"total_pages"`
	Placements    []PagePlacement `json:"placements"`
	Warnings      []Warning       `json:"warnings,omitempty"`
	FailedBlocks  int             `json:"failed_blocks"`
}

const defaultPlaceholderHeight = 20

// Engine lays a wide main column and a narrow sidebar column out on the
// same pages. The main column flows through gofpdf's own page breaks while
// the sidebar is paginated by hand; sidebar content that outlasts the main
// column is rendered on extra pages spliced onto the end of the document.
//
// An Engine builds exactly one document.
type Engine struct {
	mu sync.Mutex

	geometry Geometry
	opts     Options
	logger   *errors.Logger

	main    []Block
	sidebar []Block
	cursor  int
	state   State

	pages      int
	placements []PagePlacement
	warnings   []Warning
	failed     int
}

// NewEngine validates the geometry and returns an empty engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Geometry.validate(); err != nil {
		return nil, err
	}
	if opts.PlaceholderHeight <= 0 {
		opts.PlaceholderHeight = defaultPlaceholderHeight
	}
	logger := opts.Logger
	if logger == nil {
		logger = errors.Discard()
	}
	return &Engine{
		geometry: opts.Geometry,
		opts:     opts,
		logger:   logger,
	}, nil
}

// AppendMain adds a block to the main column.
func (e *Engine) AppendMain(b Block) error {
	return e.append(&e.main, b, ColumnMain)
}

// AppendSidebar adds a block to the sidebar queue.
func (e *Engine) AppendSidebar(b Block) error {
	return e.append(&e.sidebar, b, ColumnSidebar)
}

func (e *Engine) append(list *[]Block, b Block, column string) error {
	if b == nil {
		return errors.NewValidationError(errors.ErrCodeInvalidBlock, "block must not be nil", nil).
			WithContext("column", column)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != NotStarted {
		return errors.NewLayoutError(errors.ErrCodeEngineSealed, "cannot append after build has started", nil).
			WithContext("column", column).
			WithContext("state", e.state.String())
	}
	*list = append(*list, b)
	return nil
}

// State returns the current lifecycle stage.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Cursor is the index of the next sidebar block to render.
func (e *Engine) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// SidebarLen is the number of queued sidebar blocks.
func (e *Engine) SidebarLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sidebar)
}

// Geometry returns the page geometry the engine lays out with.
func (e *Engine) Geometry() Geometry {
	return e.geometry
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Build renders both columns and returns the finished document. It may be
// called once.
func (e *Engine) Build() (*Result, error) {
	e.mu.Lock()
	if e.state != NotStarted {
		state := e.state
		e.mu.Unlock()
		return nil, errors.NewLayoutError(errors.ErrCodeBuildAlreadyRun, "build may only run once", nil).
			WithContext("state", state.String())
	}
	e.state = MainRendering
	e.mu.Unlock()

	result, err := e.build()
	if err != nil {
		e.setState(Failed)
		return nil, err
	}
	e.setState(Done)
	return result, nil
}

func (e *Engine) build() (*Result, error) {
	base, mainPages, err := e.renderMain()
	if err != nil {
		return nil, err
	}

	document := base
	overflowPages := 0
	if e.cursor < len(e.sidebar) {
		e.setState(OverflowRendering)
		e.logger.Debug("sidebar outlasts main column",
			"main_pages", mainPages,
			"cursor", e.cursor,
			"sidebar_blocks", len(e.sidebar))

		var overflow []byte
		overflow, overflowPages, err = e.renderOverflow(mainPages)
		if err != nil {
			return nil, err
		}
		document, err = mergeDocuments(base, overflow)
		if err != nil {
			return nil, errors.NewLayoutError(errors.ErrCodeMergeFailed, "failed to append overflow pages", err).
				WithContext("main_pages", mainPages).
				WithContext("overflow_pages", overflowPages)
		}
	}
	e.setState(Merged)

	total, err := countPages(document)
	if err != nil {
		total = mainPages + overflowPages
		e.logger.Warn("could not count pages of finished document",
			"error", err.Error(),
			"assumed_pages", total)
	}

	e.logger.Debug("layout complete",
		"main_pages", mainPages,
		"overflow_pages", overflowPages,
		"total_pages", total,
		"warnings", len(e.warnings))

	return &Result{
		Document:      document,
		MainPages:     mainPages,
		OverflowPages: overflowPages,
		TotalPages:    total,
		Placements:    e.placements,
		Warnings:      e.warnings,
		FailedBlocks:  e.failed,
	}, nil
}

// newDocument creates a gofpdf document whose margins are the main column.
func (e *Engine) newDocument() *gofpdf.Fpdf {
	g := e.geometry
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: g.Page.Width, Ht: g.Page.Height},
	})
	pdf.SetMargins(g.MainX, g.Margin, g.Page.Width-g.MainX-g.MainWidth)
	pdf.SetAutoPageBreak(true, g.Margin)
	pdf.SetCreator("resumeforge", true)
	if e.opts.Title != "" {
		pdf.SetTitle(e.opts.Title, true)
	}
	if e.opts.Author != "" {
		pdf.SetAuthor(e.opts.Author, true)
	}
	// Every page starts from this font so the state gofpdf tracks matches
	// the one restored when the sidebar clip is popped.
	pdf.SetFont("Helvetica", "", 10)
	return pdf
}

func (e *Engine) decorate(s *Surface, page int) {
	if e.opts.Decorate == nil {
		return
	}
	e.opts.Decorate(s, e.geometry, page)
	if err := s.takeError(); err != nil {
		e.logger.Warn("page decoration failed", "page", page, "error", err.Error())
	}
}

func (e *Engine) renderMain() ([]byte, int, error) {
	pdf := e.newDocument()
	s := NewSurface(pdf)
	pdf.SetHeaderFuncMode(func() {
		page := pdf.PageNo()
		e.decorate(s, page)
		e.RenderSidebarPage(s, page == 1)
	}, true)

	pdf.AddPage()
	for i, b := range e.main {
		e.flowMain(s, i, b)
	}

	pages := pdf.PageNo()
	doc, err := output(pdf)
	if err != nil {
		return nil, 0, err
	}
	return doc, pages, nil
}

// flowMain places one main-column block at the cursor. Blocks that cannot
// be split move to a fresh page rather than straddle the bottom margin.
func (e *Engine) flowMain(s *Surface, index int, b Block) {
	g := e.geometry
	pdf := s.pdf
	y := pdf.GetY()
	remaining := g.MainBottom() - y

	h, err := b.Wrap(s, g.MainWidth, remaining)
	if err != nil {
		e.warn(Warning{
			Page:    pdf.PageNo(),
			Block:   index,
			Column:  ColumnMain,
			Kind:    WarningPlaceholder,
			Message: err.Error(),
		})
		e.failed++
		if e.opts.PlaceholderHeight > remaining && y > g.Margin {
			pdf.AddPage()
			y = pdf.GetY()
		}
		pdf.SetY(y + e.opts.PlaceholderHeight)
		return
	}

	if h > remaining && y > g.Margin && !isSplittable(b) {
		pdf.AddPage()
		y = pdf.GetY()
	}

	if err := b.Draw(s, g.MainX, y, g.MainWidth); err != nil {
		e.drawFailed(s, index, ColumnMain, err)
		return
	}
	if err := s.takeError(); err != nil {
		e.drawFailed(s, index, ColumnMain, err)
	}
}

func (e *Engine) renderOverflow(mainPages int) ([]byte, int, error) {
	pdf := e.newDocument()
	s := NewSurface(pdf)
	pdf.SetHeaderFuncMode(func() {
		e.decorate(s, mainPages+pdf.PageNo())
		e.RenderSidebarPage(s, false)
	}, true)

	for e.cursor < len(e.sidebar) {
		before := e.cursor
		pdf.AddPage()
		if e.cursor == before {
			return nil, 0, errors.NewInternalError(errors.ErrCodeSidebarStalled, "overflow page placed no sidebar blocks", nil).
				WithContext("cursor", e.cursor).
				WithContext("page", mainPages+pdf.PageNo())
		}
	}

	pages := pdf.PageNo()
	doc, err := output(pdf)
	if err != nil {
		return nil, 0, err
	}
	return doc, pages, nil
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.NewRenderError(errors.ErrCodeOutputFailed, "failed to serialize document", err)
	}
	return buf.Bytes(), nil
}

func (e *Engine) warn(w Warning) {
	e.warnings = append(e.warnings, w)
	e.logger.Warn("layout block problem",
		"page", w.Page,
		"block", w.Block,
		"column", w.Column,
		"kind", w.Kind,
		"detail", w.Message)
}

func (e *Engine) drawFailed(s *Surface, index int, column string, err error) {
	s.takeError()
	e.failed++
	e.warn(Warning{
		Page:    s.pdf.PageNo(),
		Block:   index,
		Column:  column,
		Kind:    WarningDrawFailed,
		Message: err.Error(),
	})
}
