package layout

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/errors"
)

// fixedBlock has a constant height and draws nothing.
type fixedBlock struct {
	height float64
}

func (b fixedBlock) Wrap(*Surface, float64, float64) (float64, error) {
	return b.height, nil
}

func (b fixedBlock) Draw(s *Surface, x, y, width float64) error {
	s.PDF().SetY(y + b.height)
	return nil
}

type brokenBlock struct{}

func (brokenBlock) Wrap(*Surface, float64, float64) (float64, error) {
	return 0, fmt.Errorf("cannot measure")
}

func (brokenBlock) Draw(*Surface, float64, float64, float64) error {
	return fmt.Errorf("cannot draw")
}

type failingDrawBlock struct{}

func (failingDrawBlock) Wrap(*Surface, float64, float64) (float64, error) {
	return 10, nil
}

func (failingDrawBlock) Draw(*Surface, float64, float64, float64) error {
	return fmt.Errorf("ink ran out")
}

// tallHeaderGeometry gives a first-page budget of 631.89pt and a later
// budget of 781.89pt on A4.
func tallHeaderGeometry(t *testing.T) Geometry {
	t.Helper()
	opts := DefaultGeometryOptions()
	opts.HeaderReserve = 150
	g, err := NewGeometry(A4, opts)
	require.NoError(t, err)
	return g
}

func newTestEngine(t *testing.T, g Geometry) *Engine {
	t.Helper()
	e, err := NewEngine(Options{Geometry: g})
	require.NoError(t, err)
	return e
}

func appendSidebar(t *testing.T, e *Engine, blocks ...Block) {
	t.Helper()
	for _, b := range blocks {
		require.NoError(t, e.AppendSidebar(b))
	}
}

func repeat(n int, height float64) []Block {
	blocks := make([]Block, n)
	for i := range blocks {
		blocks[i] = fixedBlock{height: height}
	}
	return blocks
}

func indexes(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func TestBuildSplicesOverflowPages(t *testing.T) {
	e := newTestEngine(t, tallHeaderGeometry(t))
	require.NoError(t, e.AppendMain(NewParagraph("Short main column.", DefaultTextStyle())))
	appendSidebar(t, e, repeat(20, 50)...)

	result, err := e.Build()
	require.NoError(t, err)

	assert.Equal(t, 1, result.MainPages)
	assert.Equal(t, 1, result.OverflowPages)
	assert.Equal(t, 2, result.TotalPages)
	assert.Equal(t, 20, e.Cursor())
	assert.Equal(t, Done, e.State())
	require.Len(t, result.Placements, 2)
	assert.Equal(t, PagePlacement{Page: 1, Blocks: indexes(0, 12)}, result.Placements[0])
	assert.Equal(t, PagePlacement{Page: 2, Blocks: indexes(12, 20)}, result.Placements[1])
	assert.Empty(t, result.Warnings)
	assert.True(t, bytes.HasPrefix(result.Document, []byte("%PDF-")))
}

func TestFirstPageBudgetIsSmaller(t *testing.T) {
	e := newTestEngine(t, tallHeaderGeometry(t))
	appendSidebar(t, e, repeat(40, 50)...)

	result, err := e.Build()
	require.NoError(t, err)

	require.Len(t, result.Placements, 3)
	assert.Len(t, result.Placements[0].Blocks, 12)
	assert.Len(t, result.Placements[1].Blocks, 15)
	assert.Len(t, result.Placements[2].Blocks, 13)
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, 40, e.Cursor())
}

func TestSidebarOrderIsPreserved(t *testing.T) {
	e := newTestEngine(t, tallHeaderGeometry(t))
	heights := []float64{300, 120, 500, 40, 700, 10, 10, 260}
	blocks := make([]Block, len(heights))
	for i, h := range heights {
		blocks[i] = fixedBlock{height: h}
	}
	appendSidebar(t, e, blocks...)

	result, err := e.Build()
	require.NoError(t, err)

	var seen []int
	for _, p := range result.Placements {
		seen = append(seen, p.Blocks...)
	}
	assert.Equal(t, indexes(0, len(heights)), seen)
	assert.Equal(t, len(heights), e.Cursor())
}

func TestOversizedBlockIsForcedOntoItsOwnPage(t *testing.T) {
	e := newTestEngine(t, tallHeaderGeometry(t))
	appendSidebar(t, e, fixedBlock{height: 50}, fixedBlock{height: 10000}, fixedBlock{height: 50})

	result, err := e.Build()
	require.NoError(t, err)

	require.Len(t, result.Placements, 3)
	assert.Equal(t, []int{0}, result.Placements[0].Blocks)
	assert.Equal(t, PagePlacement{Page: 2, Blocks: []int{1}, Forced: true}, result.Placements[1])
	assert.Equal(t, []int{2}, result.Placements[2].Blocks)
	assert.Equal(t, 3, result.TotalPages)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningClipped, result.Warnings[0].Kind)
	assert.Equal(t, ColumnSidebar, result.Warnings[0].Column)
	assert.Equal(t, 1, result.Warnings[0].Block)
	assert.Equal(t, 2, result.Warnings[0].Page)
}

func TestFailedMeasurementBecomesPlaceholder(t *testing.T) {
	e := newTestEngine(t, tallHeaderGeometry(t))
	appendSidebar(t, e,
		fixedBlock{height: 50},
		brokenBlock{},
		Image{Name: "photo", Data: []byte("not an image"), Width: 80},
		fixedBlock{height: 50},
	)

	result, err := e.Build()
	require.NoError(t, err)

	assert.Equal(t, 4, e.Cursor())
	assert.Equal(t, 2, result.FailedBlocks)
	require.Len(t, result.Placements, 1)
	assert.Equal(t, indexes(0, 4), result.Placements[0].Blocks)
	require.Len(t, result.Warnings, 2)
	for i, w := range result.Warnings {
		assert.Equal(t, WarningPlaceholder, w.Kind)
		assert.Equal(t, i+1, w.Block)
	}
}

func TestFailedMeasurementAtPageBoundaryIsReportedOnce(t *testing.T) {
	g := tallHeaderGeometry(t)
	e := newTestEngine(t, g)
	appendSidebar(t, e,
		fixedBlock{height: g.SidebarBudget(true) - 5},
		brokenBlock{},
		fixedBlock{height: 10},
	)

	result, err := e.Build()
	require.NoError(t, err)

	assert.Equal(t, 1, result.FailedBlocks)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningPlaceholder, result.Warnings[0].Kind)
	assert.Equal(t, 1, result.Warnings[0].Block)
	assert.Equal(t, 1, result.Warnings[0].Page)

	require.Len(t, result.Placements, 2)
	assert.Equal(t, []int{0}, result.Placements[0].Blocks)
	assert.Equal(t, []int{1, 2}, result.Placements[1].Blocks)
}

func TestFailedDrawIsCountedAndSkipped(t *testing.T) {
	e := newTestEngine(t, tallHeaderGeometry(t))
	require.NoError(t, e.AppendMain(failingDrawBlock{}))
	require.NoError(t, e.AppendMain(NewParagraph("still here", DefaultTextStyle())))
	appendSidebar(t, e, failingDrawBlock{})

	result, err := e.Build()
	require.NoError(t, err)

	assert.Equal(t, 2, result.FailedBlocks)
	require.Len(t, result.Warnings, 2)
	for _, w := range result.Warnings {
		assert.Equal(t, WarningDrawFailed, w.Kind)
	}
	assert.Equal(t, 1, result.TotalPages)
}

func TestMainColumnBreaksAcrossPages(t *testing.T) {
	e := newTestEngine(t, tallHeaderGeometry(t))
	for _, b := range repeat(30, 100) {
		require.NoError(t, e.AppendMain(b))
	}
	appendSidebar(t, e, repeat(3, 50)...)

	result, err := e.Build()
	require.NoError(t, err)

	assert.Equal(t, 4, result.MainPages)
	assert.Equal(t, 0, result.OverflowPages)
	assert.Equal(t, 4, result.TotalPages)
	require.Len(t, result.Placements, 1)
	assert.Equal(t, indexes(0, 3), result.Placements[0].Blocks)
}

func TestDecoratorRunsOnEveryPage(t *testing.T) {
	var pages []int
	e, err := NewEngine(Options{
		Geometry: tallHeaderGeometry(t),
		Decorate: func(s *Surface, g Geometry, page int) {
			pages = append(pages, page)
			s.FillRect(0, 0, g.Page.Width, 10, Hex("#eeeeee"))
		},
	})
	require.NoError(t, err)
	appendSidebar(t, e, repeat(20, 50)...)

	_, err = e.Build()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, pages)
}

func TestBuildRunsOnce(t *testing.T) {
	e := newTestEngine(t, tallHeaderGeometry(t))
	appendSidebar(t, e, fixedBlock{height: 10})

	_, err := e.Build()
	require.NoError(t, err)

	_, err = e.Build()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeBuildAlreadyRun))

	err = e.AppendSidebar(fixedBlock{height: 10})
	assert.True(t, errors.HasCode(err, errors.ErrCodeEngineSealed))
	err = e.AppendMain(fixedBlock{height: 10})
	assert.True(t, errors.HasCode(err, errors.ErrCodeEngineSealed))
	assert.Equal(t, Done, e.State())
}

func TestAppendRejectsNilBlock(t *testing.T) {
	e := newTestEngine(t, tallHeaderGeometry(t))
	assert.True(t, errors.HasCode(e.AppendMain(nil), errors.ErrCodeInvalidBlock))
	assert.True(t, errors.HasCode(e.AppendSidebar(nil), errors.ErrCodeInvalidBlock))
	assert.Equal(t, 0, e.SidebarLen())
}

func TestNewEngineRejectsDegenerateGeometry(t *testing.T) {
	_, err := NewEngine(Options{Geometry: Geometry{Page: PageSize{Name: "strip", Width: 60, Height: 800}}})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDegenerateGeometry))
}

func TestMergeRejectsCorruptInput(t *testing.T) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))

	_, err := mergeDocuments([]byte("not a pdf"), buf.Bytes())
	assert.Error(t, err)
	_, err = mergeDocuments(buf.Bytes(), nil)
	assert.Error(t, err)

	merged, err := mergeDocuments(buf.Bytes(), buf.Bytes())
	require.NoError(t, err)
	count, err := countPages(merged)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		NotStarted:        "not_started",
		MainRendering:     "main_rendering",
		OverflowRendering: "overflow_rendering",
		Merged:            "merged",
		Done:              "done",
		Failed:            "failed",
		State(42):         "state(42)",
	}
	for state, expected := range tests {
		assert.Equal(t, expected, state.String())
	}
}
