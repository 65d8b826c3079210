package layout

import "fmt"

// RenderSidebarPage draws as many pending sidebar blocks as fit on the
// current page of s and advances the cursor past them. first selects the
// reduced budget of page 1.
//
// When even the first pending block does not fit it is accepted anyway
// and clipped to the frame, so every call makes progress while blocks remain.
func (e *Engine) RenderSidebarPage(s *Surface, first bool) PagePlacement {
	g := e.geometry
	e.pages++
	page := e.pages
	budget := g.SidebarBudget(first)
	width := g.SidebarContentWidth()
	remaining := budget

	type accepted struct {
		index  int
		block  Block
		height float64
	}
	var list []accepted
	forced := false

	for e.cursor < len(e.sidebar) {
		index := e.cursor
		b := e.sidebar[index]

		h, err := b.Wrap(s, width, remaining)
		if err != nil {
			e.failed++
			e.warn(Warning{
				Page:    page,
				Block:   index,
				Column:  ColumnSidebar,
				Kind:    WarningPlaceholder,
				Message: err.Error(),
			})
			// later pages see the placeholder, never the failing block
			b = placeholder{height: e.opts.PlaceholderHeight}
			e.sidebar[index] = b
			h = e.opts.PlaceholderHeight
		}

		if h <= remaining {
			list = append(list, accepted{index, b, h})
			remaining -= h
			e.advance()
			continue
		}

		if len(list) == 0 {
			if h > budget {
				e.warn(Warning{
					Page:    page,
					Block:   index,
					Column:  ColumnSidebar,
					Kind:    WarningClipped,
					Message: fmt.Sprintf("block is %.1fpt tall, page allows %.1fpt", h, budget),
				})
			}
			list = append(list, accepted{index, b, h})
			forced = true
			e.advance()
		}
		break
	}

	placement := PagePlacement{Page: page, Forced: forced}
	if len(list) == 0 {
		return placement
	}

	pdf := s.pdf
	top := g.frameTop(first)
	pdf.ClipRect(g.SidebarX, top, g.SidebarWidth, g.frameHeight(first), false)
	x := g.SidebarX + g.SidebarPadding
	y := top + g.SidebarPadding
	for _, a := range list {
		placement.Blocks = append(placement.Blocks, a.index)
		if err := a.block.Draw(s, x, y, width); err != nil {
			e.drawFailed(s, a.index, ColumnSidebar, err)
		} else if err := s.takeError(); err != nil {
			e.drawFailed(s, a.index, ColumnSidebar, err)
		}
		y += a.height
	}
	pdf.ClipEnd()

	e.placements = append(e.placements, placement)
	return placement
}

func (e *Engine) advance() {
	e.mu.Lock()
	if e.cursor < len(e.sidebar) {
		e.cursor++
	}
	e.mu.Unlock()
}
