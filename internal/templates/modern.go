package templates

import (
	"resumeforge/internal/layout"
	"resumeforge/internal/resume"
)

// ModernBackground is the asset drawn behind every page of the modern
// template when present.
const ModernBackground = "modern.png"

// Modern is a light-on-dark sidebar layout with an optional full-page
// background image.
type Modern struct {
	assets Assets
	th     theme
}

// NewModern creates the template. assets may be nil.
func NewModern(assets Assets) *Modern {
	return &Modern{assets: assets, th: modernTheme()}
}

func (m *Modern) Name() string { return "modern" }

func (m *Modern) Description() string {
	return "Dark sidebar with contact, education and skills beside a flowing main column"
}

func (m *Modern) Geometry(page layout.PageSize) (layout.Geometry, error) {
	return layout.NewGeometry(page, layout.GeometryOptions{
		SidebarX:       20,
		SidebarInset:   30,
		SidebarPadding: 10,
		HeaderReserve:  20,
		Margin:         20,
		Gutter:         60,
	})
}

// Decorate paints the background image, or a solid sidebar band when no
// usable image is available.
func (m *Modern) Decorate(s *layout.Surface, g layout.Geometry, page int) {
	if m.assets != nil {
		if data, ok := m.assets.Get(ModernBackground); ok {
			bg := layout.Image{Name: "background", Data: data, Width: g.Page.Width, Height: g.Page.Height}
			if err := bg.Draw(s, 0, 0, g.Page.Width); err == nil {
				return
			}
		}
	}
	s.FillRect(0, 0, g.SidebarX+g.SidebarWidth+g.SidebarPadding, g.Page.Height, m.th.SectionRule)
}

func (m *Modern) Compose(r *resume.Resume) (Composition, error) {
	b := newSectionBuilder(m.th)
	b.resume(r)
	return b.composition(), nil
}
