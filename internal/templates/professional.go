package templates

import (
	"resumeforge/internal/layout"
	"resumeforge/internal/resume"
)

// Professional is a muted single-colour layout with a rule between columns.
type Professional struct {
	th theme
}

func NewProfessional() *Professional {
	return &Professional{th: professionalTheme()}
}

func (p *Professional) Name() string { return "professional" }

func (p *Professional) Description() string {
	return "Unpadded sidebar separated from the main column by a vertical rule"
}

func (p *Professional) Geometry(page layout.PageSize) (layout.Geometry, error) {
	return layout.NewGeometry(page, layout.GeometryOptions{
		SidebarX:      40,
		SidebarInset:  30,
		HeaderReserve: 20,
		Margin:        20,
		Gutter:        45,
	})
}

func (p *Professional) Decorate(s *layout.Surface, g layout.Geometry, page int) {
	x := g.SidebarX + g.SidebarWidth + 15
	s.VLine(x, g.Margin, g.Page.Height-g.Margin, 1, p.th.SidebarRule)
}

func (p *Professional) Compose(r *resume.Resume) (Composition, error) {
	b := newSectionBuilder(p.th)
	b.resume(r)
	return b.composition(), nil
}
