package templates

import (
	"time"

	"resumeforge/internal/layout"
	"resumeforge/internal/resume"
)

// Cover lays a cover letter out with the applicant's details in the sidebar.
type Cover struct {
	th  theme
	now func() time.Time
}

func NewCover() *Cover {
	return &Cover{th: professionalTheme(), now: time.Now}
}

func (c *Cover) Name() string { return "cover" }

func (c *Cover) Description() string {
	return "Cover letter with contact details in a narrow sidebar"
}

func (c *Cover) Geometry(page layout.PageSize) (layout.Geometry, error) {
	return layout.NewGeometry(page, layout.GeometryOptions{
		SidebarX:      40,
		SidebarInset:  30,
		HeaderReserve: 20,
		Margin:        20,
		Gutter:        45,
	})
}

func (c *Cover) Decorate(s *layout.Surface, g layout.Geometry, page int) {
	x := g.SidebarX + g.SidebarWidth + 15
	s.VLine(x, g.Margin, g.Page.Height-g.Margin, 1, layout.Hex("#F18F01"))
}

func (c *Cover) Compose(l *resume.CoverLetter) (Composition, error) {
	b := newSectionBuilder(c.th)

	b.addMain(layout.Spacer{Height: 10}, b.para(l.Name, b.th.Name))
	if l.Title != "" {
		b.addMain(b.para(l.Title, b.th.Title))
	}
	b.addMain(layout.Spacer{Height: 20}, b.para(c.now().Format("January 2, 2006"), b.th.Date))

	b.addMain(layout.Spacer{Height: 12})
	if l.HiringManagerName != "" {
		b.addMain(b.para(l.HiringManagerName, b.th.Company))
	}
	if l.CompanyName != "" {
		b.addMain(b.para(l.CompanyName, b.th.Position))
	}

	greeting := "Dear Hiring Manager,"
	if l.HiringManagerName != "" {
		greeting = "Dear " + l.HiringManagerName + ","
	}
	b.addMain(layout.Spacer{Height: 16}, b.para(greeting, b.th.Body))
	for _, p := range l.Paragraph {
		b.addMain(b.para(p, b.th.Body))
	}
	b.addMain(layout.Spacer{Height: 8}, b.para("Sincerely,", b.th.Body), b.para(l.Name, b.th.Company))

	b.addSidebar(layout.Spacer{Height: 20})
	b.sidebarHeading("CONTACT")
	b.addSidebar(layout.Spacer{Height: 10})
	for _, v := range []string{l.Phone, l.Email, l.Location} {
		if v != "" {
			b.addSidebar(b.para(v, b.th.SidebarInfo))
		}
	}
	if l.CompanyName != "" {
		b.addSidebar(layout.Spacer{Height: 20})
		b.sidebarHeading("APPLYING TO")
		b.addSidebar(b.para(l.CompanyName, b.th.SidebarInfo))
	}
	return b.composition(), nil
}
