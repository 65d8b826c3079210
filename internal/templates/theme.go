package templates

import "resumeforge/internal/layout"

// theme is the palette and type scale a variant dresses the shared
// sections in.
type theme struct {
	Name     layout.TextStyle
	Title    layout.TextStyle
	Section  layout.TextStyle
	Body     layout.TextStyle
	Company  layout.TextStyle
	Position layout.TextStyle
	Date     layout.TextStyle
	Bullet   layout.TextStyle

	SidebarTitle layout.TextStyle
	SidebarInfo  layout.TextStyle
	SidebarItem  layout.TextStyle

	SectionRule layout.Color
	SidebarRule layout.Color
}

func text(family, style string, size, leading float64, c layout.Color) layout.TextStyle {
	return layout.TextStyle{Family: family, Style: style, Size: size, LineHeight: leading, Color: c}
}

func modernTheme() theme {
	ink := layout.Black
	muted := layout.Hex("#6C757D")
	light := layout.Hex("#fff5f5")

	th := theme{
		Name:     text("Helvetica", "B", 20, 20, ink),
		Title:    text("Helvetica", "", 14, 16, ink),
		Section:  text("Helvetica", "B", 12, 20, ink),
		Body:     text("Helvetica", "", 11, 14, ink),
		Company:  text("Helvetica", "B", 12, 16, ink),
		Position: text("Helvetica", "I", 11, 14, muted),
		Date:     text("Helvetica", "", 11, 14, muted),
		Bullet:   text("Helvetica", "", 11, 14, ink),

		SidebarTitle: text("Helvetica", "B", 12, 16, light),
		SidebarInfo:  text("Helvetica", "B", 10, 13, light),
		SidebarItem:  text("Helvetica", "", 10, 13, light),

		SectionRule: layout.Hex("#183A54"),
		SidebarRule: layout.Hex("#D3D3D3"),
	}
	th.Name.SpaceAfter = 6
	th.Title.SpaceAfter = 6
	th.Section.SpaceBefore = 12
	th.Body.Align = "J"
	th.Body.SpaceAfter = 12
	th.Company.SpaceAfter = 2
	th.Position.SpaceAfter = 2
	th.Date.Align = "R"
	th.Bullet.Align = "J"
	th.Bullet.SpaceAfter = 4
	th.SidebarTitle.SpaceBefore = 4
	th.SidebarInfo.SpaceAfter = 6
	th.SidebarItem.SpaceAfter = 1
	return th
}

func professionalTheme() theme {
	th := modernTheme()
	ink := layout.Hex("#241d19")
	for _, s := range []*layout.TextStyle{
		&th.Name, &th.Title, &th.Section, &th.Body, &th.Company, &th.Position, &th.Date, &th.Bullet,
		&th.SidebarTitle, &th.SidebarInfo, &th.SidebarItem,
	} {
		s.Color = ink
	}
	th.Date.Style = ""
	th.SidebarInfo.Style = ""
	th.SectionRule = layout.Hex("#2C2A2A")
	th.SidebarRule = layout.Hex("#2C2A2A")
	return th
}
