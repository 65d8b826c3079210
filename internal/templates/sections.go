package templates

import (
	"fmt"
	"sort"
	"strings"

	"resumeforge/internal/layout"
	"resumeforge/internal/resume"
)

// Spacing left in the sidebar for sections a resume does not fill, so
// sparse resumes keep the same rhythm as full ones.
const (
	missingSectionGap = 80
	finishingGap      = 40
	missingFinishGap  = 60
)

// keepTogetherBullets is the largest bullet count whose entry is kept on
// one page.
const keepTogetherBullets = 3

// sectionBuilder turns resume data into blocks for the two columns.
type sectionBuilder struct {
	th      theme
	main    []layout.Block
	sidebar []layout.Block
}

func newSectionBuilder(th theme) *sectionBuilder {
	return &sectionBuilder{th: th}
}

// composition drops trailing sidebar spacers; on their own they would only
// start a blank overflow page.
func (b *sectionBuilder) composition() Composition {
	sidebar := b.sidebar
	for len(sidebar) > 0 {
		if _, ok := sidebar[len(sidebar)-1].(layout.Spacer); !ok {
			break
		}
		sidebar = sidebar[:len(sidebar)-1]
	}
	return Composition{Main: b.main, Sidebar: sidebar}
}

func (b *sectionBuilder) addMain(blocks ...layout.Block) {
	b.main = append(b.main, blocks...)
}

func (b *sectionBuilder) addSidebar(blocks ...layout.Block) {
	b.sidebar = append(b.sidebar, blocks...)
}

func (b *sectionBuilder) para(s string, style layout.TextStyle) layout.Paragraph {
	return layout.NewParagraph(s, style)
}

// resume lays out every section in the order the classic templates use.
func (b *sectionBuilder) resume(r *resume.Resume) {
	if photo, err := r.PhotoBytes(); err == nil && len(photo) > 0 {
		b.photo(photo)
	}
	b.header(r.PersonalInfo)
	b.contact(r.PersonalInfo)
	b.onlinePresence(r.PersonalInfo, r.CustomLinks)

	b.summary(r.ProfessionalSummary)
	b.workExperience(r.WorkExperience)
	b.projects(r.AcademicProjects)
	b.certifications(r.Certifications)
	b.publications(r.Publications)
	b.referees(r.Referees)
	b.customText(r.CustomText)

	b.education(r.Education)
	b.skills(r.Skills)
	b.bulletList("LANGUAGES", r.Languages)
	b.bulletList("HOBBIES & INTERESTS", r.Hobbies)
	b.finish(len(r.Languages) > 0, len(r.Hobbies) > 0)
}

func (b *sectionBuilder) photo(data []byte) {
	b.addSidebar(
		layout.Spacer{Height: 5},
		layout.Image{Name: "photo", Data: data, Align: "C"},
		layout.Spacer{Height: 15},
	)
}

func (b *sectionBuilder) header(p resume.PersonalInfo) {
	b.addMain(layout.Spacer{Height: 10}, b.para(strings.ToUpper(p.Name), b.th.Name))
	if p.Title != "" {
		b.addMain(b.para(p.Title, b.th.Title))
	}
	b.addMain(layout.Spacer{Height: 20})
}

func (b *sectionBuilder) sidebarHeading(title string) {
	b.addSidebar(
		b.para(title, b.th.SidebarTitle),
		layout.Rule{Thickness: 1, Color: b.th.SidebarRule, SpaceBefore: 4, SpaceAfter: 8},
	)
}

func (b *sectionBuilder) sectionHeading(title string) {
	b.addMain(
		layout.Spacer{Height: 4},
		b.para(title, b.th.Section),
		layout.Rule{Thickness: 2, Color: b.th.SectionRule, SpaceBefore: 4, SpaceAfter: 8},
	)
}

func (b *sectionBuilder) contact(p resume.PersonalInfo) {
	b.addSidebar(layout.Spacer{Height: 20})
	b.sidebarHeading("CONTACT")
	b.addSidebar(layout.Spacer{Height: 10})
	for _, v := range []string{p.Phone, p.Email, p.Location} {
		if v != "" {
			b.addSidebar(b.para(v, b.th.SidebarInfo))
		}
	}
}

func (b *sectionBuilder) onlinePresence(p resume.PersonalInfo, custom []resume.CustomLink) {
	type entry struct{ label, url string }
	var entries []entry
	for _, e := range []entry{{"LinkedIn", p.LinkedIn}, {"GitHub", p.GitHub}, {"Portfolio", p.Website}} {
		if e.url != "" {
			entries = append(entries, e)
		}
	}
	for _, l := range custom {
		label := l.Name
		if label == "" {
			label = "Link"
		}
		entries = append(entries, entry{label, l.URL})
	}
	if len(entries) == 0 {
		return
	}

	b.addSidebar(layout.Spacer{Height: 20})
	b.sidebarHeading("ONLINE PRESENCE")
	b.addSidebar(layout.Spacer{Height: 10})
	for _, e := range entries {
		b.addSidebar(b.para(e.label, b.th.SidebarInfo))
		if e.url != "" {
			item := b.th.SidebarItem
			item.SpaceAfter = 6
			b.addSidebar(b.para(displayURL(e.url), item))
		}
	}
}

// displayURL drops the scheme so links wrap less in the narrow column.
func displayURL(u string) string {
	for _, prefix := range []string{"https://", "http://"} {
		u = strings.TrimPrefix(u, prefix)
	}
	return strings.TrimSuffix(u, "/")
}

func (b *sectionBuilder) summary(text string) {
	if text == "" {
		return
	}
	b.addMain(layout.Spacer{Height: 4})
	b.sectionHeading("PROFESSIONAL PROFILE")
	b.addMain(b.para(text, b.th.Body), layout.Spacer{Height: 6})
}

// titleRow is a left title with a right-aligned date.
func (b *sectionBuilder) titleRow(title layout.Block, date string) layout.Block {
	if date == "" {
		return title
	}
	return layout.Table{
		Columns: []float64{0.55, 0.45},
		Rows:    [][]layout.Block{{title, b.para(date, b.th.Date)}},
	}
}

func (b *sectionBuilder) bullet(s string) layout.Block {
	return layout.Table{
		Columns: []float64{0.04, 0.96},
		Rows:    [][]layout.Block{{b.para("•", b.th.Bullet), b.para(s, b.th.Bullet)}},
	}
}

func (b *sectionBuilder) labelled(label, value string, style layout.TextStyle) layout.Block {
	return b.para(label+": "+value, style)
}

func dateRange(start, end string) string {
	if start == "" {
		return resume.FormatDate(end)
	}
	return start + " - " + resume.FormatDate(end)
}

func (b *sectionBuilder) workExperience(jobs []resume.WorkExperience) {
	if len(jobs) == 0 {
		return
	}
	b.sectionHeading("WORK EXPERIENCE")
	for _, job := range jobs {
		entry := []layout.Block{
			b.para(job.Company, b.th.Company),
			b.titleRow(b.para(job.Position, b.th.Position), dateRange(job.StartDate, job.EndDate)),
		}
		for _, d := range job.Description {
			entry = append(entry, b.bullet(d))
		}
		entry = append(entry, layout.Spacer{Height: 8})

		if len(job.Description) <= keepTogetherBullets {
			b.addMain(layout.Group{Blocks: entry})
		} else {
			b.addMain(entry...)
		}
	}
}

func (b *sectionBuilder) projects(projects []resume.AcademicProject) {
	if len(projects) == 0 {
		return
	}
	b.sectionHeading("PROJECTS")
	for _, p := range projects {
		b.addMain(b.titleRow(b.para(p.Title, b.th.Company), p.Date))
		if p.Technologies != "" {
			b.addMain(b.labelled("Technologies", p.Technologies, b.th.Position))
		}
		for _, d := range p.Description {
			b.addMain(b.bullet(d))
		}
		names := make([]string, 0, len(p.Links))
		for name := range p.Links {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.addMain(b.labelled(name, p.Links[name], b.th.Bullet))
		}
		b.addMain(layout.Spacer{Height: 8})
	}
}

func (b *sectionBuilder) certifications(certs []resume.Certification) {
	if len(certs) == 0 {
		return
	}
	b.sectionHeading("CERTIFICATIONS")
	for _, c := range certs {
		b.addMain(b.titleRow(b.para(c.Name, b.th.Company), c.Date))
		if c.Issuer != "" {
			b.addMain(b.labelled("Issued by", c.Issuer, b.th.Position))
		}
		if c.CredentialID != "" {
			b.addMain(b.labelled("Credential ID", c.CredentialID, b.th.Position))
		}
		if c.URL != "" {
			b.addMain(b.labelled("URL", c.URL, b.th.Bullet))
		}
		for _, d := range c.Description {
			b.addMain(b.bullet(d))
		}
		b.addMain(layout.Spacer{Height: 8})
	}
}

func (b *sectionBuilder) publications(pubs []resume.Publication) {
	if len(pubs) == 0 {
		return
	}
	b.sectionHeading("PUBLICATIONS")
	for _, p := range pubs {
		b.addMain(b.titleRow(b.para(p.Title, b.th.Company), p.Date))
		if p.Authors != "" {
			b.addMain(b.labelled("Authors", p.Authors, b.th.Position))
		}
		if p.Journal != "" {
			b.addMain(b.labelled("Published in", p.Journal, b.th.Position))
		}
		if p.URL != "" {
			b.addMain(b.labelled("URL", p.URL, b.th.Bullet))
		}
		for _, d := range p.Description {
			b.addMain(b.bullet(d))
		}
		b.addMain(layout.Spacer{Height: 8})
	}
}

func (b *sectionBuilder) referees(refs []resume.Referee) {
	if len(refs) == 0 {
		return
	}
	b.sectionHeading("REFERENCES")
	for _, r := range refs {
		entry := []layout.Block{b.para(r.Name, b.th.Company)}
		if r.Position != "" {
			entry = append(entry, b.para(r.Position, b.th.Position))
		}
		if r.Organization != "" {
			entry = append(entry, b.para(r.Organization, b.th.Position))
		}
		var contact []string
		if r.Phone != "" {
			contact = append(contact, "Phone: "+r.Phone)
		}
		if r.Email != "" {
			contact = append(contact, "Email: "+r.Email)
		}
		if len(contact) > 0 {
			entry = append(entry, b.para(strings.Join(contact, " | "), b.th.Bullet))
		}
		if r.Relationship != "" {
			entry = append(entry, b.labelled("Relationship", r.Relationship, b.th.Bullet))
		}
		entry = append(entry, layout.Spacer{Height: 12})
		b.addMain(layout.Group{Blocks: entry})
	}
}

func (b *sectionBuilder) customText(sections []resume.CustomText) {
	for _, c := range sections {
		if c.Title != "" {
			b.sectionHeading(strings.ToUpper(c.Title))
		}
		if c.Description != "" {
			b.addMain(b.para(c.Description, b.th.Body))
		}
		if c.Link != nil && c.Link.URL != "" {
			name := c.Link.Name
			if name == "" {
				name = "Link"
			}
			b.addMain(b.labelled(name, c.Link.URL, b.th.Bullet))
		}
		b.addMain(layout.Spacer{Height: 6})
	}
}

func (b *sectionBuilder) education(schools []resume.Education) {
	if len(schools) == 0 {
		return
	}
	b.sidebarHeading("EDUCATION")
	b.addSidebar(layout.Spacer{Height: 10})
	for _, e := range schools {
		if e.Institution != "" {
			b.addSidebar(b.para(e.Institution, b.th.SidebarInfo))
		}
		if e.Degree != "" {
			b.addSidebar(b.para(e.Degree, b.th.SidebarItem))
		}
		if e.StartDate != "" || e.EndDate != "" {
			b.addSidebar(b.para(dateRange(e.StartDate, e.EndDate), b.th.SidebarItem))
		}
		b.addSidebar(layout.Spacer{Height: 8})
	}
}

func (b *sectionBuilder) skills(skills []string) {
	if len(skills) == 0 {
		return
	}
	b.sidebarHeading("SKILLS")
	for _, s := range skills {
		b.addSidebar(b.para(fmt.Sprintf("• %s", s), b.th.SidebarItem))
	}
	b.addSidebar(layout.Spacer{Height: 6})
}

func (b *sectionBuilder) bulletList(title string, items []string) {
	if len(items) == 0 {
		b.addSidebar(layout.Spacer{Height: missingSectionGap})
		return
	}
	b.addSidebar(layout.Spacer{Height: 20})
	b.sidebarHeading(title)
	b.addSidebar(layout.Spacer{Height: 10})
	for _, item := range items {
		b.addSidebar(b.para(fmt.Sprintf("• %s", item), b.th.SidebarItem))
	}
	b.addSidebar(layout.Spacer{Height: 20})
}

func (b *sectionBuilder) finish(hasLanguages, hasHobbies bool) {
	b.addSidebar(layout.Spacer{Height: finishingGap})
	if !hasHobbies {
		b.addSidebar(layout.Spacer{Height: missingFinishGap})
	}
	if !hasLanguages {
		b.addSidebar(layout.Spacer{Height: missingFinishGap})
	}
}
