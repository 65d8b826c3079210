package resume

// PersonalInfo represents the contact block at the top of a resume
type PersonalInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

// CustomLink represents an extra named profile link
type CustomLink struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// WorkExperience represents one position held
type WorkExperience struct {
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date,omitempty"` // empty means current
	Description Bullets `json:"description,omitempty"`
}

// Education represents one degree or course of study
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// AcademicProject represents a project with optional links
type AcademicProject struct {
	Title        string            `json:"title"`
	Date         string            `json:"date"`
	Technologies string            `json:"technologies,omitempty"`
	Description  Bullets           `json:"description,omitempty"`
	Links        map[string]string `json:"links,omitempty"`
}

// Certification represents a credential
type Certification struct {
	Name         string  `json:"name"`
	Issuer       string  `json:"issuer"`
	Date         string  `json:"date"`
	CredentialID string  `json:"credential_id,omitempty"`
	URL          string  `json:"url,omitempty"`
	Description  Bullets `json:"description,omitempty"`
}

// Publication represents a published article or paper
type Publication struct {
	Title       string  `json:"title"`
	Authors     string  `json:"authors"`
	Journal     string  `json:"journal"`
	Date        string  `json:"date"`
	URL         string  `json:"url,omitempty"`
	Description Bullets `json:"description,omitempty"`
}

// Referee represents a reference contact
type Referee struct {
	Name         string `json:"name"`
	Position     string `json:"position"`
	Organization string `json:"organization,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}

// Link is a display name with a target
type Link struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// CustomText represents a free-form titled section
type CustomText struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Link        *Link  `json:"link,omitempty"`
}

// Resume is the full request payload for a resume document
type Resume struct {
	TemplateName        string            `json:"template_name,omitempty"`
	PersonalInfo        PersonalInfo      `json:"personal_info"`
	Photo               string            `json:"photo,omitempty"` // base64, optionally a data URI
	CustomLinks         []CustomLink      `json:"custom_links,omitempty"`
	ProfessionalSummary string            `json:"professional_summary,omitempty"`
	PageSize            string            `json:"page_size,omitempty"`
	WorkExperience      []WorkExperience  `json:"work_experience,omitempty"`
	Education           []Education       `json:"education,omitempty"`
	Skills              []string          `json:"skills,omitempty"`
	AcademicProjects    []AcademicProject `json:"academic_projects,omitempty"`
	Certifications      []Certification   `json:"certifications,omitempty"`
	Publications        []Publication     `json:"publications,omitempty"`
	Hobbies             []string          `json:"hobbies,omitempty"`
	Languages           []string          `json:"languages,omitempty"`
	Referees            []Referee         `json:"referees,omitempty"`
	CustomText          []CustomText      `json:"custom_text,omitempty"`
}

// CoverLetter is the request payload for a cover letter
type CoverLetter struct {
	TemplateName      string   `json:"template_name,omitempty"`
	PageSize          string   `json:"page_size,omitempty"`
	Name              string   `json:"name"`
	Title             string   `json:"title,omitempty"`
	Phone             string   `json:"phone,omitempty"`
	Email             string   `json:"email,omitempty"`
	Location          string   `json:"location,omitempty"`
	CompanyName       string   `json:"company_name,omitempty"`
	HiringManagerName string   `json:"hiring_manager_name,omitempty"`
	Paragraph         []string `json:"paragraph,omitempty"`
}

// Document kinds used in filenames and metrics.
const (
	KindResume      = "resume"
	KindCoverLetter = "cover_letter"
)

// Defaults applied by Normalize.
const (
	DefaultTemplate      = "modern"
	DefaultCoverTemplate = "cover"
	DefaultPageSize      = "A4"
)

// SupportedSections lists the resume sections templates know how to lay out.
var SupportedSections = []string{
	"personal_info", "professional_summary", "work_experience",
	"education", "skills", "academic_projects", "certifications",
	"publications", "hobbies", "languages", "referees", "custom_text",
}
