// Package resume holds the document data accepted by the generator and the
// rules for cleaning it up before layout.
package resume

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"resumeforge/internal/errors"
)

// Bullets is a list of description lines. It decodes from either a JSON
// array of strings or a single string with one bullet per line.
type Bullets []string

func (b *Bullets) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*b = splitLines(text)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("description must be a string or a list of strings: %w", err)
	}
	*b = compact(list)
	return nil
}

func splitLines(text string) Bullets {
	return compact(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}

func compact(list []string) []string {
	var out []string
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// FormatDate renders an end date, mapping open-ended values to "Present".
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "present", "current":
		return "Present"
	}
	return s
}

// Decode reads one resume from r and normalizes it.
func Decode(r io.Reader) (*Resume, error) {
	var res Resume
	if err := decodeJSON(r, &res); err != nil {
		return nil, err
	}
	res.Normalize()
	return &res, nil
}

// DecodeCoverLetter reads a cover letter that is either bare or wrapped in
// a "cover_letter_info" object.
func DecodeCoverLetter(r io.Reader) (*CoverLetter, error) {
	var raw map[string]json.RawMessage
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read cover letter", err)
	}
	if err := decodeJSON(bytes.NewReader(data), &raw); err != nil {
		return nil, err
	}
	if inner, ok := raw["cover_letter_info"]; ok {
		data = inner
	}

	var letter CoverLetter
	if err := decodeJSON(bytes.NewReader(data), &letter); err != nil {
		return nil, err
	}
	letter.Normalize()
	return &letter, nil
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, "request body is not valid JSON", err)
	}
	if dec.More() {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, "request body has trailing data", nil)
	}
	return nil
}

// Normalize trims every field, drops empty list entries and fills defaults.
func (r *Resume) Normalize() {
	r.TemplateName = orDefault(r.TemplateName, DefaultTemplate)
	r.PageSize = orDefault(r.PageSize, DefaultPageSize)
	r.Photo = strings.TrimSpace(r.Photo)
	r.ProfessionalSummary = strings.TrimSpace(r.ProfessionalSummary)

	p := &r.PersonalInfo
	for _, f := range []*string{&p.Name, &p.Title, &p.Phone, &p.Email, &p.GitHub, &p.Location, &p.LinkedIn, &p.Website} {
		*f = strings.TrimSpace(*f)
	}

	r.Skills = compact(r.Skills)
	r.Hobbies = compact(r.Hobbies)
	r.Languages = compact(r.Languages)

	links := r.CustomLinks[:0]
	for _, l := range r.CustomLinks {
		l.Name, l.URL = strings.TrimSpace(l.Name), strings.TrimSpace(l.URL)
		if l.Name != "" || l.URL != "" {
			links = append(links, l)
		}
	}
	r.CustomLinks = nilIfEmpty(links)

	jobs := r.WorkExperience[:0]
	for _, w := range r.WorkExperience {
		w.Company, w.Position = strings.TrimSpace(w.Company), strings.TrimSpace(w.Position)
		w.StartDate, w.EndDate = strings.TrimSpace(w.StartDate), strings.TrimSpace(w.EndDate)
		if w.Company != "" || w.Position != "" {
			jobs = append(jobs, w)
		}
	}
	r.WorkExperience = nilIfEmpty(jobs)

	schools := r.Education[:0]
	for _, e := range r.Education {
		e.Institution, e.Degree = strings.TrimSpace(e.Institution), strings.TrimSpace(e.Degree)
		if e.Institution != "" || e.Degree != "" {
			schools = append(schools, e)
		}
	}
	r.Education = nilIfEmpty(schools)

	texts := r.CustomText[:0]
	for _, c := range r.CustomText {
		c.Title, c.Description = strings.TrimSpace(c.Title), strings.TrimSpace(c.Description)
		if c.Title != "" || c.Description != "" {
			texts = append(texts, c)
		}
	}
	r.CustomText = nilIfEmpty(texts)
}

// Normalize trims every field and fills defaults.
func (c *CoverLetter) Normalize() {
	c.TemplateName = orDefault(c.TemplateName, DefaultCoverTemplate)
	c.PageSize = orDefault(c.PageSize, DefaultPageSize)
	for _, f := range []*string{&c.Name, &c.Title, &c.Phone, &c.Email, &c.Location, &c.CompanyName, &c.HiringManagerName} {
		*f = strings.TrimSpace(*f)
	}
	c.Paragraph = compact(c.Paragraph)
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}

// Validate checks the fields a document cannot be rendered without.
func (r *Resume) Validate() error {
	if r.PersonalInfo.Name == "" {
		return errors.NewValidationError(errors.ErrCodeMissingName, "personal_info.name is required", nil).
			WithContext("field", "personal_info.name")
	}
	if r.Photo != "" {
		if _, err := r.PhotoBytes(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the fields a cover letter cannot be rendered without.
func (c *CoverLetter) Validate() error {
	if c.Name == "" {
		return errors.NewValidationError(errors.ErrCodeMissingName, "name is required", nil).
			WithContext("field", "name")
	}
	return nil
}

// PhotoBytes decodes the base64 photo, accepting a data URI prefix.
func (r *Resume) PhotoBytes() ([]byte, error) {
	if r.Photo == "" {
		return nil, nil
	}
	encoded := r.Photo
	if strings.HasPrefix(encoded, "data:") {
		if i := strings.Index(encoded, ","); i >= 0 {
			encoded = encoded[i+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidPhoto, "photo is not valid base64", err)
	}
	return data, nil
}

// Filename derives a download name such as "John_Doe_resume.pdf".
func Filename(name, kind string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			return r
		}
		return -1
	}, name)
	clean = strings.TrimRightFunc(clean, unicode.IsSpace)
	if strings.TrimSpace(clean) == "" {
		clean = "Resume"
	}
	return strings.ReplaceAll(clean, " ", "_") + "_" + kind + ".pdf"
}
