// Package templates maps resume and cover letter data onto the two-column
// layout engine. Each variant decides geometry, page furniture and styling
// while sharing the same pagination.
package templates

import (
	"sort"
	"sync"

	"resumeforge/internal/errors"
	"resumeforge/internal/layout"
	"resumeforge/internal/resume"
)

// Composition is the pair of block lists a template produces.
type Composition struct {
	Main    []layout.Block
	Sidebar []layout.Block
}

// Template renders documents of type T.
type Template[T any] interface {
	Name() string
	Description() string
	Geometry(page layout.PageSize) (layout.Geometry, error)
	Decorate(s *layout.Surface, g layout.Geometry, page int)
	Compose(data T) (Composition, error)
}

// Assets supplies named files such as background images.
type Assets interface {
	Get(name string) ([]byte, bool)
}

// Info describes a registered template.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry holds the templates available for one document type.
type Registry[T any] struct {
	mu        sync.RWMutex
	templates map[string]Template[T]
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{templates: make(map[string]Template[T])}
}

// Register adds t, replacing any template of the same name.
func (r *Registry[T]) Register(t Template[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Name()] = t
}

// Get looks a template up by name.
func (r *Registry[T]) Get(name string) (Template[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	if !ok {
		return nil, errors.NewValidationError(errors.ErrCodeUnknownTemplate, "unknown template: "+name, nil).
			WithContext("template", name)
	}
	return t, nil
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List describes every registered template, sorted by name.
func (r *Registry[T]) List() []Info {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]Info, 0, len(names))
	for _, name := range names {
		infos = append(infos, Info{Name: name, Description: r.templates[name].Description()})
	}
	return infos
}

// Resumes returns a registry with the stock resume templates.
func Resumes(assets Assets) *Registry[*resume.Resume] {
	r := NewRegistry[*resume.Resume]()
	r.Register(NewModern(assets))
	r.Register(NewProfessional())
	return r
}

// CoverLetters returns a registry with the stock cover letter templates.
func CoverLetters() *Registry[*resume.CoverLetter] {
	r := NewRegistry[*resume.CoverLetter]()
	r.Register(NewCover())
	return r
}
