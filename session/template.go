package session

import (
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Template describes a starter project.
type Template struct {
	Name        string         `toml:"name" json:"name"`
	Description string         `toml:"description" json:"description"`
	Files       []TemplateFile `toml:"files" json:"files"`
}

// TemplateFile is one document of a template.
type TemplateFile struct {
	Name    string `toml:"name" json:"name"`
	Content string `toml:"content" json:"content"`
}

type templateFile struct {
	Templates []Template `toml:"template"`
}

//go:embed templates.toml
var builtinTemplates string

var (
	templatesOnce sync.Once
	templates     []Template
)

// LoadTemplates decodes templates from TOML.
func LoadTemplates(r io.Reader) ([]Template, error) {
	var f templateFile
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode templates: unknown keys %v", undecoded)
	}
	for i, t := range f.Templates {
		if strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("template %d: %w", i, ErrInvalidName)
		}
	}
	return f.Templates, nil
}

// Templates returns the built-in project templates.
func Templates() []Template {
	templatesOnce.Do(func() {
		var err error
		templates, err = LoadTemplates(strings.NewReader(builtinTemplates))
		if err != nil {
			panic(err)
		}
	})
	out := make([]Template, len(templates))
	for i, t := range templates {
		t.Files = slices.Clone(t.Files)
		out[i] = t
	}
	return out
}

// TemplateByName returns the built-in template with the given name.
func TemplateByName(name string) (*Template, bool) {
	for _, t := range Templates() {
		if t.Name == name {
			return &t, true
		}
	}
	return nil, false
}
