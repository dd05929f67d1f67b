// Package session holds the editor's in-memory projects and documents.
//
// A Session is plain data. All mutation goes through a Store, which keeps the
// bounds, unique names, valid indices and derived diagnostics consistent
// after every operation.
package session

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/dhamidi/cedit/analysis"
	"github.com/dhamidi/cedit/ebnf/parse"
)

const (
	MaxProjects  = 5
	MaxDocuments = 8
	MaxRecent    = 3

	DefaultProjectName   = "My Project"
	DefaultDocumentName  = "main.c"
	UntitledDocumentName = "untitled.c"
	UntitledProjectName  = "Untitled Project"
	SourceExtension      = ".c"
)

// DefaultContent is the source of the document in a fresh session.
const DefaultContent = `#include <stdio.h>

int main() {
    printf("Hello, world!\n");
    return 0;
}
`

// Document is one source file together with the results of its latest parse.
type Document struct {
	Name            string                `json:"name"`
	Content         string                `json:"content"`
	Diagnostics     []analysis.Diagnostic `json:"diagnostics"`
	Markers         []analysis.Marker     `json:"markers"`
	DiagnosticCount int                   `json:"diagnosticCount"`

	tree *parse.Node
}

// NewDocument creates a document and analyses its content.
func NewDocument(name, content string) *Document {
	d := &Document{Name: name, Content: content}
	d.apply(analysis.Parse(content))
	return d
}

// Tree returns the concrete syntax tree of the latest parse, or nil if the
// parse bailed.
func (d *Document) Tree() *parse.Node {
	return d.tree
}

func (d *Document) apply(res analysis.Result) {
	d.Diagnostics = res.Diagnostics
	d.Markers = analysis.Markers(res.Diagnostics)
	d.DiagnosticCount = len(res.Diagnostics)
	d.tree = res.Tree
}

func (d *Document) clone() *Document {
	c := *d
	c.Diagnostics = slices.Clone(d.Diagnostics)
	c.Markers = slices.Clone(d.Markers)
	return &c
}

// Project is a named, ordered set of documents with one active document.
type Project struct {
	Name        string      `json:"name"`
	Documents   []*Document `json:"documents"`
	ActiveIndex int         `json:"activeIndex"`
	Recent      []string    `json:"recent,omitempty"` // most recent first
}

// Active returns the active document.
func (p *Project) Active() *Document {
	return p.Documents[p.ActiveIndex]
}

// DocumentNames returns the names of all documents in order.
func (p *Project) DocumentNames() []string {
	names := make([]string, len(p.Documents))
	for i, d := range p.Documents {
		names[i] = d.Name
	}
	return names
}

// touch moves name to the front of the recent trail.
func (p *Project) touch(name string) bool {
	if len(p.Recent) > 0 && p.Recent[0] == name {
		return false
	}
	recent := []string{name}
	for _, r := range p.Recent {
		if r != name && len(recent) < MaxRecent {
			recent = append(recent, r)
		}
	}
	p.Recent = recent
	return true
}

func (p *Project) forget(name string) {
	kept := p.Recent[:0]
	for _, r := range p.Recent {
		if r != name {
			kept = append(kept, r)
		}
	}
	p.Recent = kept
}

func (p *Project) renameRecent(from, to string) {
	for i, r := range p.Recent {
		if r == from {
			p.Recent[i] = to
		}
	}
}

func (p *Project) clone() *Project {
	c := *p
	c.Documents = make([]*Document, len(p.Documents))
	for i, d := range p.Documents {
		c.Documents[i] = d.clone()
	}
	c.Recent = slices.Clone(p.Recent)
	return &c
}

// Session is the complete editing state.
type Session struct {
	Projects      []*Project `json:"projects"`
	ActiveProject int        `json:"activeProject"`
}

// Default returns the session a new user starts with: one project holding
// one hello-world document.
func Default() *Session {
	return &Session{
		Projects: []*Project{{
			Name:      DefaultProjectName,
			Documents: []*Document{NewDocument(DefaultDocumentName, DefaultContent)},
		}},
	}
}

// IsPristine reports whether s is still the untouched default session.
func (s *Session) IsPristine() bool {
	if len(s.Projects) != 1 {
		return false
	}
	p := s.Projects[0]
	if p.Name != DefaultProjectName || len(p.Documents) != 1 {
		return false
	}
	d := p.Documents[0]
	return d.Name == DefaultDocumentName && d.Content == DefaultContent
}

// Active returns the active project.
func (s *Session) Active() *Project {
	return s.Projects[s.ActiveProject]
}

// ProjectNames returns the names of all projects in order.
func (s *Session) ProjectNames() []string {
	names := make([]string, len(s.Projects))
	for i, p := range s.Projects {
		names[i] = p.Name
	}
	return names
}

// Clone returns a deep copy of s. Parse trees are shared; they are never
// modified after a parse.
func (s *Session) Clone() *Session {
	c := &Session{
		Projects:      make([]*Project, len(s.Projects)),
		ActiveProject: s.ActiveProject,
	}
	for i, p := range s.Projects {
		c.Projects[i] = p.clone()
	}
	return c
}

// Validate checks every structural invariant of s.
func (s *Session) Validate() error {
	if n := len(s.Projects); n < 1 || n > MaxProjects {
		return fmt.Errorf("session has %d projects, want 1..%d", n, MaxProjects)
	}
	if s.ActiveProject < 0 || s.ActiveProject >= len(s.Projects) {
		return fmt.Errorf("active project %d: %w", s.ActiveProject, ErrIndexOutOfRange)
	}
	if dup, ok := duplicate(s.ProjectNames()); ok {
		return fmt.Errorf("project %q: %w", dup, ErrNameConflict)
	}
	for _, p := range s.Projects {
		if n := len(p.Documents); n < 1 || n > MaxDocuments {
			return fmt.Errorf("project %q has %d documents, want 1..%d", p.Name, n, MaxDocuments)
		}
		if p.ActiveIndex < 0 || p.ActiveIndex >= len(p.Documents) {
			return fmt.Errorf("project %q active document %d: %w", p.Name, p.ActiveIndex, ErrIndexOutOfRange)
		}
		if dup, ok := duplicate(p.DocumentNames()); ok {
			return fmt.Errorf("project %q document %q: %w", p.Name, dup, ErrNameConflict)
		}
		if len(p.Recent) > MaxRecent {
			return fmt.Errorf("project %q has %d recent entries, want at most %d", p.Name, len(p.Recent), MaxRecent)
		}
		for _, d := range p.Documents {
			if len(d.Markers) != len(d.Diagnostics) || d.DiagnosticCount != len(d.Diagnostics) {
				return fmt.Errorf("document %q: diagnostics, markers and count disagree", d.Name)
			}
		}
	}
	return nil
}

func duplicate(names []string) (string, bool) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return n, true
		}
		seen[n] = true
	}
	return "", false
}

// NormalizeName trims surrounding whitespace and puts name in Unicode NFC
// form, so visually identical names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
