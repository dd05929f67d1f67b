package session

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/cedit/analysis"
	"github.com/dhamidi/cedit/ast"
	"github.com/dhamidi/cedit/csyntax"
	"github.com/dhamidi/cedit/ebnf/parse"
	"github.com/dhamidi/cedit/naming"
)

var log = commonlog.GetLogger("cedit.session")

// Snapshotter persists a session after each committed change.
type Snapshotter interface {
	Save(s *Session) error
}

// Clearer is implemented by snapshotters that can forget a stored session.
// Store.Reset uses it, because the default session itself is never saved.
type Clearer interface {
	Clear() error
}

// Confirm is asked before a destructive operation. step counts from 1.
type Confirm func(step int, name string) bool

// AlwaysConfirm approves every step.
func AlwaysConfirm(int, string) bool { return true }

// Option configures a Store.
type Option func(*Store)

// WithSnapshotter saves the session after every committed change.
func WithSnapshotter(snap Snapshotter) Option {
	return func(s *Store) {
		s.snapshotter = snap
	}
}

// WithAnalyzer replaces the function used to parse document content.
func WithAnalyzer(analyze func(source string) analysis.Result, ruleNames []string) Option {
	return func(s *Store) {
		s.analyze = analyze
		s.ruleNames = ruleNames
	}
}

// Store owns a Session and is the only way to change it. Every operation
// either commits completely or returns an error and changes nothing.
type Store struct {
	mu          sync.Mutex
	session     *Session
	analyze     func(string) analysis.Result
	ruleNames   []string
	snapshotter Snapshotter
	observers   []func(*Session)
	revision    uint64

	display     *ast.Node
	displayTree *parse.Node
}

// NewStore creates a store holding the default session.
func NewStore(opts ...Option) *Store {
	s := &Store{
		session:   Default(),
		analyze:   func(src string) analysis.Result { return analysis.Parse(src) },
		ruleNames: csyntax.RuleNames(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reanalyze()
	s.refreshDisplay()
	return s
}

// OnChange registers fn to receive a copy of the session after every
// committed change.
func (s *Store) OnChange(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Session returns a copy of the current session.
func (s *Store) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Clone()
}

// Revision counts committed changes.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// DisplayAST returns the display tree of the active document of the active
// project, or nil if its latest parse bailed. Callers must not modify it.
func (s *Store) DisplayAST() *ast.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}

// update runs fn against the live session. fn must validate before it
// mutates and report whether anything changed. Changes are committed by
// refreshing the display tree, saving a snapshot and notifying observers.
func (s *Store) update(save bool, fn func(sess *Session) (bool, error)) error {
	s.mu.Lock()
	changed, err := fn(s.session)
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	s.revision++
	s.refreshDisplay()
	if save {
		s.snapshot()
	}
	observers := slices.Clone(s.observers)
	var copied *Session
	if len(observers) > 0 {
		copied = s.session.Clone()
	}
	s.mu.Unlock()

	for _, fn := range observers {
		fn(copied)
	}
	return nil
}

func (s *Store) snapshot() {
	if s.snapshotter == nil {
		return
	}
	if s.session.IsPristine() {
		log.Debug("skipping snapshot of pristine session")
		return
	}
	if err := s.snapshotter.Save(s.session); err != nil {
		log.Errorf("save session: %s", err)
	}
}

func (s *Store) refreshDisplay() {
	tree := s.session.Active().Active().tree
	if tree == s.displayTree {
		return
	}
	s.displayTree = tree
	s.display = ast.Project(tree, s.ruleNames)
}

func (s *Store) reanalyze() {
	for _, p := range s.session.Projects {
		for _, d := range p.Documents {
			d.apply(s.analyze(d.Content))
		}
	}
}

func (s *Store) newDocument(name, content string) *Document {
	d := &Document{Name: name, Content: content}
	d.apply(s.analyze(content))
	return d
}

func project(sess *Session, index int) (*Project, error) {
	if index < 0 || index >= len(sess.Projects) {
		return nil, fmt.Errorf("project %d: %w", index, ErrIndexOutOfRange)
	}
	return sess.Projects[index], nil
}

func document(sess *Session, pi, di int) (*Project, *Document, error) {
	p, err := project(sess, pi)
	if err != nil {
		return nil, nil, err
	}
	if di < 0 || di >= len(p.Documents) {
		return nil, nil, fmt.Errorf("document %d of project %q: %w", di, p.Name, ErrIndexOutOfRange)
	}
	return p, p.Documents[di], nil
}

// clampAfterRemoval returns the index that keeps pointing at the same item,
// or at its successor, after the item at removed is deleted.
func clampAfterRemoval(active, removed, newLen int) int {
	if active > removed {
		active--
	}
	if active >= newLen {
		active = newLen - 1
	}
	return active
}

// NewProject adds a project seeded from tmpl, or with a single default
// document when tmpl is nil, and makes it active. It returns the index of
// the new project.
func (s *Store) NewProject(tmpl *Template) (int, error) {
	var index int
	err := s.update(true, func(sess *Session) (bool, error) {
		if len(sess.Projects) >= MaxProjects {
			return false, fmt.Errorf("new project: at most %d projects: %w", MaxProjects, ErrCapacityExceeded)
		}

		name := UntitledProjectName
		var files []TemplateFile
		if tmpl != nil {
			if n := NormalizeName(tmpl.Name); n != "" {
				name = n
			}
			files = tmpl.Files
		} else {
			files = []TemplateFile{{Name: DefaultDocumentName, Content: DefaultContent}}
		}

		p := &Project{Name: naming.Resolve(name, sess.ProjectNames(), naming.ProjectStyle)}
		for _, f := range files {
			if len(p.Documents) == MaxDocuments {
				log.Warningf("template %q has more than %d files, ignoring %q", name, MaxDocuments, f.Name)
				continue
			}
			docName := NormalizeName(f.Name)
			if docName == "" {
				docName = UntitledDocumentName
			}
			docName = naming.Resolve(docName, p.DocumentNames(), naming.CopyStyle)
			p.Documents = append(p.Documents, s.newDocument(docName, f.Content))
		}
		if len(p.Documents) == 0 {
			p.Documents = append(p.Documents, s.newDocument(UntitledDocumentName, ""))
		}
		p.touch(p.Documents[0].Name)

		sess.Projects = append(sess.Projects, p)
		sess.ActiveProject = len(sess.Projects) - 1
		index = sess.ActiveProject
		log.Infof("created project %q", p.Name)
		return true, nil
	})
	return index, err
}

// SetActiveProject makes the project at index active.
func (s *Store) SetActiveProject(index int) error {
	return s.update(true, func(sess *Session) (bool, error) {
		if _, err := project(sess, index); err != nil {
			return false, err
		}
		if sess.ActiveProject == index {
			return false, nil
		}
		sess.ActiveProject = index
		return true, nil
	})
}

// RenameProject renames the project at index. The name is trimmed and must
// not be empty or used by another project.
func (s *Store) RenameProject(index int, name string) error {
	name = NormalizeName(name)
	return s.update(true, func(sess *Session) (bool, error) {
		p, err := project(sess, index)
		if err != nil {
			return false, err
		}
		if name == "" {
			return false, fmt.Errorf("rename project %q: %w", p.Name, ErrInvalidName)
		}
		if name == p.Name {
			return false, nil
		}
		for i, other := range sess.Projects {
			if i != index && other.Name == name {
				return false, fmt.Errorf("rename project %q to %q: %w", p.Name, name, ErrNameConflict)
			}
		}
		log.Infof("renamed project %q to %q", p.Name, name)
		p.Name = name
		return true, nil
	})
}

// DeleteProject removes the project at index after confirm approves both
// steps. The last remaining project cannot be deleted.
func (s *Store) DeleteProject(index int, confirm Confirm) error {
	s.mu.Lock()
	p, err := project(s.session, index)
	var name string
	if err == nil {
		name = p.Name
		if len(s.session.Projects) == 1 {
			err = fmt.Errorf("delete project %q: %w", name, ErrLastItemProtected)
		}
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	for step := 1; step <= 2; step++ {
		if confirm == nil || !confirm(step, name) {
			return fmt.Errorf("delete project %q: step %d: %w", name, step, ErrNotConfirmed)
		}
	}

	return s.update(true, func(sess *Session) (bool, error) {
		p, err := project(sess, index)
		if err != nil {
			return false, err
		}
		if p.Name != name {
			return false, fmt.Errorf("delete project %q: project %d is now %q: %w", name, index, p.Name, ErrNotConfirmed)
		}
		if len(sess.Projects) == 1 {
			return false, fmt.Errorf("delete project %q: %w", name, ErrLastItemProtected)
		}
		sess.Projects = append(sess.Projects[:index:index], sess.Projects[index+1:]...)
		sess.ActiveProject = clampAfterRemoval(sess.ActiveProject, index, len(sess.Projects))
		log.Infof("deleted project %q", name)
		return true, nil
	})
}

// NewDocument adds an empty untitled document to project pi and makes it
// active. It returns the index of the new document.
func (s *Store) NewDocument(pi int) (int, error) {
	var index int
	err := s.update(true, func(sess *Session) (bool, error) {
		p, err := project(sess, pi)
		if err != nil {
			return false, err
		}
		if len(p.Documents) >= MaxDocuments {
			return false, fmt.Errorf("new document in %q: at most %d documents: %w", p.Name, MaxDocuments, ErrCapacityExceeded)
		}
		name := naming.Resolve(UntitledDocumentName, p.DocumentNames(), naming.UntitledStyle)
		index = s.appendDocument(p, s.newDocument(name, ""))
		return true, nil
	})
	return index, err
}

// UploadDocument adds a document with the given file name and content to
// project pi and makes it active. Only the base name is kept; it must end in
// ".c". A name already taken gets a " (N)" suffix.
func (s *Store) UploadDocument(pi int, fileName, content string) (int, error) {
	name := path.Base(NormalizeName(strings.ReplaceAll(fileName, `\`, "/")))
	var index int
	err := s.update(true, func(sess *Session) (bool, error) {
		p, err := project(sess, pi)
		if err != nil {
			return false, err
		}
		if !strings.HasSuffix(name, SourceExtension) || name == SourceExtension {
			return false, fmt.Errorf("upload %q: %w", fileName, ErrInvalidFileName)
		}
		if len(p.Documents) >= MaxDocuments {
			return false, fmt.Errorf("upload %q to %q: at most %d documents: %w", name, p.Name, MaxDocuments, ErrCapacityExceeded)
		}
		resolved := naming.Resolve(name, p.DocumentNames(), naming.CopyStyle)
		index = s.appendDocument(p, s.newDocument(resolved, content))
		return true, nil
	})
	return index, err
}

func (s *Store) appendDocument(p *Project, d *Document) int {
	p.Documents = append(p.Documents, d)
	p.ActiveIndex = len(p.Documents) - 1
	p.touch(d.Name)
	log.Infof("added document %q to project %q", d.Name, p.Name)
	return p.ActiveIndex
}

// RenameDocument renames document di of project pi. The name is trimmed and
// must not be empty, contain a path separator, or be used by a sibling.
func (s *Store) RenameDocument(pi, di int, name string) error {
	name = NormalizeName(name)
	return s.update(true, func(sess *Session) (bool, error) {
		p, d, err := document(sess, pi, di)
		if err != nil {
			return false, err
		}
		if name == "" || strings.ContainsAny(name, `/\`) {
			return false, fmt.Errorf("rename document %q to %q: %w", d.Name, name, ErrInvalidName)
		}
		if name == d.Name {
			return false, nil
		}
		for i, other := range p.Documents {
			if i != di && other.Name == name {
				return false, fmt.Errorf("rename document %q to %q: %w", d.Name, name, ErrNameConflict)
			}
		}
		p.renameRecent(d.Name, name)
		d.Name = name
		return true, nil
	})
}

// DeleteDocument removes document di of project pi together with its
// diagnostics and markers. The last document of a project cannot be deleted.
func (s *Store) DeleteDocument(pi, di int) error {
	return s.update(true, func(sess *Session) (bool, error) {
		p, d, err := document(sess, pi, di)
		if err != nil {
			return false, err
		}
		if len(p.Documents) == 1 {
			return false, fmt.Errorf("delete document %q: %w", d.Name, ErrLastItemProtected)
		}
		p.Documents = append(p.Documents[:di:di], p.Documents[di+1:]...)
		p.ActiveIndex = clampAfterRemoval(p.ActiveIndex, di, len(p.Documents))
		p.forget(d.Name)
		log.Infof("deleted document %q from project %q", d.Name, p.Name)
		return true, nil
	})
}

// SetActiveDocument makes document di the active document of project pi and
// records it in the project's recent trail.
func (s *Store) SetActiveDocument(pi, di int) error {
	return s.update(true, func(sess *Session) (bool, error) {
		p, d, err := document(sess, pi, di)
		if err != nil {
			return false, err
		}
		changed := p.ActiveIndex != di
		p.ActiveIndex = di
		if p.touch(d.Name) {
			changed = true
		}
		return changed, nil
	})
}

// UpdateContent replaces the content of document di of project pi and
// re-derives its diagnostics. It returns the new diagnostics.
func (s *Store) UpdateContent(pi, di int, content string) ([]analysis.Diagnostic, error) {
	var diags []analysis.Diagnostic
	err := s.update(true, func(sess *Session) (bool, error) {
		_, d, err := document(sess, pi, di)
		if err != nil {
			return false, err
		}
		if d.Content == content {
			diags = append(diags, d.Diagnostics...)
			return false, nil
		}
		d.Content = content
		d.apply(s.analyze(content))
		diags = append(diags, d.Diagnostics...)
		return true, nil
	})
	return diags, err
}

// Reset replaces the session with the default session and clears the stored
// snapshot if the snapshotter supports it.
func (s *Store) Reset() error {
	err := s.update(false, func(sess *Session) (bool, error) {
		*sess = *Default()
		s.reanalyze()
		return true, nil
	})
	if err != nil {
		return err
	}
	if c, ok := s.snapshotter.(Clearer); ok {
		if err := c.Clear(); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	return nil
}

// Restore replaces the session with loaded, typically a session read back
// from storage. Every document is re-analysed, so stored diagnostics never
// outlive the content they describe. The restored session is not saved
// again.
func (s *Store) Restore(loaded *Session) error {
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	restored := loaded.Clone()
	return s.update(false, func(sess *Session) (bool, error) {
		*sess = *restored
		s.reanalyze()
		return true, nil
	})
}
