package persist

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"

	"github.com/dhamidi/cedit/analysis"
	"github.com/dhamidi/cedit/naming"
	"github.com/dhamidi/cedit/session"
)

// Record is the stored form of a session. Per project, Files, Warnings and
// Markers are parallel: index i of each describes the same document.
type Record struct {
	Projects      []ProjectRecord `json:"projects" msgpack:"projects"`
	ActiveProject *int            `json:"activeProject,omitempty" msgpack:"activeProject,omitempty"`
}

type ProjectRecord struct {
	Name        string              `json:"name" msgpack:"name"`
	ActiveIndex *int                `json:"activeIndex,omitempty" msgpack:"activeIndex,omitempty"`
	Files       []FileRecord        `json:"files" msgpack:"files"`
	Warnings    [][]string          `json:"warnings" msgpack:"warnings"`
	Markers     [][]MarkerRecord    `json:"markers" msgpack:"markers"`
	Recent      []string            `json:"recent,omitempty" msgpack:"recent,omitempty"`
}

type FileRecord struct {
	Name          string `json:"name" msgpack:"name"`
	Content       string `json:"content" msgpack:"content"`
	WarningsCount int    `json:"warningsCount" msgpack:"warningsCount"`
}

// MarkerRecord is the stored form of an analysis.Marker. Severity is kept
// loose so a value this build does not know still loads.
type MarkerRecord struct {
	StartLine   int    `json:"startLine" msgpack:"startLine"`
	StartColumn int    `json:"startColumn" msgpack:"startColumn"`
	EndLine     int    `json:"endLine" msgpack:"endLine"`
	EndColumn   int    `json:"endColumn" msgpack:"endColumn"`
	Message     string `json:"message" msgpack:"message"`
	Severity    any    `json:"severity,omitempty" msgpack:"severity,omitempty"`
}

func newMarkerRecords(markers []analysis.Marker) []MarkerRecord {
	out := make([]MarkerRecord, len(markers))
	for i, m := range markers {
		out[i] = MarkerRecord{
			StartLine:   m.StartLine,
			StartColumn: m.StartColumn,
			EndLine:     m.EndLine,
			EndColumn:   m.EndColumn,
			Message:     m.Message,
			Severity:    m.Severity.String(),
		}
	}
	return out
}

// Numeric severities written by the browser editor.
const (
	editorSeverityWarning = 4
	editorSeverityError   = 8
)

// severity decodes the stored severity. A missing value means error. The
// second result is false when the value was not recognized and error was
// assumed.
func (m MarkerRecord) severity() (analysis.Severity, bool) {
	switch v := m.Severity.(type) {
	case nil:
		return analysis.SeverityError, true
	case string:
		var s analysis.Severity
		if err := s.UnmarshalText([]byte(v)); err != nil {
			return analysis.SeverityError, false
		}
		return s, true
	}

	var n float64
	switch rv := reflect.ValueOf(m.Severity); {
	case rv.CanInt():
		n = float64(rv.Int())
	case rv.CanUint():
		n = float64(rv.Uint())
	case rv.CanFloat():
		n = rv.Float()
	default:
		return analysis.SeverityError, false
	}
	switch n {
	case editorSeverityError:
		return analysis.SeverityError, true
	case editorSeverityWarning:
		return analysis.SeverityWarning, true
	}
	return analysis.SeverityError, false
}

func (m MarkerRecord) marker(sev analysis.Severity) analysis.Marker {
	return analysis.Marker{
		StartLine:   m.StartLine,
		StartColumn: m.StartColumn,
		EndLine:     m.EndLine,
		EndColumn:   m.EndColumn,
		Message:     m.Message,
		Severity:    sev,
	}
}

// NewRecord converts s into its stored form.
func NewRecord(s *session.Session) Record {
	active := s.ActiveProject
	rec := Record{
		Projects:      make([]ProjectRecord, len(s.Projects)),
		ActiveProject: &active,
	}
	for i, p := range s.Projects {
		activeIndex := p.ActiveIndex
		pr := ProjectRecord{
			Name:        p.Name,
			ActiveIndex: &activeIndex,
			Files:       make([]FileRecord, len(p.Documents)),
			Warnings:    make([][]string, len(p.Documents)),
			Markers:     make([][]MarkerRecord, len(p.Documents)),
			Recent:      slices.Clone(p.Recent),
		}
		for j, d := range p.Documents {
			pr.Files[j] = FileRecord{Name: d.Name, Content: d.Content, WarningsCount: d.DiagnosticCount}
			pr.Warnings[j] = analysis.Messages(d.Diagnostics)
			pr.Markers[j] = newMarkerRecords(analysis.Markers(d.Diagnostics))
		}
		rec.Projects[i] = pr
	}
	return rec
}

// repairs collects the fixes applied while validating a record.
type repairs []string

func (r *repairs) note(format string, args ...any) {
	*r = append(*r, fmt.Sprintf(format, args...))
}

// Session validates the record and converts it into a session that satisfies
// every session invariant. Each fix applied along the way is described in
// the returned list. It returns nil when the record holds no project.
func (r Record) Session() (*session.Session, []string) {
	if len(r.Projects) == 0 {
		return nil, nil
	}

	var fixes repairs
	projects := r.Projects
	if len(projects) > session.MaxProjects {
		fixes.note("dropped %d projects beyond the limit of %d", len(projects)-session.MaxProjects, session.MaxProjects)
		projects = projects[:session.MaxProjects]
	}

	sess := &session.Session{}
	for i, pr := range projects {
		sess.Projects = append(sess.Projects, pr.project(i, sess.ProjectNames(), &fixes))
	}

	if r.ActiveProject != nil {
		sess.ActiveProject = clamp(*r.ActiveProject, len(sess.Projects), "active project", &fixes)
	}
	return sess, fixes
}

func (pr ProjectRecord) project(i int, siblings []string, fixes *repairs) *session.Project {
	name := session.NormalizeName(pr.Name)
	if name == "" {
		fixes.note("project %d: missing name", i)
		name = session.UntitledProjectName
	}
	if resolved := naming.Resolve(name, siblings, naming.ProjectStyle); resolved != name {
		fixes.note("project %d: renamed duplicate %q to %q", i, name, resolved)
		name = resolved
	}
	p := &session.Project{Name: name}

	if pr.Files == nil {
		fixes.note("project %q: missing files", name)
	}
	markersAligned := len(pr.Markers) == len(pr.Files)
	warningsAligned := len(pr.Warnings) == len(pr.Files)
	switch {
	case pr.Markers == nil && len(pr.Files) > 0:
		fixes.note("project %q: missing markers", name)
	case !markersAligned:
		fixes.note("project %q: discarded %d markers for %d files", name, len(pr.Markers), len(pr.Files))
	}
	switch {
	case pr.Warnings == nil && len(pr.Files) > 0:
		fixes.note("project %q: missing warnings", name)
	case !warningsAligned:
		fixes.note("project %q: discarded %d warnings for %d files", name, len(pr.Warnings), len(pr.Files))
	}

	useMarkers := markersAligned && pr.Markers != nil
	useWarnings := warningsAligned && pr.Warnings != nil

	files := pr.Files
	if len(files) > session.MaxDocuments {
		fixes.note("project %q: dropped %d files beyond the limit of %d", name, len(files)-session.MaxDocuments, session.MaxDocuments)
		files = files[:session.MaxDocuments]
	}

	for j, f := range files {
		docName := session.NormalizeName(f.Name)
		if docName == "" {
			fixes.note("project %q: file %d: missing name", name, j)
			docName = session.UntitledDocumentName
		}
		if resolved := naming.Resolve(docName, p.DocumentNames(), naming.CopyStyle); resolved != docName {
			fixes.note("project %q: renamed duplicate file %q to %q", name, docName, resolved)
			docName = resolved
		}

		var diags []analysis.Diagnostic
		switch {
		case useMarkers:
			for k, m := range pr.Markers[j] {
				sev, ok := m.severity()
				if !ok {
					fixes.note("project %q: file %q: marker %d: severity %v treated as error", name, docName, k, m.Severity)
				}
				diags = append(diags, m.marker(sev).Diagnostic())
			}
		case useWarnings:
			diags = parseWarnings(pr.Warnings[j])
		}
		if (useMarkers || useWarnings) && f.WarningsCount != len(diags) {
			fixes.note("project %q: file %q: warnings count %d does not match %d diagnostics", name, docName, f.WarningsCount, len(diags))
		}

		p.Documents = append(p.Documents, &session.Document{
			Name:            docName,
			Content:         f.Content,
			Diagnostics:     diags,
			Markers:         analysis.Markers(diags),
			DiagnosticCount: len(diags),
		})
	}

	if len(p.Documents) == 0 {
		fixes.note("project %q: no files, added %s", name, session.UntitledDocumentName)
		p.Documents = append(p.Documents, &session.Document{
			Name:    session.UntitledDocumentName,
			Markers: []analysis.Marker{},
		})
	}

	if pr.ActiveIndex == nil {
		fixes.note("project %q: missing activeIndex", name)
	} else {
		p.ActiveIndex = clamp(*pr.ActiveIndex, len(p.Documents), fmt.Sprintf("project %q active index", name), fixes)
	}

	names := p.DocumentNames()
	for _, r := range pr.Recent {
		if len(p.Recent) < session.MaxRecent && slices.Contains(names, r) && !slices.Contains(p.Recent, r) {
			p.Recent = append(p.Recent, r)
		}
	}
	if len(p.Recent) != len(pr.Recent) {
		fixes.note("project %q: dropped %d recent entries", name, len(pr.Recent)-len(p.Recent))
	}
	return p
}

func clamp(index, n int, what string, fixes *repairs) int {
	switch {
	case index < 0:
		fixes.note("%s %d clamped to 0", what, index)
		return 0
	case index >= n:
		fixes.note("%s %d clamped to %d", what, index, n-1)
		return n - 1
	}
	return index
}

var warningPattern = regexp.MustCompile(`^line (\d+):(\d+) (.*)$`)

// parseWarnings recovers diagnostics from their "line L:C message" form.
// Strings in any other form are skipped.
func parseWarnings(warnings []string) []analysis.Diagnostic {
	var diags []analysis.Diagnostic
	for _, w := range warnings {
		m := warningPattern.FindStringSubmatch(w)
		if m == nil {
			continue
		}
		line, _ := strconv.Atoi(m[1])
		col, _ := strconv.Atoi(m[2])
		diags = append(diags, analysis.Diagnostic{
			Line:     line,
			Column:   col,
			Message:  m[3],
			Severity: analysis.SeverityError,
		})
	}
	return diags
}
