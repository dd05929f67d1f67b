// Package ui serves the editor session over HTTP: a JSON API mirroring the
// Store operations and an HTML overview page.
package ui

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/cedit/analysis"
	"github.com/dhamidi/cedit/session"
)

//go:embed templates
var embeddedFS embed.FS

var log = commonlog.GetLogger("cedit.ui")

// maxUpload bounds request bodies carrying source text.
const maxUpload = 1 << 20

type Server struct {
	store      *session.Store
	mux        *http.ServeMux
	templateFS fs.FS
	funcMap    template.FuncMap
}

func NewServer(store *session.Store) (*Server, error) {
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
	}

	// Parse once up front so a broken template fails at startup.
	if _, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html"); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		store:      store,
		mux:        http.NewServeMux(),
		templateFS: templateFS,
		funcMap:    funcMap,
	}

	s.mux.HandleFunc("GET /api/session", s.handleSession)
	s.mux.HandleFunc("GET /api/ast", s.handleAST)
	s.mux.HandleFunc("GET /api/templates", s.handleTemplates)
	s.mux.HandleFunc("POST /api/projects", s.handleNewProject)
	s.mux.HandleFunc("POST /api/projects/{p}/activate", s.handleActivateProject)
	s.mux.HandleFunc("PUT /api/projects/{p}/name", s.handleRenameProject)
	s.mux.HandleFunc("DELETE /api/projects/{p}", s.handleDeleteProject)
	s.mux.HandleFunc("POST /api/projects/{p}/documents", s.handleNewDocument)
	s.mux.HandleFunc("POST /api/projects/{p}/uploads", s.handleUpload)
	s.mux.HandleFunc("PUT /api/projects/{p}/documents/{d}/name", s.handleRenameDocument)
	s.mux.HandleFunc("PUT /api/projects/{p}/documents/{d}/content", s.handleUpdateContent)
	s.mux.HandleFunc("POST /api/projects/{p}/documents/{d}/activate", s.handleActivateDocument)
	s.mux.HandleFunc("DELETE /api/projects/{p}/documents/{d}", s.handleDeleteDocument)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", strconv.Quote(strconv.FormatUint(s.store.Revision(), 10)))
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("encode response: %s", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Errorf("%s", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// statusOf maps store refusals onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, session.ErrCapacityExceeded),
		errors.Is(err, session.ErrLastItemProtected),
		errors.Is(err, session.ErrNameConflict):
		return http.StatusConflict
	case errors.Is(err, session.ErrInvalidName),
		errors.Is(err, session.ErrInvalidFileName),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotConfirmed):
		return http.StatusPreconditionRequired
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func pathIndex(r *http.Request, name string) (int, error) {
	v := r.PathValue(name)
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an index: %w", name, v, errBadRequest)
	}
	return i, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUpload)).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %s: %w", err, errBadRequest)
	}
	return nil
}

type indexResponse struct {
	Index int `json:"index"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Session())
}

func (s *Server) handleAST(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.DisplayAST())
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, session.Templates())
}

func (s *Server) handleNewProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Template string `json:"template"`
	}
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
	}
	var tmpl *session.Template
	if req.Template != "" {
		t, ok := session.TemplateByName(req.Template)
		if !ok {
			s.writeError(w, fmt.Errorf("unknown template %q: %w", req.Template, errBadRequest))
			return
		}
		tmpl = t
	}
	i, err := s.store.NewProject(tmpl)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, indexResponse{Index: i})
}

func (s *Server) handleActivateProject(w http.ResponseWriter, r *http.Request) {
	pi, err := pathIndex(r, "p")
	if err == nil {
		err = s.store.SetActiveProject(pi)
	}
	s.finish(w, err)
}

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	pi, err := pathIndex(r, "p")
	if err == nil {
		err = decode(r, &req)
	}
	if err == nil {
		err = s.store.RenameProject(pi, req.Name)
	}
	s.finish(w, err)
}

// handleDeleteProject takes the number of confirmation steps the user has
// accepted in ?confirm=N. If ?name= is given it must match the project.
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	pi, err := pathIndex(r, "p")
	if err != nil {
		s.writeError(w, err)
		return
	}
	accepted, _ := strconv.Atoi(r.URL.Query().Get("confirm"))
	expectName := r.URL.Query().Get("name")
	confirm := func(step int, name string) bool {
		if expectName != "" && expectName != name {
			return false
		}
		return step <= accepted
	}
	s.finish(w, s.store.DeleteProject(pi, confirm))
}

func (s *Server) handleNewDocument(w http.ResponseWriter, r *http.Request) {
	pi, err := pathIndex(r, "p")
	if err != nil {
		s.writeError(w, err)
		return
	}
	di, err := s.store.NewDocument(pi)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, indexResponse{Index: di})
}

// handleUpload accepts either a multipart form with a "file" part or a JSON
// body {name, content}.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	pi, err := pathIndex(r, "p")
	if err != nil {
		s.writeError(w, err)
		return
	}

	var name, content string
	if r.Header.Get("Content-Type") == "application/json" {
		var req struct {
			Name    string `json:"name"`
			Content string `json:"content"`
		}
		if err := decode(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		name, content = req.Name, req.Content
	} else {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			s.writeError(w, fmt.Errorf("invalid form data: %s: %w", err, errBadRequest))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			s.writeError(w, fmt.Errorf("missing file: %s: %w", err, errBadRequest))
			return
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUpload))
		if err != nil {
			s.writeError(w, err)
			return
		}
		name, content = header.Filename, string(data)
	}

	di, err := s.store.UploadDocument(pi, name, content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, indexResponse{Index: di})
}

func documentIndices(r *http.Request) (int, int, error) {
	pi, err := pathIndex(r, "p")
	if err != nil {
		return 0, 0, err
	}
	di, err := pathIndex(r, "d")
	return pi, di, err
}

func (s *Server) handleRenameDocument(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	pi, di, err := documentIndices(r)
	if err == nil {
		err = decode(r, &req)
	}
	if err == nil {
		err = s.store.RenameDocument(pi, di, req.Name)
	}
	s.finish(w, err)
}

type contentResponse struct {
	Diagnostics []string          `json:"diagnostics"`
	Markers     []analysis.Marker `json:"markers"`
	Count       int               `json:"diagnosticCount"`
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	pi, di, err := documentIndices(r)
	if err == nil {
		err = decode(r, &req)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	diags, err := s.store.UpdateContent(pi, di, req.Content)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contentResponse{
		Diagnostics: analysis.Messages(diags),
		Markers:     analysis.Markers(diags),
		Count:       len(diags),
	})
}

func (s *Server) handleActivateDocument(w http.ResponseWriter, r *http.Request) {
	pi, di, err := documentIndices(r)
	if err == nil {
		err = s.store.SetActiveDocument(pi, di)
	}
	s.finish(w, err)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	pi, di, err := documentIndices(r)
	if err == nil {
		err = s.store.DeleteDocument(pi, di)
	}
	s.finish(w, err)
}

// finish answers a mutation with the resulting session.
func (s *Server) finish(w http.ResponseWriter, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.store.Session())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Session   *session.Session
		Templates []session.Template
		Revision  uint64
	}{
		Session:   s.store.Session(),
		Templates: session.Templates(),
		Revision:  s.store.Revision(),
	}
	s.render(w, "index.html", data)
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

type overlayFSType struct {
	primary   fs.FS
	secondary fs.FS
}

// overlayFS serves files from primaryPath on disk when present, falling back
// to the embedded copy.
func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlayFSType{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlayFSType) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlayFSType) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)

	if rd, ok := o.secondary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	if rd, ok := o.primary.(fs.ReadDirFS); ok {
		if list, err := rd.ReadDir(name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	return result, nil
}
