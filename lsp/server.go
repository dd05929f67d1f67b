// Package lsp serves C documents over the Language Server Protocol:
// diagnostics on open and change, completion, and the cedit/ast request that
// returns a document's display tree.
package lsp

import (
	"encoding/json"
	"errors"
	"sync"

	"fortio.org/safecast"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/cedit/analysis"
	"github.com/dhamidi/cedit/ast"
	"github.com/dhamidi/cedit/csyntax"
)

const lsName = "cedit"

// MethodAST is the custom request returning the {name, children} tree of an
// open document.
const MethodAST = "cedit/ast"

var log = commonlog.GetLogger("cedit.lsp")

// ASTParams are the parameters of a cedit/ast request.
type ASTParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
}

type document struct {
	text   string
	result analysis.Result
}

// Server is a glsp handler over an in-memory set of open documents.
type Server struct {
	handler protocol.Handler
	server  *server.Server
	version string

	mu   sync.Mutex
	docs map[protocol.DocumentUri]*document
}

func NewServer(version string) *Server {
	ls := &Server{
		version: version,
		docs:    make(map[protocol.DocumentUri]*document),
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(ls, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

// Handle answers cedit/ast itself and hands every other method to the
// protocol handler.
func (ls *Server) Handle(ctx *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	if ctx.Method != MethodAST {
		return ls.handler.Handle(ctx)
	}
	if !ls.handler.IsInitialized() {
		return nil, true, true, errors.New("server not initialized")
	}
	var params ASTParams
	if err := json.Unmarshal(ctx.Params, &params); err != nil {
		return nil, true, false, err
	}
	tree, err := ls.ast(params.TextDocument.URI)
	return tree, true, true, err
}

func (ls *Server) ast(uri protocol.DocumentUri) (*ast.Node, error) {
	ls.mu.Lock()
	doc, ok := ls.docs[uri]
	ls.mu.Unlock()
	if !ok {
		return nil, errors.New("document not open: " + uri)
	}
	return ast.Project(doc.result.Tree, csyntax.RuleNames()), nil
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("client initialized")
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	ls.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		ls.update(ctx, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ls.mu.Lock()
	delete(ls.docs, params.TextDocument.URI)
	ls.mu.Unlock()
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, *params.Text)
	}
	return nil
}

func (ls *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	return completionItems(), nil
}

// update re-analyses a document and publishes its diagnostics. Unchanged
// text is not re-parsed.
func (ls *Server) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	ls.mu.Lock()
	doc, ok := ls.docs[uri]
	if !ok || doc.text != text {
		doc = &document{text: text, result: analysis.Parse(text)}
		ls.docs[uri] = doc
	}
	ls.mu.Unlock()

	log.Debugf("%s: %d diagnostics", uri, len(doc.result.Diagnostics))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(analysis.Markers(doc.result.Diagnostics)),
	})
}

// toProtocolDiagnostics converts 1-based editor markers to 0-based LSP
// ranges.
func toProtocolDiagnostics(markers []analysis.Marker) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(markers))
	source := lsName
	for _, m := range markers {
		severity := protocol.DiagnosticSeverityError
		if m.Severity == analysis.SeverityWarning {
			severity = protocol.DiagnosticSeverityWarning
		}
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: position(m.StartLine, m.StartColumn),
				End:   position(m.EndLine, m.EndColumn),
			},
			Severity: &severity,
			Source:   &source,
			Message:  m.Message,
		})
	}
	return out
}

func position(line, column int) protocol.Position {
	l, err := safecast.Conv[uint32](line - 1)
	if err != nil {
		l = 0
	}
	c, err := safecast.Conv[uint32](column - 1)
	if err != nil {
		c = 0
	}
	return protocol.Position{Line: l, Character: c}
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
