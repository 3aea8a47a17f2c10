// Package lsp exposes the lexer/parser/inspector pipeline over the
// Language Server Protocol (spec.md section 1's "external collaborators"),
// grounded on java/codebase/lsp.go's glsp wiring.
package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/mparse/inspect"
	"github.com/dhamidi/mparse/lexer"
	"github.com/dhamidi/mparse/parse"
	"github.com/dhamidi/mparse/token"
)

const lsName = "mparse"

// document is the per-file state the server keeps between edits: the
// incremental lexer.State plus the last successful parse.Result. A parse
// that fails still keeps the previous good Result around so completion and
// hover keep working while the user is mid-edit (spec.md section 5's
// single-owner-session model, one Server instance owning many documents).
type document struct {
	lex    *lexer.State
	result *parse.Result
}

// Server is the mparse language server (component L). It knows nothing
// about transport: RunStdio and RunWebSocket both defer to the embedded
// glsp server.Server, exactly as java/codebase/lsp.go does.
type Server struct {
	docs    map[string]*document
	handler protocol.Handler
	server  *server.Server
	version string
}

func NewServer(version string) *Server {
	s := &Server{docs: map[string]*document{}, version: version}

	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,
	}
	s.server = server.NewServer(&s.handler, lsName, false)
	return s
}

// RunStdio serves over stdin/stdout, the transport every LSP client
// launches by default.
func (s *Server) RunStdio() error { return s.server.RunStdio() }

// RunWebSocket serves over a websocket listener, exercising
// glsp/server.Server.RunWebSocket (and, transitively, gorilla/websocket
// and sourcegraph/jsonrpc2) for embedders that run mparse behind a browser
// based editor rather than a local process pipe.
func (s *Server) RunWebSocket(address string) error { return s.server.RunWebSocket(address) }

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = &protocol.HoverOptions{}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo:   &protocol.InitializeResultServerInfo{Name: lsName, Version: &s.version},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error { return nil }

func (s *Server) shutdown(ctx *glsp.Context) error { return nil }

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.updateDocument(params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		s.updateDocument(params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	delete(s.docs, params.TextDocument.URI)
	return nil
}

// updateDocument re-lexes and re-parses a document from scratch on every
// full-text change. lexer.State.TryUpdateRange is not used here, since
// didChange only ever carries whole-document text
// (TextDocumentSyncKindFull, set in initialize).
func (s *Server) updateDocument(uri, text string) {
	lexState := lexer.StateFrom(text)
	result := parse.TryLexAndParse(lexState)
	doc, ok := s.docs[uri]
	if !ok {
		doc = &document{}
		s.docs[uri] = doc
	}
	doc.lex = lexState
	if result.Ok() {
		doc.result = result
	} else if doc.result == nil {
		doc.result = result
	}
}

func (s *Server) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc, ok := s.docs[params.TextDocument.URI]
	if !ok || doc.result == nil || doc.result.Root == nil {
		return nil, nil
	}
	pos := positionFromLSP(params.Position)
	scope := inspect.ScopeAt(doc.result.Nodes, doc.result.Root.ID, pos)

	items := make([]protocol.CompletionItem, 0, len(scope.Names))
	kind := protocol.CompletionItemKindVariable
	for name := range scope.Names {
		label := name
		items = append(items, protocol.CompletionItem{Label: label, Kind: &kind})
	}
	return items, nil
}

func (s *Server) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, ok := s.docs[params.TextDocument.URI]
	if !ok || doc.result == nil || doc.result.Root == nil {
		return nil, nil
	}
	pos := positionFromLSP(params.Position)
	closest, ok := inspect.ClosestNode(doc.result.Nodes, doc.result.Root.ID, pos)
	if !ok {
		return nil, nil
	}
	inspector := inspect.NewInspector(doc.result.Nodes)
	typ := inspector.TypeOf(closest.ID())

	value := closest.Kind().String() + ": " + typ.Kind.String()
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindPlainText, Value: value},
	}, nil
}

func positionFromLSP(p protocol.Position) token.Position {
	return token.Position{LineNumber: int(p.Line), LineCodeUnit: int(p.Character)}
}

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
