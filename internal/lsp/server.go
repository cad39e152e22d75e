// Package lsp provides a Language Server Protocol server that surfaces
// coverage inside editors: uncovered lines become hint diagnostics and
// hovering a line reports its execution count.
package lsp

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/covscope/covscope/pkg/coverage"
	"github.com/covscope/covscope/pkg/safeconv"
)

const (
	// serverName is the LSP server implementation name.
	serverName = "covscope"
	// serverVersion is the LSP server implementation version.
	serverVersion = "1.0.0"

	// diagnosticSource labels covscope diagnostics in the editor.
	diagnosticSource = "covscope"

	// publishDiagnosticsMethod is the LSP notification for diagnostics.
	publishDiagnosticsMethod = "textDocument/publishDiagnostics"
)

// DocumentStore is a thread-safe store for document contents keyed by URI.
type DocumentStore struct {
	documents map[string]string // URI -> content.
	mu        sync.RWMutex
}

// NewDocumentStore creates a new empty DocumentStore.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]string),
	}
}

// Set stores document content for the given URI.
func (ds *DocumentStore) Set(uri, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.documents[uri] = content
}

// Get retrieves document content by URI.
func (ds *DocumentStore) Get(uri string) (string, bool) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	content, ok := ds.documents[uri]

	return content, ok
}

// Delete removes document content by URI.
func (ds *DocumentStore) Delete(uri string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.documents, uri)
}

// Server implements the coverage LSP server. Coverage data is loaded
// once at construction; documents are matched against source-file
// aggregates by package-qualified path suffix.
type Server struct {
	store   *DocumentStore
	files   []*coverage.SourceFileAggregate
	handler protocol.Handler
}

// NewServer creates a coverage LSP server over the bundle's source-file
// aggregates.
func NewServer(bundle *coverage.Bundle) *Server {
	srv := &Server{
		store: NewDocumentStore(),
		files: bundle.SourceFiles,
	}

	srv.handler = protocol.Handler{
		Initialize:            srv.initialize,
		Initialized:           srv.initialized,
		Shutdown:              srv.shutdown,
		SetTrace:              srv.setTrace,
		TextDocumentDidOpen:   srv.didOpen,
		TextDocumentDidChange: srv.didChange,
		TextDocumentDidSave:   srv.didSave,
		TextDocumentDidClose:  srv.didClose,
		TextDocumentHover:     srv.hover,
	}

	return srv
}

// Run starts the LSP server on stdio.
func (srv *Server) Run() {
	lspServer := server.NewServer(&srv.handler, serverName, false)

	err := lspServer.RunStdio()
	if err != nil {
		log.Printf("LSP server error: %v", err)
	}
}

func (srv *Server) initialize(_ *glsp.Context, _ *protocol.InitializeParams) (any, error) {
	capabilities := srv.handler.CreateServerCapabilities()
	// Documents always arrive as whole text.
	capabilities.TextDocumentSync = protocol.TextDocumentSyncKindFull

	version := serverVersion

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (srv *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	return nil
}

func (srv *Server) shutdown(_ *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)

	return nil
}

func (srv *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)

	return nil
}

func (srv *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI

	srv.store.Set(uri, params.TextDocument.Text)
	srv.publishDiagnostics(ctx, uri)

	return nil
}

func (srv *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	for _, raw := range params.ContentChanges {
		if text, ok := changeText(raw); ok {
			srv.store.Set(uri, text)
		}
	}

	srv.publishDiagnostics(ctx, uri)

	return nil
}

// changeText extracts the full document text of one content change,
// however the protocol layer decoded it. Incremental edits carry a
// range and are rejected: full sync is declared at initialize.
func changeText(raw any) (string, bool) {
	data, err := json.Marshal(raw)
	if err != nil {
		return "", false
	}

	var change struct {
		Range *protocol.Range `json:"range"`
		Text  string          `json:"text"`
	}

	err = json.Unmarshal(data, &change)
	if err != nil {
		return "", false
	}

	if change.Range != nil {
		return "", false
	}

	return change.Text, true
}

func (srv *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI

	if _, ok := srv.store.Get(uri); ok {
		srv.publishDiagnostics(ctx, uri)
	}

	return nil
}

func (srv *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	srv.store.Delete(uri)

	ctx.Notify(publishDiagnosticsMethod, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})

	return nil
}

func (srv *Server) hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI

	if _, ok := srv.store.Get(uri); !ok {
		return nil, nil // LSP protocol expects nil hover when no document found.
	}

	agg := srv.lookupAggregate(uri)
	if agg == nil {
		return nil, nil
	}

	nr := int(params.Position.Line) + 1

	for _, line := range agg.Lines() {
		if line.Nr != nr {
			continue
		}

		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: hoverText(line),
			},
		}, nil
	}

	return nil, nil // No execution data recorded for this line.
}

func hoverText(line coverage.LineHit) string {
	text := fmt.Sprintf("**%s**: %d hit(s)", diagnosticSource, line.Hits)
	if total := line.Branches.Total(); total > 0 {
		text += fmt.Sprintf(", branches %d/%d covered", line.Branches.Covered, total)
	}

	return text
}

func (srv *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	ctx.Notify(publishDiagnosticsMethod, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: srv.diagnosticsFor(uri),
	})
}

// diagnosticsFor reports one hint per recorded-but-never-executed line
// of the aggregate matching uri, or an empty list for unknown documents.
func (srv *Server) diagnosticsFor(uri string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	agg := srv.lookupAggregate(uri)
	if agg == nil {
		return diagnostics
	}

	severity := protocol.DiagnosticSeverityHint
	source := diagnosticSource

	for _, line := range agg.Lines() {
		if line.Hits > 0 {
			continue
		}

		start := safeconv.MustIntToUint32(line.Nr - 1)

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: start, Character: 0},
				End:   protocol.Position{Line: start + 1, Character: 0},
			},
			Severity: &severity,
			Source:   &source,
			Message:  "line never executed",
		})
	}

	return diagnostics
}

// lookupAggregate resolves the document URI to a source-file aggregate
// by package-qualified suffix match.
func (srv *Server) lookupAggregate(uri string) *coverage.SourceFileAggregate {
	path := documentPath(uri)

	for _, agg := range srv.files {
		suffix := "/" + strings.TrimPrefix(agg.Key(), "/")
		if path == agg.Key() || strings.HasSuffix(path, suffix) {
			return agg
		}
	}

	return nil
}

// documentPath strips the file scheme and decodes percent escapes.
// Non-file URIs pass through unchanged.
func documentPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return uri
	}

	return parsed.Path
}
