// Package lsp adapts the compiler's diagnostics into a language server.
// It is a thin surface: publishDiagnostics on open/change/save, nothing
// else. Semantic tokens, completion, and hover are editor glue this
// compiler's tooling does not attempt.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// ServerConfig holds the LSP server's configuration.
type ServerConfig struct {
	Logger Logger
}

// Server implements a minimal textDocument/publishDiagnostics provider
// for unit-script source files.
type Server struct {
	config ServerConfig

	connMu      sync.RWMutex
	conn        jsonrpc2.Conn
	ctx         context.Context
	initialized bool
}

// NewServer creates a new LSP server instance.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = discardLogger{}
	}
	return &Server{config: cfg}
}

// SetConn stores the client connection and context (thread-safe), so
// diagnostics can be pushed outside the request/reply cycle that
// received them.
func (s *Server) SetConn(conn jsonrpc2.Conn, ctx context.Context) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.conn = conn
	s.ctx = ctx
}

func (s *Server) getConn() (jsonrpc2.Conn, context.Context) {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return s.conn, s.ctx
}

// Handler returns a jsonrpc2 handler for this server.
func (s *Server) Handler() jsonrpc2.Handler {
	return jsonrpc2.ReplyHandler(s.handleRequest)
}

func (s *Server) handleRequest(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.config.Logger.Debugf("received request: %s", req.Method())

	switch req.Method() {
	case "initialize":
		return s.handleInitialize(ctx, reply, req)
	case "initialized":
		return reply(ctx, nil, nil)
	case "shutdown":
		return s.handleShutdown(ctx, reply)
	case "exit":
		return reply(ctx, nil, nil)
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, reply, req)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, reply, req)
	case "textDocument/didSave":
		return s.handleDidSave(ctx, reply, req)
	case "textDocument/didClose":
		return reply(ctx, nil, nil)
	default:
		s.config.Logger.Debugf("unhandled method: %s", req.Method())
		return reply(ctx, nil, nil)
	}
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, fmt.Errorf("invalid initialize params: %w", err))
	}

	result := protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save:      &protocol.SaveOptions{IncludeText: false},
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "cobc-lsp",
			Version: "0.1.0",
		},
	}

	s.initialized = true
	s.config.Logger.Infof("server initialized")
	return reply(ctx, result, nil)
}

func (s *Server) handleShutdown(ctx context.Context, reply jsonrpc2.Replier) error {
	s.config.Logger.Infof("shutdown requested")
	s.initialized = false
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	s.checkAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	if len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}

	// Full-document sync only: the last change event carries the whole text.
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.checkAndPublish(ctx, params.TextDocument.URI, text)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	// The server advertises IncludeText: false, so re-read the file from
	// disk rather than relying on save-time text being present.
	data, err := os.ReadFile(params.TextDocument.URI.Filename())
	if err != nil {
		s.config.Logger.Warnf("didSave: could not read %s: %v", params.TextDocument.URI.Filename(), err)
		return reply(ctx, nil, nil)
	}

	s.checkAndPublish(ctx, params.TextDocument.URI, string(data))
	return reply(ctx, nil, nil)
}

// checkAndPublish runs the compiler pipeline against text and publishes
// the resulting diagnostics (possibly an empty slice, clearing any prior
// diagnostics for this document).
func (s *Server) checkAndPublish(ctx context.Context, docURI protocol.DocumentURI, text string) {
	errs := checkSource(docURI.Filename(), text)
	s.config.Logger.Debugf("checked %s: %d diagnostic(s)", docURI.Filename(), len(errs))

	conn, storedCtx := s.getConn()
	if conn == nil {
		s.config.Logger.Warnf("no client connection, dropping diagnostics for %s", docURI.Filename())
		return
	}
	if storedCtx != nil {
		ctx = storedCtx
	}

	params := protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: toProtocolDiagnostics(errs),
	}

	if err := conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		s.config.Logger.Warnf("failed to publish diagnostics: %v", err)
	}
}
