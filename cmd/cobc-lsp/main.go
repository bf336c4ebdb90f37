// Package main implements cobc-lsp, a stdio language server that
// publishes compiler diagnostics for unit-script source files.
package main

import (
	"context"
	"io"
	"os"

	"go.lsp.dev/jsonrpc2"

	"github.com/unit-scripts/cobc/pkg/lsp"
)

func main() {
	logLevel := os.Getenv("COBC_LSP_LOG")
	if logLevel == "" {
		logLevel = "info"
	}
	logger := lsp.NewLogger(logLevel, os.Stderr)

	logger.Infof("starting cobc-lsp (log level: %s)", logLevel)

	server := lsp.NewServer(lsp.ServerConfig{Logger: logger})

	rwc := &stdinoutCloser{stdin: os.Stdin, stdout: os.Stdout}
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store the connection before starting the handler so a diagnostics
	// publish triggered by an early request never races a nil conn.
	server.SetConn(conn, ctx)

	conn.Go(ctx, server.Handler())

	<-conn.Done()
	logger.Infof("connection closed, exiting")
}

// stdinoutCloser wraps os.Stdin/os.Stdout as a single io.ReadWriteCloser
// for the JSON-RPC2 stream. Closing it does not close the underlying
// stdio handles, since the process owns them for its whole lifetime.
type stdinoutCloser struct {
	stdin  *os.File
	stdout *os.File
}

func (s *stdinoutCloser) Read(p []byte) (int, error)  { return s.stdin.Read(p) }
func (s *stdinoutCloser) Write(p []byte) (int, error) { return s.stdout.Write(p) }
func (s *stdinoutCloser) Close() error                { return nil }

var _ io.ReadWriteCloser = (*stdinoutCloser)(nil)
