// Package mcp exposes the compressor as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mvp-joe/astdigest/internal/batch"
	"github.com/mvp-joe/astdigest/internal/config"
)

// ServerName is the name announced to MCP clients.
const ServerName = "astdigest"

// toolDeps is what the tool handlers share.
type toolDeps struct {
	cfg     *config.Config
	root    string
	cache   *batch.Cache
	metrics *CallMetrics
	log     *zap.Logger
}

// Server manages the MCP server lifecycle.
type Server struct {
	deps *toolDeps
	mcp  *server.MCPServer
}

// NewServer creates a server whose tools resolve paths against root.
func NewServer(cfg *config.Config, root, version string, log *zap.Logger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	cache, err := batch.NewCache(cfg.Batch.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	deps := &toolDeps{
		cfg:     cfg,
		root:    absRoot,
		cache:   cache,
		metrics: NewCallMetrics(),
		log:     log,
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)
	AddCompressTool(mcpServer, deps)
	AddStatsTool(mcpServer, deps)

	return &Server{deps: deps, mcp: mcpServer}, nil
}

// Metrics returns the call metrics of the server's tools.
func (s *Server) Metrics() *CallMetrics {
	return s.deps.metrics
}

// Serve serves the tools on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.deps.log.Info("starting MCP server on stdio", zap.String("root", s.deps.root))
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		s.deps.log.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the server's cache.
func (s *Server) Close() {
	s.deps.cache.Close()
}
