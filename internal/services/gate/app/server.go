// Package server wires the gate runtime and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kmavego/diagnostic-gate/internal/engine"
	"github.com/kmavego/diagnostic-gate/internal/engine/registry"
	"github.com/kmavego/diagnostic-gate/internal/services/gate/api/httpapi"
	gatesqlite "github.com/kmavego/diagnostic-gate/internal/services/gate/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

// Options carries runtime wiring for the gate server.
type Options struct {
	// StoragePath is the SQLite database path. Empty falls back to
	// data/gate.db.
	StoragePath string
	// RulesDir overrides the embedded rule documents when non-empty.
	RulesDir string
}

// Server hosts the gate HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *gatesqlite.Store
}

// New creates a configured gate server listening on the provided port.
func New(port int, opts Options) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port), opts)
}

// NewWithAddr creates a configured gate server for the provided address.
func NewWithAddr(addr string, opts Options) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	reg, err := loadRegistry(opts.RulesDir)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}
	eng, err := engine.New(reg)
	if err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("build engine: %w", err)
	}

	store, err := openGateStore(opts.StoragePath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	handler, err := httpapi.New(eng, store)
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, fmt.Errorf("build api handler: %w", err)
	}

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           handler.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		},
		store: store,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a gate server until context cancellation.
func Run(ctx context.Context, port int, opts Options) error {
	server, err := New(port, opts)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("gate server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases gate server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close gate store: %v", err)
		}
	}
}

func loadRegistry(rulesDir string) (*registry.Registry, error) {
	if strings.TrimSpace(rulesDir) != "" {
		reg, err := registry.LoadDir(rulesDir)
		if err != nil {
			return nil, fmt.Errorf("load rules from %s: %w", rulesDir, err)
		}
		return reg, nil
	}
	reg, err := registry.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("load embedded rules: %w", err)
	}
	return reg, nil
}

func openGateStore(path string) (*gatesqlite.Store, error) {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join("data", "gate.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := gatesqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gate sqlite store: %w", err)
	}
	return store, nil
}
