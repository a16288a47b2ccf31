// Package server exposes the grocery list over HTTP and wires each
// successful mutation to a realtime broadcast.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/pantryhub/groceryd/internal/realtime"
	"github.com/pantryhub/groceryd/internal/store"
)

// Config holds server dependencies. Store and Hub are constructed by
// the caller and passed in; the server owns no ambient state.
type Config struct {
	// Port to listen on; 0 picks a free port (tests).
	Port int

	// Store backs all grocery operations.
	Store *store.Store

	// Hub receives one broadcast per successful mutation.
	Hub *realtime.Hub

	// UIDir, when set and present on disk, is served at / instead of
	// the placeholder page.
	UIDir string

	// Logger for server activity (default: stderr logger).
	Logger *log.Logger
}

// Server serves the REST API, the realtime channel, and the landing
// page.
type Server struct {
	store  *store.Store
	hub    *realtime.Hub
	uiDir  string
	logger *log.Logger

	addr     string
	listener net.Listener
	server   *http.Server
	wg       sync.WaitGroup
}

// New creates a server from its dependencies.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg.Hub == nil {
		return nil, fmt.Errorf("hub cannot be nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	return &Server{
		store:  cfg.Store,
		hub:    cfg.Hub,
		uiDir:  cfg.UIDir,
		logger: cfg.Logger,
		addr:   fmt.Sprintf(":%d", cfg.Port),
	}, nil
}

// Start binds the listener and begins serving. Non-blocking; use Stop
// for graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /groceries", s.handleList)
	mux.HandleFunc("POST /groceries", s.handleCreate)
	mux.HandleFunc("PUT /groceries/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /groceries/{id}", s.handleDelete)
	mux.HandleFunc("GET /ws", s.hub.HandleWS)
	mux.HandleFunc("GET /", s.handleRoot)

	s.server = &http.Server{
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: it would sever idle WebSocket subscribers.
	}

	s.hub.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("Listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the server and the hub.
func (s *Server) Stop() error {
	s.logger.Println("Stopping server")

	s.hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.wg.Wait()

	s.logger.Println("Server stopped")
	return nil
}

// GetAddr returns the server's listening address.
func (s *Server) GetAddr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// uiAvailable reports whether a built UI directory exists to serve.
func (s *Server) uiAvailable() bool {
	if s.uiDir == "" {
		return false
	}
	info, err := os.Stat(s.uiDir)
	return err == nil && info.IsDir()
}
