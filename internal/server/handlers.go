package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pantryhub/groceryd/internal/realtime"
	"github.com/pantryhub/groceryd/internal/store"
)

// createRequest is the POST /groceries body. Quantity is a pointer so
// an absent field defaults to 1 in the store.
type createRequest struct {
	Name     string `json:"name"`
	Quantity *int64 `json:"quantity"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps store sentinels to HTTP statuses. Anything else
// is an internal error and never leaks detail to the caller.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNameRequired):
		writeError(w, http.StatusBadRequest, store.ErrNameRequired.Error())
	case errors.Is(err, store.ErrNoFields):
		writeError(w, http.StatusBadRequest, store.ErrNoFields.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, store.ErrNotFound.Error())
	default:
		s.logger.Printf("Store error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// broadcast pushes a mutation event to realtime subscribers. Failures
// are logged and swallowed; they never affect the HTTP response.
func (s *Server) broadcast(name string, payload interface{}) {
	evt, err := realtime.NewEvent(name, payload)
	if err != nil {
		s.logger.Printf("Failed to build %s event: %v", name, err)
		return
	}
	s.hub.Broadcast(evt)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var quantity int64
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item, err := s.store.Create(r.Context(), req.Name, quantity)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
	s.broadcast(realtime.EventCreated, item)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, store.ErrNotFound.Error())
		return
	}

	var patch store.Fields
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	item, err := s.store.Update(r.Context(), id, patch)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, item)
	s.broadcast(realtime.EventUpdated, item)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, store.ErrNotFound.Error())
		return
	}

	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeStoreError(w, err)
		return
	}

	payload := map[string]int64{"id": id}
	writeJSON(w, http.StatusOK, payload)
	s.broadcast(realtime.EventDeleted, payload)
}

// handleRoot serves the built UI when configured, else a placeholder
// page at / exactly.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if s.uiAvailable() {
		http.FileServer(http.Dir(s.uiDir)).ServeHTTP(w, r)
		return
	}

	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, store.ErrNotFound.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>groceryd</title>
</head>
<body>
    <h1>groceryd</h1>
    <p>Grocery list API is running. No UI build was found.</p>
    <p>REST endpoint: <code>/groceries</code></p>
    <p>WebSocket endpoint: <code>ws://%s/ws</code></p>
    <p>Health check: <a href="/health">/health</a></p>
</body>
</html>`, r.Host)
}
