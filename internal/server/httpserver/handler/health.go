package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/memkv-go/internal/infra/buildinfo"
)

// handleHealth handles GET /healthz.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /readyz.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		h.writeError(w, r, http.StatusServiceUnavailable, CodeNotReady, "redis listener not ready")
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus handles GET /status.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	var s Stats
	if h.stats != nil {
		s = h.stats()
	}

	bi := buildinfo.Get()
	s.Version = bi.Version
	s.Commit = bi.Commit
	s.GoVersion = bi.GoVersion

	h.writeJSON(w, r, http.StatusOK, s)
}
