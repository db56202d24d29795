// Package site serves the embedded landing page.
package site

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Register attaches the landing page at / to r.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Get("/", NewRootHandler().HandleRoot)
}

// RootHandler serves the landing page.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a root handler over the embedded files.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServerFS(Files())}
}

// HandleRoot handles GET /.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}
