package handler

import (
	"log/slog"
	"net/http"

	"github.com/vortex/ooxml-redline/internal/middleware"
	"github.com/vortex/ooxml-redline/internal/service"
)

// NewRouter builds the HTTP mux with all routes and middleware.
func NewRouter(logger *slog.Logger, svc service.RedlineService, maxBodyBytes int64) http.Handler {
	mux := http.NewServeMux()

	rl := NewRedlineHandler(svc)

	// Health endpoints
	mux.HandleFunc("GET /health", Health)
	mux.HandleFunc("GET /ready", Health)

	// Engine endpoints
	mux.HandleFunc("POST /api/v1/redline", rl.ApplyRedline)
	mux.HandleFunc("POST /api/v1/ingest", rl.Ingest)
	mux.HandleFunc("POST /api/v1/comments", rl.InjectComments)

	// Apply middleware chain (innermost first; Logging ends up outermost)
	var h http.Handler = mux
	h = middleware.MaxBodySize(maxBodyBytes)(h)
	h = middleware.CORS(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.Logging(logger)(h)

	return h
}
