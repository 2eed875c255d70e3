package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/chamatt/NotaNegocia-oB3/internal/reconcile"
)

// NewServer creates an HTTP server with all routes configured. Mutating
// routes require the admin API key when one is set.
func NewServer(port string, session *reconcile.Service, directory RegistrantDirectory, exporter SummaryExporter, adminAPIKey string) *http.Server {
	handler := NewHandler(session, directory, exporter)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/positions", handler.GetPositions)
	mux.HandleFunc("GET /api/v1/disclosures", handler.GetDisclosures)
	mux.HandleFunc("GET /api/v1/registrants", handler.LookupRegistrant)

	protect := func(h http.HandlerFunc) http.Handler {
		if adminAPIKey == "" {
			return h
		}
		return requireAuth(adminAPIKey, h)
	}
	mux.Handle("POST /api/v1/notes", protect(handler.UploadNote))
	mux.Handle("PATCH /api/v1/priors/{ticker}", protect(handler.PatchPrior))
	mux.Handle("POST /api/v1/export", protect(handler.ExportSummary))

	return &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
