package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/chamatt/NotaNegocia-oB3/internal/domain"
	"github.com/chamatt/NotaNegocia-oB3/internal/prior"
	"github.com/chamatt/NotaNegocia-oB3/internal/reconcile"
)

// maxNoteSize bounds an uploaded workbook; trade notes are a few hundred
// rows at most.
const maxNoteSize = 10 << 20

// RegistrantDirectory resolves institution names to CNPJs.
type RegistrantDirectory interface {
	Lookup(name string) (string, bool)
}

// SummaryExporter writes the current position summary to an external sheet.
type SummaryExporter interface {
	ExportSummary(ctx context.Context, positions []domain.Position, disclosures []reconcile.Disclosure) error
}

// Handler provides the reconciliation HTTP endpoints.
type Handler struct {
	session   *reconcile.Service
	directory RegistrantDirectory // optional
	exporter  SummaryExporter     // optional
}

// NewHandler creates a new API handler.
func NewHandler(session *reconcile.Service, directory RegistrantDirectory, exporter SummaryExporter) *Handler {
	return &Handler{session: session, directory: directory, exporter: exporter}
}

// UploadNote handles POST /api/v1/notes: a multipart upload of one trade
// note, replacing the session's transaction set.
func (h *Handler) UploadNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxNoteSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	summary, err := h.session.LoadNote(file)
	if errors.Is(err, reconcile.ErrUnreadableNote) {
		writeError(w, http.StatusUnprocessableEntity, "uploaded file is not a readable trade note")
		return
	}
	if err != nil {
		slog.Error("failed to load trade note", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// GetPositions handles GET /api/v1/positions.
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Positions())
}

// PatchPrior handles PATCH /api/v1/priors/{ticker}: a merge-patch of the
// prior-period position for one ticker. The response is the recomputed
// position list.
func (h *Handler) PatchPrior(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	var patch prior.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid prior patch body")
		return
	}

	positions, err := h.session.ApplyPrior(ticker, patch)
	if errors.Is(err, prior.ErrNegativePrior) {
		writeError(w, http.StatusBadRequest, "prior price and quantity must be non-negative")
		return
	}
	if err != nil {
		slog.Error("failed to apply prior patch", "ticker", ticker, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, positions)
}

// GetDisclosures handles GET /api/v1/disclosures.
func (h *Handler) GetDisclosures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Disclosures())
}

// LookupRegistrant handles GET /api/v1/registrants?name=.
func (h *Handler) LookupRegistrant(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'name' is required")
		return
	}
	if h.directory == nil {
		writeError(w, http.StatusServiceUnavailable, "registrant directory not configured")
		return
	}

	cnpj, ok := h.directory.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, "registrant not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "cnpj": cnpj})
}

// ExportSummary handles POST /api/v1/export: writes the current summary to
// the configured sheet destination.
func (h *Handler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "no export destination configured")
		return
	}

	if err := h.exporter.ExportSummary(r.Context(), h.session.Positions(), h.session.Disclosures()); err != nil {
		slog.Error("failed to export summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "exported"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
