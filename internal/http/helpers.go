package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"moneta/internal/core"
	applog "moneta/internal/log"
	"moneta/internal/middleware/trace"
)

// maxBodySize bounds request bodies; CSV imports are small personal
// exports, not bulk data loads.
const maxBodySize = 1 << 20

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= 500 {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorMessage(w, r, status, "internal error")
		return
	}
	writeErrorMessage(w, r, status, err.Error())
}

// writeErrorMessage echoes the request ID set by the trace middleware so
// clients can correlate an error body with the server logs.
func writeErrorMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		RequestID: trace.GetRequestID(r.Context()),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidDate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrMalformedFile):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// recordResponse is the wire shape of a ledger record. Date is the
// effective date the record is attributed to.
type recordResponse struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
}

func toRecordResponse(rec core.Record) recordResponse {
	return recordResponse{
		ID:          rec.ID,
		Category:    rec.Category,
		AmountCents: rec.Amount.Cents,
		Kind:        string(rec.Kind),
		Description: rec.Description,
		Date:        rec.EffectiveDate().Format("2006-01-02"),
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

func toRecordResponses(records []core.Record) []recordResponse {
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	return out
}
