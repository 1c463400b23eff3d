package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pfrederiksen/cheltenham-going/internal/going"
	"github.com/pfrederiksen/cheltenham-going/internal/logger"
	"github.com/pfrederiksen/cheltenham-going/internal/resolver"
)

const (
	// CacheControl lets intermediaries serve a response for 30 minutes and
	// then stale for up to 60 more while they revalidate
	CacheControl = "s-maxage=1800, stale-while-revalidate=3600"

	// FailureMessage is the only error detail callers ever see
	FailureMessage = "Failed to fetch going data"
)

// SuccessResponse carries a resolved report
type SuccessResponse struct {
	Success   bool          `json:"success"`
	Data      *going.Report `json:"data"`
	FetchedAt time.Time     `json:"fetchedAt"`
}

// PendingResponse is returned when no source has published going yet
type PendingResponse struct {
	Success   bool          `json:"success"`
	Data      *going.Report `json:"data"`
	Message   string        `json:"message"`
	FetchedAt time.Time     `json:"fetchedAt"`
}

// ErrorResponse is returned on internal failure
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Envelope builds the response body for a result. Both outcomes are
// successful HTTP responses.
func Envelope(result *resolver.Result, fetchedAt time.Time) interface{} {
	if !result.Available() {
		return PendingResponse{
			Success:   false,
			Data:      nil,
			Message:   result.Message,
			FetchedAt: fetchedAt,
		}
	}
	return SuccessResponse{
		Success:   true,
		Data:      result.Report,
		FetchedAt: fetchedAt,
	}
}

func (s *Server) handleGoing(w http.ResponseWriter, r *http.Request) {
	setGoingHeaders(w)

	result, err := s.lookup(r.Context())
	if err != nil {
		logger.Error("Resolving going failed", logger.Fields{
			"request_id": RequestID(r.Context()),
		}, err)
		s.writeFailure(w)
		return
	}

	fetchedAt := result.ResolvedAt
	if fetchedAt.IsZero() {
		fetchedAt = s.now().UTC()
	}
	s.writeJSON(w, r, http.StatusOK, Envelope(result, fetchedAt))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   s.now().Unix(),
	})
}

// writeJSON encodes v before writing anything so that an encoding failure
// can still be reported as a 500 envelope
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error("Encoding response failed", logger.Fields{
			"path":       r.URL.Path,
			"request_id": RequestID(r.Context()),
		}, err)
		s.writeFailure(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// writeFailure writes the generic 500 envelope. It is built from constants
// and a timestamp only, so encoding it cannot fail.
func (s *Server) writeFailure(w http.ResponseWriter) {
	body, _ := json.Marshal(ErrorResponse{
		Success:   false,
		Error:     FailureMessage,
		FetchedAt: s.now().UTC(),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write(append(body, '\n'))
}

// setGoingHeaders applies the going endpoint's response headers, which
// failures on that route carry as well. CORS middleware only answers
// requests that carry an Origin header, so the open policy is also stated
// here for plain GETs.
func setGoingHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Cache-Control", CacheControl)
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", http.MethodGet)
}
