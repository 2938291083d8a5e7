package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/ad/go-onboarding-wizard/internal/models"
	"github.com/ad/go-onboarding-wizard/internal/services"
	"github.com/google/uuid"
)

const maxPayloadBytes = 1 << 20

// HTTPHandler exposes the progress tracker over the request/response
// boundary. Identity and role arrive as X-User-ID / X-User-Role
// headers from the auth proxy and are trusted as given.
type HTTPHandler struct {
	tracker  *services.ProgressTracker
	registry *services.StepRegistry
}

func NewHTTPHandler(tracker *services.ProgressTracker, registry *services.StepRegistry) *HTTPHandler {
	return &HTTPHandler{
		tracker:  tracker,
		registry: registry,
	}
}

func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/onboarding/progress", h.handleGetProgress)
	mux.HandleFunc("GET /api/onboarding/steps", h.handleListSteps)
	mux.HandleFunc("POST /api/onboarding/steps/{stepOrder}", h.handleCommitStep)
	mux.HandleFunc("POST /api/onboarding/steps/{stepOrder}/skip", h.handleSkipStep)
	mux.HandleFunc("GET /healthz", handleHealthz)
	return logMiddleware(mux)
}

func (h *HTTPHandler) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(w, r)
	if !ok {
		return
	}

	record, err := h.tracker.GetProgress(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *HTTPHandler) handleListSteps(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.Header.Get("X-User-Role"))
	steps := h.registry.Steps(role)
	if len(steps) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown role"})
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

func (h *HTTPHandler) handleCommitStep(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(w, r)
	if !ok {
		return
	}
	role := models.Role(r.Header.Get("X-User-Role"))

	stepOrder, err := strconv.Atoi(r.PathValue("stepOrder"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "step order must be an integer"})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable request body"})
		return
	}

	result, err := h.tracker.CommitStep(userID, role, stepOrder, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleSkipStep(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity(w, r)
	if !ok {
		return
	}
	role := models.Role(r.Header.Get("X-User-Role"))

	stepOrder, err := strconv.Atoi(r.PathValue("stepOrder"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "step order must be an integer"})
		return
	}

	result, err := h.tracker.SkipStep(userID, role, stepOrder)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, skipResponse{
		Success:  result.Success,
		NextStep: result.NextStep,
	})
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type errorResponse struct {
	Error string `json:"error"`
}

type skipResponse struct {
	Success  bool `json:"success"`
	NextStep int  `json:"next_step"`
}

func identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing X-User-ID header"})
		return "", false
	}
	return userID, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnknownStep), errors.Is(err, models.ErrInvalidPayload):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "could not save this step, please try again"})
	default:
		log.Printf("[HTTP] storage failure: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "could not save this step, please try again"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[HTTP] failed to encode response: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		log.Printf("[HTTP] id=%s %s %s status=%d took=%s", requestID, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
