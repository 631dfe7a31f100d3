package signals

import (
	"encoding/json"
	"errors"
	"net/http"
)

type recordRequest struct {
	JobID      string `json:"jobId"`
	SignalType string `json:"signalType"`
}

// Handler exposes signal recording over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the signal route on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/signals", h.handleRecord)
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "x-user-id header is required", http.StatusUnauthorized)
		return
	}

	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.JobID == "" {
		jsonError(w, "jobId is required", http.StatusBadRequest)
		return
	}

	err := h.svc.Record(r.Context(), req.JobID, userID, req.SignalType)
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, ErrJobNotFound):
		jsonError(w, "job not found", http.StatusNotFound)
	case err != nil:
		jsonError(w, "internal error", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
