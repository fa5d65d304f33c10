package mirror

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles mirror HTTP requests
type Handler struct {
	repo *Repository
	job  *Job
	log  zerolog.Logger
}

// NewHandler creates a new mirror handler. job may be nil when the source
// systems are not configured; triggering then returns 409.
func NewHandler(repo *Repository, job *Job, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		job:  job,
		log:  log.With().Str("handler", "mirror").Logger(),
	}
}

// RegisterRoutes mounts the mirror routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/runs", h.HandleListRuns)
	r.Post("/trigger", h.HandleTrigger)
}

// HandleListRuns returns recent mirror runs, newest first.
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if param := r.URL.Query().Get("limit"); param != "" {
		if parsed, err := strconv.Atoi(param); err == nil {
			limit = parsed
		}
	}

	runs, err := h.repo.RecentRuns(limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, runs)
}

// HandleTrigger starts a mirror run in the background.
func (h *Handler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	if h.job == nil {
		h.writeError(w, http.StatusConflict, "mirror sources are not configured")
		return
	}

	go func() {
		if err := h.job.Run(); err != nil {
			h.log.Error().Err(err).Msg("Triggered mirror run failed")
		}
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
