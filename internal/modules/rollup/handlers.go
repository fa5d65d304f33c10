package rollup

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/orionpms/orion/internal/modules/projects"
	"github.com/orionpms/orion/internal/modules/wbs"
)

// Handler handles EVM rollup HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new rollup handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "rollup").Logger(),
	}
}

// RegisterProjectRoutes mounts the project-scoped rollup routes.
func (h *Handler) RegisterProjectRoutes(r chi.Router) {
	r.Get("/rollup", h.HandleProjectRollup)
	r.Get("/evm", h.HandleAnnotatedTree)
}

// RegisterPortfolioRoutes mounts the portfolio routes.
func (h *Handler) RegisterPortfolioRoutes(r chi.Router) {
	r.Get("/summary", h.HandlePortfolioSummary)
	r.Get("/overview", h.HandlePortfolioOverview)
}

// HandleProjectRollup returns one project's rollup with phase buckets.
func (h *Handler) HandleProjectRollup(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	result, err := h.service.ProjectRollup(projectID)
	if err != nil {
		h.writeRollupError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleAnnotatedTree returns the WBS tree with per-node aggregated metrics.
func (h *Handler) HandleAnnotatedTree(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	view, err := h.service.AnnotatedTree(projectID)
	if err != nil {
		h.writeRollupError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

// HandlePortfolioSummary returns the portfolio counts and average indices.
func (h *Handler) HandlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.PortfolioOverview()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, overview.Summary)
}

// HandlePortfolioOverview returns the summary plus per-project rollups.
func (h *Handler) HandlePortfolioOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.PortfolioOverview()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, overview)
}

func (h *Handler) writeRollupError(w http.ResponseWriter, err error) {
	if errors.Is(err, projects.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "Project not found")
		return
	}

	var integrity *wbs.IntegrityError
	if errors.As(err, &integrity) {
		h.writeError(w, http.StatusUnprocessableEntity, integrity.Error())
		return
	}
	h.writeError(w, http.StatusInternalServerError, err.Error())
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
