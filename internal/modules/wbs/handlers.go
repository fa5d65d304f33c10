package wbs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles WBS tree HTTP requests
type Handler struct {
	service *Service
	uiRepo  *UIStateRepository
	log     zerolog.Logger
}

// NewHandler creates a new WBS handler
func NewHandler(service *Service, uiRepo *UIStateRepository, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		uiRepo:  uiRepo,
		log:     log.With().Str("handler", "wbs").Logger(),
	}
}

// RegisterRoutes mounts the WBS routes under a project-scoped router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/tree", h.HandleGetTree)
	r.Get("/path/{nodeID}", h.HandleGetPath)
	r.Get("/ui", h.HandleGetUIState)
	r.Post("/ui/toggle", h.HandleToggleExpanded)
	r.Post("/ui/select", h.HandleSelect)
}

// HandleGetTree returns the project's WBS tree.
func (h *Handler) HandleGetTree(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	tree, err := h.service.Tree(projectID)
	if err != nil {
		h.writeTreeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tree.Root)
}

// HandleGetPath returns the breadcrumb chain for a node.
func (h *Handler) HandleGetPath(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	nodeID := chi.URLParam(r, "nodeID")

	path, err := h.service.Path(projectID, nodeID)
	if err != nil {
		var integrity *IntegrityError
		if errors.As(err, &integrity) {
			h.writeError(w, http.StatusUnprocessableEntity, integrity.Error())
			return
		}
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	// Breadcrumbs only need identity fields, not subtrees.
	type crumb struct {
		ID    string `json:"id"`
		Code  string `json:"code"`
		Name  string `json:"name"`
		Level int    `json:"level"`
	}
	crumbs := make([]crumb, 0, len(path))
	for _, n := range path {
		crumbs = append(crumbs, crumb{ID: n.ID, Code: n.Code, Name: n.Name, Level: n.Level})
	}

	h.writeJSON(w, http.StatusOK, crumbs)
}

// HandleGetUIState returns the caller's stored view state for the project.
func (h *Handler) HandleGetUIState(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	state, err := h.uiRepo.Get(sessionID(r), projectID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, state)
}

// HandleToggleExpanded flips a node's expansion and returns the new state.
func (h *Handler) HandleToggleExpanded(w http.ResponseWriter, r *http.Request) {
	h.mutateUIState(w, r, func(state UIState, nodeID string) UIState {
		return state.ToggleExpanded(nodeID)
	})
}

// HandleSelect selects a node (empty id clears the selection) and returns
// the new state.
func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	h.mutateUIState(w, r, func(state UIState, nodeID string) UIState {
		return state.Select(nodeID)
	})
}

func (h *Handler) mutateUIState(w http.ResponseWriter, r *http.Request, apply func(UIState, string) UIState) {
	projectID := chi.URLParam(r, "projectID")

	var req struct {
		NodeID string `json:"nodeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := sessionID(r)
	state, err := h.uiRepo.Get(session, projectID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	next := apply(state, req.NodeID)
	if err := h.uiRepo.Save(session, projectID, next); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, next)
}

func (h *Handler) writeTreeError(w http.ResponseWriter, err error) {
	var integrity *IntegrityError
	if errors.As(err, &integrity) {
		h.writeError(w, http.StatusUnprocessableEntity, integrity.Error())
		return
	}
	h.writeError(w, http.StatusInternalServerError, err.Error())
}

// sessionID identifies the browser session owning the view state. The web
// layer forwards its session cookie value in this header.
func sessionID(r *http.Request) string {
	if id := r.Header.Get("X-Session-ID"); id != "" {
		return id
	}
	return "anonymous"
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
