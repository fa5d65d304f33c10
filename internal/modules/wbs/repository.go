package wbs

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orionpms/orion/internal/database/repositories"
	"github.com/orionpms/orion/internal/domain"
)

// Repository handles WBS node storage in the mirror database.
type Repository struct {
	*repositories.BaseRepository
}

// NewRepository creates a new WBS repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		BaseRepository: repositories.NewBase(db, log.With().Str("repo", "wbs").Logger()),
	}
}

// ListByProject returns the flat WBS rows for a project in mirror insertion
// order, with SAP mappings joined in.
func (r *Repository) ListByProject(projectID string) ([]Record, error) {
	query := `
		SELECT n.id, n.parent_id, n.code, n.name, n.pv, n.ev, n.ac, n.bac,
		       m.posid, m.confidence
		FROM wbs_nodes n
		LEFT JOIN sap_mappings m ON m.project_id = n.project_id AND m.node_id = n.id
		WHERE n.project_id = ?
		ORDER BY n.seq
	`

	rows, err := r.DB().Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wbs nodes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var parentID sql.NullString
		var posid sql.NullString
		var confidence sql.NullFloat64

		if err := rows.Scan(&rec.ID, &parentID, &rec.Code, &rec.Name,
			&rec.PV, &rec.EV, &rec.AC, &rec.BAC, &posid, &confidence); err != nil {
			return nil, fmt.Errorf("failed to scan wbs node: %w", err)
		}

		if parentID.Valid {
			p := parentID.String
			rec.ParentID = &p
		}
		if posid.Valid {
			rec.SAPMapping = &domain.SAPMapping{
				Posid:      posid.String,
				Confidence: confidence.Float64,
			}
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wbs nodes: %w", err)
	}

	return records, nil
}

// ReplaceProject swaps a project's WBS rows for a freshly mirrored set in one
// transaction, preserving source order through the seq column.
func (r *Repository) ReplaceProject(projectID string, records []Record) error {
	tx, err := r.DB().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM wbs_nodes WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("failed to clear wbs nodes: %w", err)
	}

	nodeStmt, err := tx.Prepare(`
		INSERT INTO wbs_nodes (id, project_id, parent_id, code, name, pv, ev, ac, bac, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	mapStmt, err := tx.Prepare(`
		INSERT INTO sap_mappings (project_id, node_id, posid, confidence)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare mapping insert: %w", err)
	}
	defer mapStmt.Close()

	for seq, rec := range records {
		var parentID interface{}
		if rec.ParentID != nil {
			parentID = *rec.ParentID
		}
		if _, err := nodeStmt.Exec(rec.ID, projectID, parentID, rec.Code, rec.Name,
			rec.PV, rec.EV, rec.AC, rec.BAC, seq); err != nil {
			return fmt.Errorf("failed to insert wbs node %s: %w", rec.ID, err)
		}
		if rec.SAPMapping != nil {
			if _, err := mapStmt.Exec(projectID, rec.ID,
				rec.SAPMapping.Posid, rec.SAPMapping.Confidence); err != nil {
				return fmt.Errorf("failed to insert sap mapping for %s: %w", rec.ID, err)
			}
		}
	}

	return tx.Commit()
}

// UIStateRepository persists per-session tree view state.
type UIStateRepository struct {
	*repositories.BaseRepository
}

// NewUIStateRepository creates a new UI state repository
func NewUIStateRepository(db *sql.DB, log zerolog.Logger) *UIStateRepository {
	return &UIStateRepository{
		BaseRepository: repositories.NewBase(db, log.With().Str("repo", "tree_ui_state").Logger()),
	}
}

// Get returns the stored view state for a session and project, or an empty
// state when none has been saved yet.
func (r *UIStateRepository) Get(sessionID, projectID string) (UIState, error) {
	query := `
		SELECT expanded_ids, selected_id FROM tree_ui_state
		WHERE session_id = ? AND project_id = ?
	`

	var raw string
	var selected sql.NullString
	err := r.DB().QueryRow(query, sessionID, projectID).Scan(&raw, &selected)
	if errors.Is(err, sql.ErrNoRows) {
		return NewUIState(), nil
	}
	if err != nil {
		return UIState{}, fmt.Errorf("failed to get ui state: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		// Corrupt stored state is not worth failing a page load over.
		log := r.Log()
		log.Warn().Str("session", sessionID).Str("project", projectID).
			Msg("Discarding unreadable ui state")
		return NewUIState(), nil
	}

	state := NewUIState()
	for _, id := range ids {
		state.ExpandedIDs[id] = struct{}{}
	}
	if selected.Valid {
		s := selected.String
		state.SelectedID = &s
	}
	return state, nil
}

// Save replaces the stored view state for a session and project. The
// expanded set is stored as a sorted JSON array, the selection in its own
// column.
func (r *UIStateRepository) Save(sessionID, projectID string, state UIState) error {
	expanded, err := json.Marshal(sortedIDs(state.ExpandedIDs))
	if err != nil {
		return fmt.Errorf("failed to encode ui state: %w", err)
	}

	var selected interface{}
	if state.SelectedID != nil {
		selected = *state.SelectedID
	}

	query := `
		INSERT INTO tree_ui_state (session_id, project_id, expanded_ids, selected_id, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT (session_id, project_id) DO UPDATE SET
			expanded_ids = excluded.expanded_ids,
			selected_id  = excluded.selected_id,
			updated_at   = excluded.updated_at
	`
	if _, err := r.DB().Exec(query, sessionID, projectID, string(expanded), selected); err != nil {
		return fmt.Errorf("failed to save ui state: %w", err)
	}
	return nil
}
