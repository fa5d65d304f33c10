package mirror

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/orionpms/orion/internal/database/repositories"
	"github.com/orionpms/orion/internal/domain"
)

// Repository handles mirror run bookkeeping.
type Repository struct {
	*repositories.BaseRepository
}

// NewRepository creates a new mirror repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		BaseRepository: repositories.NewBase(db, log.With().Str("repo", "mirror").Logger()),
	}
}

// StartRun records the beginning of a mirror run.
func (r *Repository) StartRun(run domain.MirrorRun) error {
	_, err := r.DB().Exec(`INSERT INTO mirror_runs (id, started_at, status)
		VALUES (?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339), domain.RunStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to record mirror run start: %w", err)
	}
	return nil
}

// FinishRun records the outcome of a mirror run.
func (r *Repository) FinishRun(run domain.MirrorRun) error {
	finished := time.Now().UTC().Format(time.RFC3339)
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC().Format(time.RFC3339)
	}

	_, err := r.DB().Exec(`UPDATE mirror_runs
		SET finished_at = ?, status = ?, projects_total = ?, projects_failed = ?, detail = ?
		WHERE id = ?`,
		finished, run.Status, run.ProjectsTotal, run.ProjectsFailed, run.Detail, run.ID)
	if err != nil {
		return fmt.Errorf("failed to record mirror run finish: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent mirror runs, newest first.
func (r *Repository) RecentRuns(limit int) ([]domain.MirrorRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.DB().Query(`SELECT id, started_at, finished_at, status,
		projects_total, projects_failed, detail
		FROM mirror_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query mirror runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.MirrorRun
	for rows.Next() {
		var run domain.MirrorRun
		var started string
		var finished sql.NullString

		if err := rows.Scan(&run.ID, &started, &finished, &run.Status,
			&run.ProjectsTotal, &run.ProjectsFailed, &run.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan mirror run: %w", err)
		}

		if t, err := time.Parse(time.RFC3339, started); err == nil {
			run.StartedAt = t
		}
		if finished.Valid {
			if t, err := time.Parse(time.RFC3339, finished.String); err == nil {
				run.FinishedAt = &t
			}
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mirror runs: %w", err)
	}

	return runs, nil
}
