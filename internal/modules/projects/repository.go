package projects

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/orionpms/orion/internal/database/repositories"
	"github.com/orionpms/orion/internal/domain"
)

// ErrNotFound is returned when a project id is unknown.
var ErrNotFound = errors.New("project not found")

// Repository handles project registry database operations.
type Repository struct {
	*repositories.BaseRepository
}

// NewRepository creates a new project repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		BaseRepository: repositories.NewBase(db, log.With().Str("repo", "projects").Logger()),
	}
}

// ListActive returns all active projects ordered by code.
func (r *Repository) ListActive() ([]domain.Project, error) {
	return r.list(`SELECT id, code, name, client, active, last_mirrored_at
		FROM projects WHERE active = 1 ORDER BY code`)
}

// ListAll returns every project ordered by code.
func (r *Repository) ListAll() ([]domain.Project, error) {
	return r.list(`SELECT id, code, name, client, active, last_mirrored_at
		FROM projects ORDER BY code`)
}

func (r *Repository) list(query string) ([]domain.Project, error) {
	rows, err := r.DB().Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// Get returns one project by id.
func (r *Repository) Get(id string) (domain.Project, error) {
	row := r.DB().QueryRow(`SELECT id, code, name, client, active, last_mirrored_at
		FROM projects WHERE id = ?`, id)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, ErrNotFound
	}
	if err != nil {
		return domain.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// Upsert inserts or updates a project registry entry by code.
func (r *Repository) Upsert(p domain.Project) error {
	query := `
		INSERT INTO projects (id, code, name, client, active, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (code) DO UPDATE SET
			name       = excluded.name,
			client     = excluded.client,
			active     = excluded.active,
			updated_at = excluded.updated_at
	`
	active := 0
	if p.Active {
		active = 1
	}
	if _, err := r.DB().Exec(query, p.ID, p.Code, p.Name, p.Client, active); err != nil {
		return fmt.Errorf("failed to upsert project %s: %w", p.Code, err)
	}
	return nil
}

// MarkMirrored stamps the project's last successful mirror time.
func (r *Repository) MarkMirrored(id string, at time.Time) error {
	_, err := r.DB().Exec(`UPDATE projects SET last_mirrored_at = ?, updated_at = datetime('now')
		WHERE id = ?`, at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to mark project mirrored: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (domain.Project, error) {
	var p domain.Project
	var client sql.NullString
	var active int
	var mirroredAt sql.NullString

	if err := row.Scan(&p.ID, &p.Code, &p.Name, &client, &active, &mirroredAt); err != nil {
		return domain.Project{}, err
	}

	p.Client = client.String
	p.Active = active != 0
	if mirroredAt.Valid {
		if t, err := time.Parse(time.RFC3339, mirroredAt.String); err == nil {
			p.LastMirroredAt = &t
		}
	}
	return p, nil
}
