package scheduler

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/orionpms/orion/internal/events"
	"github.com/orionpms/orion/internal/modules/projects"
)

// StaleMirrorThreshold is how long a project may go without a successful
// mirror before the health check flags it.
const StaleMirrorThreshold = 24 * time.Hour

// HealthCheckJob verifies database integrity and flags projects whose
// mirrored data has gone stale. Runs every 6 hours.
type HealthCheckJob struct {
	log         zerolog.Logger
	db          *sql.DB
	projectRepo *projects.Repository
	events      *events.Manager
}

// HealthCheckConfig holds configuration for the health check job
type HealthCheckConfig struct {
	Log         zerolog.Logger
	DB          *sql.DB
	ProjectRepo *projects.Repository
	Events      *events.Manager
}

// NewHealthCheckJob creates a new health check job
func NewHealthCheckJob(cfg HealthCheckConfig) *HealthCheckJob {
	return &HealthCheckJob{
		log:         cfg.Log.With().Str("job", "health_check").Logger(),
		db:          cfg.DB,
		projectRepo: cfg.ProjectRepo,
		events:      cfg.Events,
	}
}

// Name returns the job name
func (j *HealthCheckJob) Name() string {
	return "health_check"
}

// Run executes the health check
func (j *HealthCheckJob) Run() error {
	j.log.Info().Msg("Starting health check")
	startTime := time.Now()

	if err := j.checkDatabaseIntegrity(); err != nil {
		j.log.Error().Err(err).Msg("Database integrity check failed")
		j.events.EmitError("health_check", err, nil)
		return err
	}

	j.checkWALCheckpoint()
	j.checkStaleMirrors()

	j.log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Health check completed")

	return nil
}

// checkDatabaseIntegrity runs SQLite's PRAGMA integrity_check
func (j *HealthCheckJob) checkDatabaseIntegrity() error {
	var result string
	err := j.db.QueryRow("PRAGMA integrity_check").Scan(&result)
	if err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("integrity check returned: %s", result)
	}

	j.log.Debug().Msg("Database integrity OK")
	return nil
}

// checkWALCheckpoint monitors WAL checkpoint status
func (j *HealthCheckJob) checkWALCheckpoint() {
	var mode, busy, frames, checkpointed int
	err := j.db.QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&mode, &busy, &frames, &checkpointed)
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to check WAL checkpoint")
		return
	}

	if frames > 1000 {
		j.log.Warn().
			Int("wal_frames", frames).
			Int("checkpointed", checkpointed).
			Msg("WAL file is large, checkpoint may be needed")
	} else {
		j.log.Debug().
			Int("wal_frames", frames).
			Msg("WAL checkpoint status OK")
	}
}

// checkStaleMirrors flags active projects that have not mirrored recently.
// Stale data on the dashboard is worse than no data, so these get surfaced
// loudly rather than silently served.
func (j *HealthCheckJob) checkStaleMirrors() {
	active, err := j.projectRepo.ListActive()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to list active projects")
		return
	}

	cutoff := time.Now().Add(-StaleMirrorThreshold)
	staleCount := 0

	for _, p := range active {
		if p.LastMirroredAt == nil {
			j.log.Warn().
				Str("project", p.Code).
				Msg("Project has never been mirrored")
			staleCount++
			continue
		}

		if p.LastMirroredAt.Before(cutoff) {
			j.log.Warn().
				Str("project", p.Code).
				Time("last_mirrored_at", *p.LastMirroredAt).
				Msg("Project mirror is stale")
			j.events.Emit(events.MirrorStale, "health_check", map[string]interface{}{
				"projectId":      p.ID,
				"projectCode":    p.Code,
				"lastMirroredAt": p.LastMirroredAt,
			})
			staleCount++
		}
	}

	if staleCount > 0 {
		j.log.Warn().
			Int("stale", staleCount).
			Int("active", len(active)).
			Msg("Stale project mirrors detected")
	} else {
		j.log.Debug().Int("active", len(active)).Msg("All project mirrors fresh")
	}
}
