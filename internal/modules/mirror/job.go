package mirror

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orionpms/orion/internal/clients/p6"
	"github.com/orionpms/orion/internal/clients/sap"
	"github.com/orionpms/orion/internal/domain"
	"github.com/orionpms/orion/internal/events"
	"github.com/orionpms/orion/internal/modules/projects"
	"github.com/orionpms/orion/internal/modules/wbs"
)

// SchedulingSource is the P6 side of the mirror.
type SchedulingSource interface {
	GetProjects() ([]p6.ProjectInfo, error)
	GetProjectWBS(projectCode string) ([]p6.WBSElement, error)
}

// CostSource is the SAP side of the mirror.
type CostSource interface {
	GetCostMappings(projectCode string) ([]sap.CostMapping, error)
}

// Job mirrors the P6 project structure and SAP cost bookings into the local
// database. One run refreshes the registry and every active project's WBS
// rows; a project that fails leaves its previous mirror intact and does not
// abort the run.
type Job struct {
	p6Client    SchedulingSource
	sapClient   CostSource
	projectRepo *projects.Repository
	wbsRepo     *wbs.Repository
	runRepo     *Repository
	events      *events.Manager
	log         zerolog.Logger
}

// JobConfig holds the mirror job's collaborators.
type JobConfig struct {
	P6          SchedulingSource
	SAP         CostSource
	ProjectRepo *projects.Repository
	WBSRepo     *wbs.Repository
	RunRepo     *Repository
	Events      *events.Manager
	Log         zerolog.Logger
}

// NewJob creates a new mirror job
func NewJob(cfg JobConfig) *Job {
	return &Job{
		p6Client:    cfg.P6,
		sapClient:   cfg.SAP,
		projectRepo: cfg.ProjectRepo,
		wbsRepo:     cfg.WBSRepo,
		runRepo:     cfg.RunRepo,
		events:      cfg.Events,
		log:         cfg.Log.With().Str("job", "mirror").Logger(),
	}
}

// Name implements scheduler.Job.
func (j *Job) Name() string {
	return "p6_sap_mirror"
}

// Run implements scheduler.Job.
func (j *Job) Run() error {
	run := domain.MirrorRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
	if err := j.runRepo.StartRun(run); err != nil {
		return err
	}
	j.events.Emit(events.MirrorSyncStart, "mirror", map[string]interface{}{"runId": run.ID})

	sourceProjects, err := j.p6Client.GetProjects()
	if err != nil {
		run.Status = domain.RunStatusFailed
		run.Detail = err.Error()
		_ = j.runRepo.FinishRun(run)
		j.events.EmitError("mirror", err, map[string]interface{}{"runId": run.ID})
		return fmt.Errorf("failed to list P6 projects: %w", err)
	}

	var failures []string
	for _, info := range sourceProjects {
		active := info.Status == "Active"
		project := domain.Project{
			ID:     info.ObjectID,
			Code:   info.Code,
			Name:   info.Name,
			Client: info.Client,
			Active: active,
		}
		if err := j.projectRepo.Upsert(project); err != nil {
			j.log.Error().Err(err).Str("project", info.Code).Msg("Failed to upsert project")
			failures = append(failures, info.Code)
			continue
		}
		if !active {
			continue
		}

		run.ProjectsTotal++
		if err := j.mirrorProject(project); err != nil {
			j.log.Error().Err(err).Str("project", info.Code).Msg("Project mirror failed")
			j.events.EmitError("mirror", err, map[string]interface{}{
				"runId":   run.ID,
				"project": info.Code,
			})
			failures = append(failures, info.Code)
			run.ProjectsFailed++
			continue
		}

		j.events.Emit(events.ProjectMirrored, "mirror", map[string]interface{}{
			"runId":   run.ID,
			"project": info.Code,
		})
	}

	now := time.Now()
	run.FinishedAt = &now
	run.Status = domain.RunStatusOK
	if run.ProjectsFailed > 0 {
		run.Status = domain.RunStatusPartial
		run.Detail = "failed: " + strings.Join(failures, ", ")
	}
	if err := j.runRepo.FinishRun(run); err != nil {
		return err
	}

	j.events.Emit(events.MirrorSyncComplete, "mirror", map[string]interface{}{
		"runId":          run.ID,
		"projectsTotal":  run.ProjectsTotal,
		"projectsFailed": run.ProjectsFailed,
	})
	return nil
}

// mirrorProject fetches one project's WBS and cost rows and swaps them into
// the mirror atomically.
func (j *Job) mirrorProject(project domain.Project) error {
	elements, err := j.p6Client.GetProjectWBS(project.Code)
	if err != nil {
		return fmt.Errorf("P6 WBS fetch: %w", err)
	}

	mappings, err := j.sapClient.GetCostMappings(project.Code)
	if err != nil {
		return fmt.Errorf("SAP cost fetch: %w", err)
	}

	records := MergeSnapshot(elements, mappings)

	// Reject corrupt exports before they replace a good mirror.
	if _, err := wbs.BuildTree(records); err != nil {
		j.events.Emit(events.IntegrityViolation, "mirror", map[string]interface{}{
			"project": project.Code,
			"error":   err.Error(),
		})
		return fmt.Errorf("export rejected: %w", err)
	}

	if err := j.wbsRepo.ReplaceProject(project.ID, records); err != nil {
		return err
	}
	return j.projectRepo.MarkMirrored(project.ID, time.Now())
}

// MergeSnapshot joins a P6 WBS export with SAP cost mappings into mirror
// rows. SAP actuals override the P6 actual-cost column where booked, since
// SAP is the system of record for cost; mappings are matched by WBS code.
func MergeSnapshot(elements []p6.WBSElement, mappings []sap.CostMapping) []wbs.Record {
	byCode := make(map[string]sap.CostMapping, len(mappings))
	for _, m := range mappings {
		byCode[m.WBSCode] = m
	}

	records := make([]wbs.Record, 0, len(elements))
	for _, el := range elements {
		rec := wbs.Record{
			ID:       el.ObjectID,
			ParentID: el.ParentObjectID,
			Code:     el.Code,
			Name:     el.Name,
			PV:       el.PlannedValue,
			EV:       el.EarnedValue,
			AC:       el.ActualCost,
			BAC:      el.BudgetAtCompletion,
		}

		if m, ok := byCode[el.Code]; ok {
			rec.SAPMapping = &domain.SAPMapping{
				Posid:      m.Posid,
				Confidence: m.Confidence,
			}
			if m.ActualCost != nil {
				rec.AC = *m.ActualCost
			}
		}

		records = append(records, rec)
	}
	return records
}
