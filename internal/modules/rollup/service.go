package rollup

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/orionpms/orion/internal/modules/projects"
	"github.com/orionpms/orion/internal/modules/wbs"
)

// Service composes tree building, hierarchical aggregation and portfolio
// combination for the dashboard endpoints.
type Service struct {
	projectRepo *projects.Repository
	wbsService  *wbs.Service
	log         zerolog.Logger
}

// NewService creates a new rollup service
func NewService(projectRepo *projects.Repository, wbsService *wbs.Service, log zerolog.Logger) *Service {
	return &Service{
		projectRepo: projectRepo,
		wbsService:  wbsService,
		log:         log.With().Str("service", "rollup").Logger(),
	}
}

// ProjectRollup computes one project's rollup from its mirrored WBS rows. A
// project with no rows yields the no_data rollup rather than an error;
// structural corruption surfaces as *wbs.IntegrityError.
func (s *Service) ProjectRollup(projectID string) (ProjectRollup, error) {
	if _, err := s.projectRepo.Get(projectID); err != nil {
		return ProjectRollup{}, err
	}

	records, err := s.wbsService.Records(projectID)
	if err != nil {
		return ProjectRollup{}, err
	}
	if len(records) == 0 {
		return emptyRollup(projectID), nil
	}

	tree, err := wbs.BuildTree(records)
	if err != nil {
		return ProjectRollup{}, err
	}

	return Rollup(projectID, tree), nil
}

// AnnotatedTree computes the per-node rollup view for the WBS tree page.
func (s *Service) AnnotatedTree(projectID string) (*NodeRollup, error) {
	if _, err := s.projectRepo.Get(projectID); err != nil {
		return nil, err
	}

	tree, err := s.wbsService.Tree(projectID)
	if err != nil {
		return nil, err
	}
	return AnnotateTree(tree), nil
}

// PortfolioOverview rolls every active project up into the portfolio
// summary. Integrity failures are scoped to their project: the entry carries
// the error and the remaining projects still aggregate.
func (s *Service) PortfolioOverview() (PortfolioOverview, error) {
	list, err := s.projectRepo.ListActive()
	if err != nil {
		return PortfolioOverview{}, fmt.Errorf("failed to list projects: %w", err)
	}

	entries := make([]ProjectEntry, 0, len(list))
	rollups := make([]ProjectRollup, 0, len(list))
	for _, project := range list {
		entry := ProjectEntry{Project: project}

		r, err := s.ProjectRollup(project.ID)
		if err != nil {
			var integrity *wbs.IntegrityError
			if !errors.As(err, &integrity) {
				return PortfolioOverview{}, err
			}
			s.log.Warn().Err(err).Str("project", project.ID).
				Msg("Excluding corrupt project from portfolio rollup")
			entry.Error = integrity.Error()
			entries = append(entries, entry)
			continue
		}

		entry.Rollup = &r
		entries = append(entries, entry)
		rollups = append(rollups, r)
	}

	return PortfolioOverview{
		Summary:  Aggregate(rollups),
		Projects: entries,
	}, nil
}
