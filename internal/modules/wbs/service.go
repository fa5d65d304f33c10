package wbs

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Service loads mirrored WBS rows and builds trees from them.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new WBS service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "wbs").Logger(),
	}
}

// Records returns the flat mirror rows for a project.
func (s *Service) Records(projectID string) ([]Record, error) {
	records, err := s.repo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wbs records: %w", err)
	}
	return records, nil
}

// Tree builds the project's WBS tree. Returns *IntegrityError when the
// mirrored rows are structurally corrupt (or the project has no rows).
func (s *Service) Tree(projectID string) (*Tree, error) {
	records, err := s.Records(projectID)
	if err != nil {
		return nil, err
	}

	tree, err := BuildTree(records)
	if err != nil {
		s.log.Warn().Err(err).Str("project", projectID).Msg("WBS tree build rejected")
		return nil, err
	}
	return tree, nil
}

// Path returns the root-to-target breadcrumb chain for a node.
func (s *Service) Path(projectID, nodeID string) ([]*Node, error) {
	tree, err := s.Tree(projectID)
	if err != nil {
		return nil, err
	}
	return tree.FindPath(nodeID)
}
