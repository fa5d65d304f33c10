package rollup

import (
	"github.com/orionpms/orion/internal/domain"
	"github.com/orionpms/orion/pkg/evm"
)

// PhaseBucket is the component-wise sum of every leaf snapshot mapped to one
// EPCIC phase within a project, with the bucket's own derived metrics.
type PhaseBucket struct {
	Phase   evm.Phase          `json:"phase"`
	Base    evm.BaseSnapshot   `json:"baseSnapshot"`
	Derived evm.DerivedMetrics `json:"derived"`
	Status  evm.HealthStatus   `json:"status"`
}

// ProjectRollup is one project's aggregated EVM picture: the leaf-summed
// snapshot, its derived metrics, health status and the five phase buckets.
type ProjectRollup struct {
	ProjectID string             `json:"projectId"`
	Base      evm.BaseSnapshot   `json:"baseSnapshot"`
	Derived   evm.DerivedMetrics `json:"derived"`
	Status    evm.HealthStatus   `json:"status"`
	Phases    []PhaseBucket      `json:"domains"`
}

// NodeRollup mirrors the WBS tree with every node carrying the snapshot
// summed over its descendant leaves and the metrics derived from that sum.
// This is what the WBS tree page renders.
type NodeRollup struct {
	ID         string             `json:"id"`
	Code       string             `json:"code"`
	Name       string             `json:"name"`
	Level      int                `json:"level"`
	Base       evm.BaseSnapshot   `json:"baseSnapshot"`
	Derived    evm.DerivedMetrics `json:"derived"`
	Status     evm.HealthStatus   `json:"status"`
	SAPMapping *domain.SAPMapping `json:"sapMapping,omitempty"`
	Children   []*NodeRollup      `json:"children,omitempty"`
}

// PortfolioSummary combines all project rollups for a tenant. Projects whose
// status is no_data count toward TotalProjects but are excluded from the
// status partition and the index means.
type PortfolioSummary struct {
	TotalProjects int      `json:"totalProjects"`
	OnTrackCount  int      `json:"onTrackCount"`
	AtRiskCount   int      `json:"atRiskCount"`
	CriticalCount int      `json:"criticalCount"`
	AvgSPI        *float64 `json:"avgSPI"`
	AvgCPI        *float64 `json:"avgCPI"`
}

// ProjectEntry is one project's slot in the portfolio response. A project
// whose mirrored rows fail integrity checks gets Error set and no rollup;
// the rest of the portfolio is unaffected.
type ProjectEntry struct {
	Project domain.Project `json:"project"`
	Rollup  *ProjectRollup `json:"rollup,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// PortfolioOverview is the full CFO dashboard payload.
type PortfolioOverview struct {
	Summary  PortfolioSummary `json:"summary"`
	Projects []ProjectEntry   `json:"projects"`
}
