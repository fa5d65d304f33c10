package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionpms/orion/pkg/evm"
)

func fakeProject(id string, spi, cpi float64) ProjectRollup {
	s, c := spi, cpi
	derived := evm.DerivedMetrics{SPI: &s, CPI: &c}
	return ProjectRollup{
		ProjectID: id,
		Derived:   derived,
		Status:    evm.Classify(derived.SPI, derived.CPI),
	}
}

func noDataProject(id string) ProjectRollup {
	return ProjectRollup{
		ProjectID: id,
		Derived:   evm.ComputeDerived(evm.BaseSnapshot{}),
		Status:    evm.StatusNoData,
	}
}

func TestAggregate_StatusCounts(t *testing.T) {
	projects := []ProjectRollup{
		fakeProject("p1", 0.90, 0.92), // at_risk
		fakeProject("p2", 1.05, 1.00), // on_track
		fakeProject("p3", 0.70, 0.95), // critical
		fakeProject("p4", 0.94, 0.90), // at_risk
		fakeProject("p5", 0.97, 0.96), // on_track
	}

	got := Aggregate(projects)

	assert.Equal(t, 5, got.TotalProjects)
	assert.Equal(t, 2, got.OnTrackCount)
	assert.Equal(t, 2, got.AtRiskCount)
	assert.Equal(t, 1, got.CriticalCount)
}

func TestAggregate_UnweightedMeans(t *testing.T) {
	projects := []ProjectRollup{
		fakeProject("p1", 0.8, 1.0),
		fakeProject("p2", 1.2, 0.5),
	}

	got := Aggregate(projects)

	require.NotNil(t, got.AvgSPI)
	assert.InDelta(t, 1.0, *got.AvgSPI, 1e-9)
	require.NotNil(t, got.AvgCPI)
	assert.InDelta(t, 0.75, *got.AvgCPI, 1e-9)
}

func TestAggregate_NoDataProjectsExcludedFromCountsAndMeans(t *testing.T) {
	projects := []ProjectRollup{
		fakeProject("p1", 1.0, 1.0),
		noDataProject("p2"),
	}

	got := Aggregate(projects)

	// Counted in the total, excluded from the partition and the means.
	assert.Equal(t, 2, got.TotalProjects)
	assert.Equal(t, 1, got.OnTrackCount)
	assert.Equal(t, 0, got.AtRiskCount)
	assert.Equal(t, 0, got.CriticalCount)
	require.NotNil(t, got.AvgSPI)
	assert.InDelta(t, 1.0, *got.AvgSPI, 1e-9)
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil)

	assert.Equal(t, 0, got.TotalProjects)
	// nil, not 0: an empty portfolio has no data, it is not "on budget".
	assert.Nil(t, got.AvgSPI)
	assert.Nil(t, got.AvgCPI)
}
