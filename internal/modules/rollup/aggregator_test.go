package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionpms/orion/internal/modules/wbs"
	"github.com/orionpms/orion/pkg/evm"
)

func strPtr(s string) *string {
	return &s
}

func buildTree(t *testing.T, records []wbs.Record) *wbs.Tree {
	t.Helper()
	tree, err := wbs.BuildTree(records)
	require.NoError(t, err)
	return tree
}

func projectRecords() []wbs.Record {
	return []wbs.Record{
		{ID: "root", Code: "PRJ", Name: "Project"},
		{ID: "e100", ParentID: strPtr("root"), Code: "E-100", Name: "Engineering", PV: 100, EV: 90, AC: 80, BAC: 150},
		{ID: "c200", ParentID: strPtr("root"), Code: "C-200", Name: "Construction"},
		{ID: "c210", ParentID: strPtr("c200"), Code: "C-210", Name: "Civil", PV: 200, EV: 150, AC: 170, BAC: 300},
		{ID: "c220", ParentID: strPtr("c200"), Code: "C-220", Name: "Structural", PV: 50, EV: 50, AC: 40, BAC: 60},
		{ID: "m300", ParentID: strPtr("root"), Code: "M-300", Name: "Commissioning", PV: 10, EV: 0, AC: 0, BAC: 90},
	}
}

func TestRollup_SumsLeavesComponentWise(t *testing.T) {
	tree := buildTree(t, projectRecords())

	got := Rollup("p1", tree)

	// Leaf sums: e100 + c210 + c220 + m300. The c200 and root container
	// rows contribute nothing of their own.
	want := evm.BaseSnapshot{PV: 360, EV: 290, AC: 290, BAC: 600}
	assert.Equal(t, want, got.Base)
	assert.Equal(t, "p1", got.ProjectID)

	// Ratios derive from the sums, not from child ratios.
	require.NotNil(t, got.Derived.SPI)
	assert.InDelta(t, 290.0/360.0, *got.Derived.SPI, 1e-9)
	require.NotNil(t, got.Derived.CPI)
	assert.InDelta(t, 1.0, *got.Derived.CPI, 1e-9)
}

func TestRollup_PhaseBuckets(t *testing.T) {
	tree := buildTree(t, projectRecords())

	got := Rollup("p1", tree)
	require.Len(t, got.Phases, 5)

	byPhase := map[evm.Phase]PhaseBucket{}
	for _, b := range got.Phases {
		byPhase[b.Phase] = b
	}

	// Buckets group leaves by code prefix, independent of tree structure.
	assert.Equal(t, evm.BaseSnapshot{PV: 100, EV: 90, AC: 80, BAC: 150}, byPhase[evm.PhaseEngineering].Base)
	assert.Equal(t, evm.BaseSnapshot{PV: 250, EV: 200, AC: 210, BAC: 360}, byPhase[evm.PhaseConstruction].Base)
	assert.Equal(t, evm.BaseSnapshot{PV: 10, EV: 0, AC: 0, BAC: 90}, byPhase[evm.PhaseCommissioning].Base)

	// Phases with no leaves are present but empty and no_data.
	assert.True(t, byPhase[evm.PhaseProcurement].Base.IsZero())
	assert.Equal(t, evm.StatusNoData, byPhase[evm.PhaseProcurement].Status)

	// Commissioning has PV but no AC: CPI undefined, so no_data.
	assert.Equal(t, evm.StatusNoData, byPhase[evm.PhaseCommissioning].Status)
}

func TestRollup_DoesNotAverageChildRatios(t *testing.T) {
	// Two leaves with SPI 0.5 and 1.0. An invalid ratio average would give
	// 0.75; the correct leaf-sum derivation gives 1050/1100.
	records := []wbs.Record{
		{ID: "root", Code: "PRJ", Name: "Project"},
		{ID: "small", ParentID: strPtr("root"), Code: "E-1", Name: "Small", PV: 100, EV: 50, AC: 50, BAC: 100},
		{ID: "big", ParentID: strPtr("root"), Code: "C-1", Name: "Big", PV: 1000, EV: 1000, AC: 1000, BAC: 1000},
	}
	tree := buildTree(t, records)

	got := Rollup("p1", tree)
	require.NotNil(t, got.Derived.SPI)
	assert.InDelta(t, 1050.0/1100.0, *got.Derived.SPI, 1e-9)
}

func TestRollup_EmptyTree(t *testing.T) {
	got := Rollup("p1", nil)

	assert.True(t, got.Base.IsZero())
	assert.Equal(t, evm.StatusNoData, got.Status)
	assert.Nil(t, got.Derived.SPI)
	assert.Nil(t, got.Derived.CPI)
	require.Len(t, got.Phases, 5)
	for _, b := range got.Phases {
		assert.Equal(t, evm.StatusNoData, b.Status)
	}
}

func TestRollup_RootOnlyTreeUsesRootSnapshot(t *testing.T) {
	// A single-node tree: the root is its own leaf set.
	tree := buildTree(t, []wbs.Record{
		{ID: "root", Code: "PRJ", Name: "Project", PV: 10, EV: 9, AC: 10, BAC: 20},
	})

	got := Rollup("p1", tree)
	assert.Equal(t, evm.BaseSnapshot{PV: 10, EV: 9, AC: 10, BAC: 20}, got.Base)
}

func TestAnnotateTree(t *testing.T) {
	tree := buildTree(t, projectRecords())

	view := AnnotateTree(tree)
	require.NotNil(t, view)

	// Root carries the full leaf sum.
	assert.Equal(t, evm.BaseSnapshot{PV: 360, EV: 290, AC: 290, BAC: 600}, view.Base)

	// Internal node aggregates its own leaves only.
	require.Len(t, view.Children, 3)
	c200 := view.Children[1]
	require.Equal(t, "c200", c200.ID)
	assert.Equal(t, evm.BaseSnapshot{PV: 250, EV: 200, AC: 210, BAC: 360}, c200.Base)

	// Leaves keep their own snapshots and derive their own metrics.
	e100 := view.Children[0]
	assert.Equal(t, evm.BaseSnapshot{PV: 100, EV: 90, AC: 80, BAC: 150}, e100.Base)
	require.NotNil(t, e100.Derived.SPI)
	assert.InDelta(t, 0.9, *e100.Derived.SPI, 1e-9)
	assert.Equal(t, evm.StatusAtRisk, e100.Status)
}
