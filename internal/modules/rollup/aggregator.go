package rollup

import (
	"github.com/orionpms/orion/internal/modules/wbs"
	"github.com/orionpms/orion/pkg/evm"
)

// Rollup aggregates a built WBS tree into a project rollup.
//
// Base values (PV, EV, AC, BAC) are summed component-wise over the leaf set
// and ratios are derived from the sums at each reporting level. Already-
// derived child ratios are never summed or averaged: averaging SPI/CPI across
// unequal child budgets is invalid, so every level recomputes from its own
// summed snapshot.
//
// Phase buckets are a parallel pass over the same leaf set, grouped by the
// leaf's WBS code rather than by tree structure, since phase membership cuts
// across the hierarchy.
func Rollup(projectID string, tree *wbs.Tree) ProjectRollup {
	if tree == nil {
		return emptyRollup(projectID)
	}

	leaves := tree.Leaves()
	if len(leaves) == 0 {
		return emptyRollup(projectID)
	}

	var total evm.BaseSnapshot
	phaseSums := map[evm.Phase]evm.BaseSnapshot{}
	for _, leaf := range leaves {
		total = total.Add(leaf.Base)
		phase := evm.ClassifyPhase(leaf.Code)
		phaseSums[phase] = phaseSums[phase].Add(leaf.Base)
	}

	derived := evm.ComputeDerived(total)

	phases := make([]PhaseBucket, 0, 5)
	for _, phase := range evm.Phases() {
		base := phaseSums[phase]
		bucketDerived := evm.ComputeDerived(base)
		phases = append(phases, PhaseBucket{
			Phase:   phase,
			Base:    base,
			Derived: bucketDerived,
			Status:  evm.Classify(bucketDerived.SPI, bucketDerived.CPI),
		})
	}

	return ProjectRollup{
		ProjectID: projectID,
		Base:      total,
		Derived:   derived,
		Status:    evm.Classify(derived.SPI, derived.CPI),
		Phases:    phases,
	}
}

// emptyRollup is the well-defined result for a project with no mirrored
// leaves: all-zero snapshot, no_data status, empty phase buckets.
func emptyRollup(projectID string) ProjectRollup {
	var zero evm.BaseSnapshot
	derived := evm.ComputeDerived(zero)

	phases := make([]PhaseBucket, 0, 5)
	for _, phase := range evm.Phases() {
		phases = append(phases, PhaseBucket{
			Phase:   phase,
			Base:    zero,
			Derived: derived,
			Status:  evm.StatusNoData,
		})
	}

	return ProjectRollup{
		ProjectID: projectID,
		Base:      zero,
		Derived:   derived,
		Status:    evm.StatusNoData,
		Phases:    phases,
	}
}

// AnnotateTree produces the per-node rollup view of a tree: a post-order
// traversal where each leaf contributes its own snapshot and each internal
// node the sum of its children's aggregated snapshots, with metrics derived
// from the aggregate at every node.
func AnnotateTree(tree *wbs.Tree) *NodeRollup {
	if tree == nil || tree.Root == nil {
		return nil
	}
	view, _ := annotate(tree.Root)
	return view
}

func annotate(n *wbs.Node) (*NodeRollup, evm.BaseSnapshot) {
	agg := n.Base
	var children []*NodeRollup
	if !n.IsLeaf() {
		// Internal nodes report the sum over descendant leaves; their own
		// row values are ignored to avoid double counting mirrored summary
		// rows.
		agg = evm.BaseSnapshot{}
		children = make([]*NodeRollup, 0, len(n.Children))
		for _, c := range n.Children {
			view, childAgg := annotate(c)
			children = append(children, view)
			agg = agg.Add(childAgg)
		}
	}

	derived := evm.ComputeDerived(agg)
	return &NodeRollup{
		ID:         n.ID,
		Code:       n.Code,
		Name:       n.Name,
		Level:      n.Level,
		Base:       agg,
		Derived:    derived,
		Status:     evm.Classify(derived.SPI, derived.CPI),
		SAPMapping: n.SAPMapping,
		Children:   children,
	}, agg
}
