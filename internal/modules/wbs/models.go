package wbs

import (
	"github.com/orionpms/orion/internal/domain"
	"github.com/orionpms/orion/pkg/evm"
)

// Record is the flat relational row shape the mirror stores and the tree
// builder consumes: one row per WBS element with its cost/schedule snapshot
// and optional SAP mapping.
type Record struct {
	ID         string             `json:"id"`
	ParentID   *string            `json:"parentId"`
	Code       string             `json:"code"`
	Name       string             `json:"name"`
	PV         float64            `json:"pv"`
	EV         float64            `json:"ev"`
	AC         float64            `json:"ac"`
	BAC        float64            `json:"bac"`
	SAPMapping *domain.SAPMapping `json:"sapMapping,omitempty"`
}

// Base returns the record's cost/schedule tuple as a snapshot.
func (r Record) Base() evm.BaseSnapshot {
	return evm.BaseSnapshot{PV: r.PV, EV: r.EV, AC: r.AC, BAC: r.BAC}
}

// Node is one element of a built WBS tree. Children keep the insertion order
// of the source rows; display-order sorting is the caller's concern.
type Node struct {
	ID         string             `json:"id"`
	ParentID   *string            `json:"parentId"`
	Code       string             `json:"code"`
	Name       string             `json:"name"`
	Level      int                `json:"level"`
	Base       evm.BaseSnapshot   `json:"base"`
	SAPMapping *domain.SAPMapping `json:"sapMapping,omitempty"`
	Children   []*Node            `json:"children,omitempty"`
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}
