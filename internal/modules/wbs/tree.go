package wbs

import (
	"fmt"
	"sort"
	"strings"
)

// IntegrityError reports structural corruption in a project's mirrored WBS
// rows: duplicate ids, orphaned rows, missing or multiple roots, or cyclic
// parent chains. It fails tree construction for the affected project only;
// portfolio callers surface it per project instead of aborting the request.
type IntegrityError struct {
	Reason  string
	NodeIDs []string
}

func (e *IntegrityError) Error() string {
	if len(e.NodeIDs) == 0 {
		return fmt.Sprintf("wbs integrity: %s", e.Reason)
	}
	return fmt.Sprintf("wbs integrity: %s: %s", e.Reason, strings.Join(e.NodeIDs, ", "))
}

// Tree is a built WBS hierarchy with an id index for path lookups.
type Tree struct {
	Root  *Node
	index map[string]*Node
}

// BuildTree builds a tree from flat mirror rows in two passes: index every
// row by id, then attach children to parents in input order. Nodes are held
// in an arena keyed by id, so the only pointers are parent-to-child links
// created here.
//
// Rows whose parent id is unknown are rejected as orphans, not silently
// attached to the root. Exactly one row must have a null parent id.
func BuildTree(records []Record) (*Tree, error) {
	if len(records) == 0 {
		return nil, &IntegrityError{Reason: "no records"}
	}

	// Pass 1: index by id.
	index := make(map[string]*Node, len(records))
	order := make([]*Node, 0, len(records))
	var dupes []string
	for _, rec := range records {
		if _, ok := index[rec.ID]; ok {
			dupes = append(dupes, rec.ID)
			continue
		}
		n := &Node{
			ID:         rec.ID,
			ParentID:   rec.ParentID,
			Code:       rec.Code,
			Name:       rec.Name,
			Base:       rec.Base(),
			SAPMapping: rec.SAPMapping,
		}
		index[rec.ID] = n
		order = append(order, n)
	}
	if len(dupes) > 0 {
		return nil, &IntegrityError{Reason: "duplicate node ids", NodeIDs: dupes}
	}

	// Pass 2: attach by parent id, preserving input order.
	var root *Node
	var roots, orphans []string
	for _, n := range order {
		if n.ParentID == nil {
			roots = append(roots, n.ID)
			root = n
			continue
		}
		parent, ok := index[*n.ParentID]
		if !ok {
			orphans = append(orphans, n.ID)
			continue
		}
		parent.Children = append(parent.Children, n)
	}
	if len(orphans) > 0 {
		return nil, &IntegrityError{Reason: "orphaned nodes (parent missing)", NodeIDs: orphans}
	}
	if len(roots) == 0 {
		return nil, &IntegrityError{Reason: "no root node"}
	}
	if len(roots) > 1 {
		return nil, &IntegrityError{Reason: "multiple root nodes", NodeIDs: roots}
	}

	if cyclic := findCycles(order, index); len(cyclic) > 0 {
		return nil, &IntegrityError{Reason: "cyclic parent chain", NodeIDs: cyclic}
	}

	// Levels are assigned top-down once the structure is known sound.
	assignLevels(root, 0)

	return &Tree{Root: root, index: index}, nil
}

// findCycles walks each node's ancestor chain with a visited set. Any chain
// that revisits a node is cyclic; such nodes are unreachable from the root.
func findCycles(order []*Node, index map[string]*Node) []string {
	cyclic := make(map[string]bool)
	for _, n := range order {
		seen := map[string]bool{n.ID: true}
		cur := n
		for cur.ParentID != nil {
			parent := index[*cur.ParentID]
			if seen[parent.ID] {
				cyclic[n.ID] = true
				break
			}
			seen[parent.ID] = true
			cur = parent
		}
	}

	if len(cyclic) == 0 {
		return nil
	}
	ids := make([]string, 0, len(cyclic))
	for id := range cyclic {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func assignLevels(n *Node, level int) {
	n.Level = level
	for _, c := range n.Children {
		assignLevels(c, level+1)
	}
}

// Node returns the node with the given id, if present.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.index[id]
	return n, ok
}

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int {
	return len(t.index)
}

// FindPath returns the ancestor chain from the root to the target node,
// inclusive, for breadcrumb rendering.
func (t *Tree) FindPath(nodeID string) ([]*Node, error) {
	n, ok := t.index[nodeID]
	if !ok {
		return nil, fmt.Errorf("node %q not found", nodeID)
	}

	var path []*Node
	for cur := n; ; {
		path = append(path, cur)
		if cur.ParentID == nil {
			break
		}
		cur = t.index[*cur.ParentID]
	}

	// Collected target-to-root; reverse to root-to-target.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Leaves returns all leaf nodes in depth-first input order.
func (t *Tree) Leaves() []*Node {
	var leaves []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			leaves = append(leaves, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	return leaves
}
