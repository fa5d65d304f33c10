package wbs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

// sampleRecords builds a small three-level project:
//
//	root
//	├── E-100 (leaf)
//	├── C-200
//	│   ├── C-210 (leaf)
//	│   └── C-220 (leaf)
//	└── M-300 (leaf)
func sampleRecords() []Record {
	return []Record{
		{ID: "root", ParentID: nil, Code: "PRJ", Name: "Project"},
		{ID: "e100", ParentID: strPtr("root"), Code: "E-100", Name: "Engineering", PV: 100, EV: 90, AC: 80, BAC: 150},
		{ID: "c200", ParentID: strPtr("root"), Code: "C-200", Name: "Construction"},
		{ID: "c210", ParentID: strPtr("c200"), Code: "C-210", Name: "Civil", PV: 200, EV: 150, AC: 170, BAC: 300},
		{ID: "c220", ParentID: strPtr("c200"), Code: "C-220", Name: "Structural", PV: 50, EV: 50, AC: 40, BAC: 60},
		{ID: "m300", ParentID: strPtr("root"), Code: "M-300", Name: "Commissioning", PV: 10, EV: 0, AC: 0, BAC: 90},
	}
}

func TestBuildTree(t *testing.T) {
	tree, err := BuildTree(sampleRecords())
	require.NoError(t, err)
	require.NotNil(t, tree.Root)

	assert.Equal(t, "root", tree.Root.ID)
	assert.Equal(t, 0, tree.Root.Level)
	assert.Equal(t, 6, tree.Size())

	// Children keep insertion order from the source rows.
	require.Len(t, tree.Root.Children, 3)
	assert.Equal(t, "e100", tree.Root.Children[0].ID)
	assert.Equal(t, "c200", tree.Root.Children[1].ID)
	assert.Equal(t, "m300", tree.Root.Children[2].ID)

	// Levels are parent level + 1.
	c200, ok := tree.Node("c200")
	require.True(t, ok)
	assert.Equal(t, 1, c200.Level)
	assert.Equal(t, 2, c200.Children[0].Level)

	assert.False(t, tree.Root.IsLeaf())
	assert.True(t, c200.Children[0].IsLeaf())
}

func TestBuildTree_Leaves(t *testing.T) {
	tree, err := BuildTree(sampleRecords())
	require.NoError(t, err)

	leaves := tree.Leaves()
	ids := make([]string, 0, len(leaves))
	for _, n := range leaves {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"e100", "c210", "c220", "m300"}, ids)
}

func TestBuildTree_RejectsOrphans(t *testing.T) {
	records := []Record{
		{ID: "root", ParentID: nil, Code: "PRJ", Name: "Project"},
		{ID: "a", ParentID: strPtr("root"), Code: "E-1", Name: "A"},
		// Parent never mirrored: must be rejected, not attached to root.
		{ID: "lost", ParentID: strPtr("ghost"), Code: "C-1", Name: "Lost"},
	}

	_, err := BuildTree(records)
	var integrity *IntegrityError
	require.True(t, errors.As(err, &integrity))
	assert.Contains(t, integrity.NodeIDs, "lost")
	assert.Contains(t, integrity.Error(), "orphaned")
}

func TestBuildTree_RejectsCycles(t *testing.T) {
	records := []Record{
		{ID: "root", ParentID: nil, Code: "PRJ", Name: "Project"},
		// a and b form a parent cycle disconnected from the root.
		{ID: "a", ParentID: strPtr("b"), Code: "C-1", Name: "A"},
		{ID: "b", ParentID: strPtr("a"), Code: "C-2", Name: "B"},
	}

	_, err := BuildTree(records)
	var integrity *IntegrityError
	require.True(t, errors.As(err, &integrity))
	assert.Contains(t, integrity.Error(), "cyclic")
	assert.ElementsMatch(t, []string{"a", "b"}, integrity.NodeIDs)
}

func TestBuildTree_RejectsDuplicateIDs(t *testing.T) {
	records := []Record{
		{ID: "root", ParentID: nil, Code: "PRJ", Name: "Project"},
		{ID: "a", ParentID: strPtr("root"), Code: "E-1", Name: "A"},
		{ID: "a", ParentID: strPtr("root"), Code: "E-2", Name: "A again"},
	}

	_, err := BuildTree(records)
	var integrity *IntegrityError
	require.True(t, errors.As(err, &integrity))
	assert.Contains(t, integrity.Error(), "duplicate")
}

func TestBuildTree_RejectsMissingOrMultipleRoots(t *testing.T) {
	_, err := BuildTree([]Record{
		{ID: "a", ParentID: strPtr("b"), Code: "E-1", Name: "A"},
		{ID: "b", ParentID: strPtr("a"), Code: "E-2", Name: "B"},
	})
	var integrity *IntegrityError
	require.True(t, errors.As(err, &integrity))

	_, err = BuildTree([]Record{
		{ID: "r1", ParentID: nil, Code: "PRJ1", Name: "One"},
		{ID: "r2", ParentID: nil, Code: "PRJ2", Name: "Two"},
	})
	require.True(t, errors.As(err, &integrity))
	assert.Contains(t, integrity.Error(), "multiple root")
}

func TestBuildTree_RejectsEmpty(t *testing.T) {
	_, err := BuildTree(nil)
	var integrity *IntegrityError
	require.True(t, errors.As(err, &integrity))
}

func TestFindPath(t *testing.T) {
	tree, err := BuildTree(sampleRecords())
	require.NoError(t, err)

	path, err := tree.FindPath("c220")
	require.NoError(t, err)

	ids := make([]string, 0, len(path))
	for _, n := range path {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"root", "c200", "c220"}, ids)

	// Root's path is itself.
	path, err = tree.FindPath("root")
	require.NoError(t, err)
	require.Len(t, path, 1)
	assert.Equal(t, "root", path[0].ID)

	_, err = tree.FindPath("nope")
	assert.Error(t, err)
}
