package wbs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUIStateToggleExpanded(t *testing.T) {
	s0 := NewUIState()
	assert.False(t, s0.IsExpanded("n1"))

	s1 := s0.ToggleExpanded("n1")
	assert.True(t, s1.IsExpanded("n1"))

	// Toggling again removes the id.
	s2 := s1.ToggleExpanded("n1")
	assert.False(t, s2.IsExpanded("n1"))

	// Earlier states are untouched.
	assert.False(t, s0.IsExpanded("n1"))
	assert.True(t, s1.IsExpanded("n1"))
}

func TestUIStateSelect(t *testing.T) {
	s0 := NewUIState()
	require.Nil(t, s0.SelectedID)

	s1 := s0.Select("n7")
	require.NotNil(t, s1.SelectedID)
	assert.Equal(t, "n7", *s1.SelectedID)
	assert.Nil(t, s0.SelectedID)

	s2 := s1.Select("")
	assert.Nil(t, s2.SelectedID)
}

func TestUIStateJSONRoundTrip(t *testing.T) {
	state := NewUIState().ToggleExpanded("b").ToggleExpanded("a").Select("a")

	data, err := json.Marshal(state)
	require.NoError(t, err)
	// Sorted, stable serialization.
	assert.JSONEq(t, `{"expandedIds":["a","b"],"selectedId":"a"}`, string(data))

	var decoded UIState
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.IsExpanded("a"))
	assert.True(t, decoded.IsExpanded("b"))
	require.NotNil(t, decoded.SelectedID)
	assert.Equal(t, "a", *decoded.SelectedID)
}

func TestUIStateEmptyJSON(t *testing.T) {
	data, err := json.Marshal(NewUIState())
	require.NoError(t, err)
	assert.JSONEq(t, `{"expandedIds":[],"selectedId":null}`, string(data))
}
