package wbs

import (
	"encoding/json"
	"sort"
)

// UIState is the per-session view state of one project's tree: which nodes
// are expanded and which one is selected. Operations return a new value; the
// stored state is replaced atomically, never mutated in place, so a rollup
// running against the same tree never observes a half-applied toggle.
type UIState struct {
	ExpandedIDs map[string]struct{}
	SelectedID  *string
}

// NewUIState returns an empty view state (everything collapsed, nothing
// selected).
func NewUIState() UIState {
	return UIState{ExpandedIDs: map[string]struct{}{}}
}

// IsExpanded reports whether the node is expanded.
func (s UIState) IsExpanded(nodeID string) bool {
	_, ok := s.ExpandedIDs[nodeID]
	return ok
}

// ToggleExpanded returns a copy of the state with the node's expansion
// flipped: added if absent, removed if present.
func (s UIState) ToggleExpanded(nodeID string) UIState {
	next := s.clone()
	if _, ok := next.ExpandedIDs[nodeID]; ok {
		delete(next.ExpandedIDs, nodeID)
	} else {
		next.ExpandedIDs[nodeID] = struct{}{}
	}
	return next
}

// Select returns a copy of the state with the node selected. An empty id
// clears the selection.
func (s UIState) Select(nodeID string) UIState {
	next := s.clone()
	if nodeID == "" {
		next.SelectedID = nil
	} else {
		id := nodeID
		next.SelectedID = &id
	}
	return next
}

func (s UIState) clone() UIState {
	expanded := make(map[string]struct{}, len(s.ExpandedIDs))
	for id := range s.ExpandedIDs {
		expanded[id] = struct{}{}
	}
	next := UIState{ExpandedIDs: expanded}
	if s.SelectedID != nil {
		id := *s.SelectedID
		next.SelectedID = &id
	}
	return next
}

// uiStateJSON is the wire/storage form: expandedIds as a sorted array so the
// serialization is stable.
type uiStateJSON struct {
	ExpandedIDs []string `json:"expandedIds"`
	SelectedID  *string  `json:"selectedId"`
}

// MarshalJSON implements json.Marshaler.
func (s UIState) MarshalJSON() ([]byte, error) {
	return json.Marshal(uiStateJSON{ExpandedIDs: sortedIDs(s.ExpandedIDs), SelectedID: s.SelectedID})
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *UIState) UnmarshalJSON(data []byte) error {
	var raw uiStateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.ExpandedIDs = make(map[string]struct{}, len(raw.ExpandedIDs))
	for _, id := range raw.ExpandedIDs {
		s.ExpandedIDs[id] = struct{}{}
	}
	s.SelectedID = raw.SelectedID
	return nil
}
