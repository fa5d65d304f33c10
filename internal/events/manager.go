package events

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	MirrorSyncStart    EventType = "MIRROR_SYNC_START"
	MirrorSyncComplete EventType = "MIRROR_SYNC_COMPLETE"
	ProjectMirrored    EventType = "PROJECT_MIRRORED"
	ProjectRegistered  EventType = "PROJECT_REGISTERED"
	IntegrityViolation EventType = "WBS_INTEGRITY_VIOLATION"
	MirrorStale        EventType = "MIRROR_STALE"
	ErrorOccurred      EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// Manager handles event emission and logging
type Manager struct {
	log zerolog.Logger
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log: log.With().Str("service", "events").Logger(),
	}
}

// Emit emits an event
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	eventJSON, _ := json.Marshal(event)
	m.log.Info().
		Str("event_type", string(eventType)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")
}

// EmitError emits an error event
func (m *Manager) EmitError(module string, err error, context map[string]interface{}) {
	if context == nil {
		context = map[string]interface{}{}
	}
	context["error"] = err.Error()
	m.Emit(ErrorOccurred, module, context)
}
