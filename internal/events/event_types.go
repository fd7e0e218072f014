package events

import (
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTrackingRecordCreated EventType = "sla_record_created"
	EventFirstResponseRecorded EventType = "sla_first_response_recorded"
	EventResolutionRecorded    EventType = "sla_resolution_recorded"
	EventBreachDetected        EventType = "sla_breach_detected"
	EventConfigurationChanged  EventType = "sla_configuration_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    string      `json:"case_id,omitempty"`
	StoreID   string      `json:"store_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TrackingRecordCreatedPayload payload.
type TrackingRecordCreatedPayload struct {
	CaseNumber             string          `json:"case_number"`
	CaseType               domain.CaseType `json:"case_type"`
	Category               *string         `json:"category,omitempty"`
	MatchedConfigurationID string          `json:"matched_configuration_id"`
	FirstResponseDeadline  time.Time       `json:"first_response_deadline"`
	ResolutionDeadline     time.Time       `json:"resolution_deadline"`
}

// FirstResponseRecordedPayload payload.
type FirstResponseRecordedPayload struct {
	RespondedAt time.Time `json:"responded_at"`
	WithinSla   bool      `json:"within_sla"`
}

// ResolutionRecordedPayload payload.
type ResolutionRecordedPayload struct {
	ResolvedAt time.Time `json:"resolved_at"`
	WithinSla  bool      `json:"within_sla"`
}

// BreachDetectedPayload payload.
type BreachDetectedPayload struct {
	CaseNumber            string    `json:"case_number"`
	StoreName             string    `json:"store_name"`
	FirstResponseBreached bool      `json:"first_response_breached"`
	ResolutionBreached    bool      `json:"resolution_breached"`
	CheckedAt             time.Time `json:"checked_at"`
}

// ConfigurationChangedPayload payload.
type ConfigurationChangedPayload struct {
	ConfigurationID string `json:"configuration_id"`
	Action          string `json:"action"`
}
