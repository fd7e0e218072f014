package dto

import (
	"time"

	"github.com/spec-kit/sla-service/internal/auth"
	"github.com/spec-kit/sla-service/internal/domain"
)

// CreateTrackingRecordRequest payload, supplied by the case-lifecycle system.
type CreateTrackingRecordRequest struct {
	CaseID        string          `json:"case_id"`
	CaseNumber    string          `json:"case_number"`
	CaseType      domain.CaseType `json:"case_type"`
	StoreID       string          `json:"store_id"`
	StoreName     string          `json:"store_name"`
	CaseCreatedAt time.Time       `json:"case_created_at"`
	Category      *string         `json:"category"`
}

// RecordEventRequest carries a first-response or resolution timestamp.
type RecordEventRequest struct {
	OccurredAt time.Time `json:"occurred_at"`
}

// TrackingRecordResponse represents a tracking record.
type TrackingRecordResponse struct {
	ID                     string          `json:"id"`
	CaseID                 string          `json:"case_id"`
	CaseNumber             string          `json:"case_number"`
	CaseType               domain.CaseType `json:"case_type"`
	StoreID                string          `json:"store_id"`
	StoreName              string          `json:"store_name"`
	Category               *string         `json:"category,omitempty"`
	MatchedConfigurationID string          `json:"matched_configuration_id"`
	CaseCreatedAt          time.Time       `json:"case_created_at"`
	FirstResponseDeadline  time.Time       `json:"first_response_deadline"`
	ResolutionDeadline     time.Time       `json:"resolution_deadline"`
	FirstRespondedAt       *time.Time      `json:"first_responded_at,omitempty"`
	ResolvedAt             *time.Time      `json:"resolved_at,omitempty"`
	FirstResponseBreached  bool            `json:"first_response_breached"`
	ResolutionBreached     bool            `json:"resolution_breached"`
	LastBreachCheckAt      *time.Time      `json:"last_breach_check_at,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// SaveConfigurationRequest payload for configuration create/update.
type SaveConfigurationRequest struct {
	Name                    string  `json:"name"`
	Category                *string `json:"category"`
	ResponseDeadlineHours   int     `json:"response_deadline_hours"`
	ResolutionDeadlineHours int     `json:"resolution_deadline_hours"`
	Priority                int     `json:"priority"`
	IsActive                bool    `json:"is_active"`
}

// ConfigurationResponse represents a configuration.
type ConfigurationResponse struct {
	ID                      string    `json:"id"`
	Name                    string    `json:"name"`
	Category                *string   `json:"category,omitempty"`
	ResponseDeadlineHours   int       `json:"response_deadline_hours"`
	ResolutionDeadlineHours int       `json:"resolution_deadline_hours"`
	Priority                int       `json:"priority"`
	IsActive                bool      `json:"is_active"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// DashboardStatisticsResponse aggregates compliance over a range.
type DashboardStatisticsResponse struct {
	PeriodStart                  time.Time `json:"period_start"`
	PeriodEnd                    time.Time `json:"period_end"`
	TotalCases                   int       `json:"total_cases"`
	OpenCases                    int       `json:"open_cases"`
	ResolvedWithinSla            int       `json:"resolved_within_sla"`
	RespondedWithinSla           int       `json:"responded_within_sla"`
	CurrentlyBreached            int       `json:"currently_breached"`
	FirstResponseBreaches        int       `json:"first_response_breaches"`
	ResolutionBreaches           int       `json:"resolution_breaches"`
	AverageResponseHours         float64   `json:"average_response_hours"`
	AverageResolutionHours       float64   `json:"average_resolution_hours"`
	SlaCompliancePercentage      float64   `json:"sla_compliance_percentage"`
	ResponseCompliancePercentage float64   `json:"response_compliance_percentage"`
}

// StoreStatisticsResponse is the per-seller breakdown.
type StoreStatisticsResponse struct {
	StoreID   string `json:"store_id"`
	StoreName string `json:"store_name"`
	DashboardStatisticsResponse
}

// SweepResponse reports a manually triggered sweep.
type SweepResponse struct {
	NewlyFlagged int       `json:"newly_flagged"`
	CheckedAt    time.Time `json:"checked_at"`
}

// TokenRequest exchanges the shared service credential for a JWT.
type TokenRequest struct {
	SubjectID  string    `json:"subject_id"`
	Role       auth.Role `json:"role"`
	Credential string    `json:"credential"`
}

// TokenResponse carries the issued token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
