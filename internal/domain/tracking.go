package domain

import "time"

// CaseType enumerates the kinds of cases opened against a store.
type CaseType string

const (
	CaseTypeReturn    CaseType = "RETURN"
	CaseTypeComplaint CaseType = "COMPLAINT"
	CaseTypeDispute   CaseType = "DISPUTE"
)

// ValidCaseType reports whether the given value is a known case type.
func ValidCaseType(t CaseType) bool {
	switch t {
	case CaseTypeReturn, CaseTypeComplaint, CaseTypeDispute:
		return true
	}
	return false
}

// SlaTrackingRecord tracks deadlines, actual event times and breach flags
// for a single case. Records are keyed 1:1 by case id; the case itself is
// owned by the external case-lifecycle system.
//
// Deadlines are set exactly once at creation. Breach flags only ever move
// false to true, and only while the corresponding event timestamp is still
// unset. A record with ResolvedAt set is terminal and no longer swept.
type SlaTrackingRecord struct {
	ID                     string
	CaseID                 string
	CaseNumber             string
	CaseType               CaseType
	StoreID                string
	StoreName              string
	Category               *string
	MatchedConfigurationID string
	CaseCreatedAt          time.Time
	FirstResponseDeadline  time.Time
	ResolutionDeadline     time.Time
	FirstRespondedAt       *time.Time
	ResolvedAt             *time.Time
	FirstResponseBreached  bool
	ResolutionBreached     bool
	LastBreachCheckAt      *time.Time
	Version                int64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// IsTerminal reports whether the record's case has been resolved.
func (r *SlaTrackingRecord) IsTerminal() bool {
	return r.ResolvedAt != nil
}

// HasResponse reports whether a first response has been recorded.
func (r *SlaTrackingRecord) HasResponse() bool {
	return r.FirstRespondedAt != nil
}

// IsBreached reports whether either breach flag is set.
func (r *SlaTrackingRecord) IsBreached() bool {
	return r.FirstResponseBreached || r.ResolutionBreached
}
