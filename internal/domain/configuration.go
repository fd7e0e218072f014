package domain

import "time"

// SlaConfiguration defines deadline rules applied to new cases.
// A nil Category marks the global default used when no category-specific
// rule matches. Deadlines computed from a configuration are frozen on the
// tracking record; later edits or deletion never touch existing records.
type SlaConfiguration struct {
	ID                      string
	Name                    string
	Category                *string
	ResponseDeadlineHours   int
	ResolutionDeadlineHours int
	Priority                int
	IsActive                bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// IsGlobal reports whether the configuration applies to all categories.
func (c *SlaConfiguration) IsGlobal() bool {
	return c.Category == nil
}
