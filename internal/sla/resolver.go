package sla

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// ErrNoApplicableConfiguration signals that no active configuration covers
// the requested category and no global default exists.
var ErrNoApplicableConfiguration = errors.New("no applicable sla configuration")

// Resolution carries the deadlines computed for a new tracking record and
// the configuration they were derived from.
type Resolution struct {
	ResponseDeadline   time.Time
	ResolutionDeadline time.Time
	ConfigurationID    string
}

// Resolve selects the single applicable configuration for a case and
// computes both deadlines from the case creation instant.
//
// Selection order: active configurations whose category equals the given
// category (case-insensitive, whitespace-trimmed), ranked by priority
// descending then most recent creation; if none match, global
// configurations (nil category) with the same ranking. Deadline arithmetic
// treats timestamps as absolute instants; no local-time handling.
func Resolve(category *string, createdAt time.Time, active []domain.SlaConfiguration) (*Resolution, error) {
	candidates := rankCandidates(category, active)
	if len(candidates) == 0 {
		return nil, ErrNoApplicableConfiguration
	}
	matched := candidates[0]
	return &Resolution{
		ResponseDeadline:   createdAt.Add(time.Duration(matched.ResponseDeadlineHours) * time.Hour),
		ResolutionDeadline: createdAt.Add(time.Duration(matched.ResolutionDeadlineHours) * time.Hour),
		ConfigurationID:    matched.ID,
	}, nil
}

// rankCandidates builds the ranked candidate list: category-specific matches
// first, global fallbacks only when no specific match exists, each tier
// stably sorted by priority descending then creation time descending.
func rankCandidates(category *string, configs []domain.SlaConfiguration) []domain.SlaConfiguration {
	var specific, global []domain.SlaConfiguration
	for _, cfg := range configs {
		if !cfg.IsActive {
			continue
		}
		if cfg.Category == nil {
			global = append(global, cfg)
			continue
		}
		if category != nil && categoryEqual(*cfg.Category, *category) {
			specific = append(specific, cfg)
		}
	}

	tier := specific
	if len(tier) == 0 {
		tier = global
	}
	sort.SliceStable(tier, func(i, j int) bool {
		if tier[i].Priority != tier[j].Priority {
			return tier[i].Priority > tier[j].Priority
		}
		return tier[i].CreatedAt.After(tier[j].CreatedAt)
	})
	return tier
}

func categoryEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
