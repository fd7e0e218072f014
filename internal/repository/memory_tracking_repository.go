package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/sla-service/internal/domain"
)

// MemoryTrackingRepository is an in-memory TrackingRepository mirroring the
// conditional-update semantics of the Postgres implementation, including
// version bumps and write-time re-checks of record state.
type MemoryTrackingRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.SlaTrackingRecord // keyed by case id
}

// NewMemoryTrackingRepository creates an empty repository.
func NewMemoryTrackingRepository() *MemoryTrackingRepository {
	return &MemoryTrackingRepository{
		records: make(map[string]*domain.SlaTrackingRecord),
	}
}

func (r *MemoryTrackingRepository) Create(ctx context.Context, rec *domain.SlaTrackingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.CaseID]; exists {
		return ErrDuplicateCase
	}
	rec.ID = uuid.NewString()
	rec.Version = 1
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	stored := *rec
	r.records[rec.CaseID] = &stored
	return nil
}

func (r *MemoryTrackingRepository) GetByCaseID(ctx context.Context, caseID string) (*domain.SlaTrackingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[caseID]
	if !ok {
		return nil, ErrNotFound
	}
	result := *rec
	return &result, nil
}

func (r *MemoryTrackingRepository) SetFirstRespondedAt(ctx context.Context, caseID string, respondedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[caseID]
	if !ok || rec.FirstRespondedAt != nil {
		return false, nil
	}
	t := respondedAt
	rec.FirstRespondedAt = &t
	rec.Version++
	rec.UpdatedAt = time.Now()
	return true, nil
}

func (r *MemoryTrackingRepository) SetResolvedAt(ctx context.Context, caseID string, resolvedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[caseID]
	if !ok || rec.ResolvedAt != nil {
		return false, nil
	}
	t := resolvedAt
	rec.ResolvedAt = &t
	rec.Version++
	rec.UpdatedAt = time.Now()
	return true, nil
}

func (r *MemoryTrackingRepository) MarkBreaches(ctx context.Context, caseID string, flagFirstResponse, flagResolution bool, checkedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[caseID]
	if !ok || rec.ResolvedAt != nil {
		return false, nil
	}

	setResponse := flagFirstResponse && rec.FirstRespondedAt == nil && !rec.FirstResponseBreached
	setResolution := flagResolution && !rec.ResolutionBreached
	if !setResponse && !setResolution {
		return false, nil
	}

	if setResponse {
		rec.FirstResponseBreached = true
	}
	if setResolution {
		rec.ResolutionBreached = true
	}
	t := checkedAt
	rec.LastBreachCheckAt = &t
	rec.Version++
	rec.UpdatedAt = time.Now()
	return true, nil
}

func (r *MemoryTrackingRepository) ListOpenBatch(ctx context.Context, afterCaseID string, limit int) ([]domain.SlaTrackingRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var open []domain.SlaTrackingRecord
	for _, rec := range r.records {
		if rec.ResolvedAt == nil && rec.CaseID > afterCaseID {
			open = append(open, *rec)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].CaseID < open[j].CaseID })
	if len(open) > limit {
		open = open[:limit]
	}
	return open, nil
}

func (r *MemoryTrackingRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.SlaTrackingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.SlaTrackingRecord
	for _, rec := range r.records {
		if rec.CaseCreatedAt.Before(from) || rec.CaseCreatedAt.After(to) {
			continue
		}
		result = append(result, *rec)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CaseCreatedAt.Before(result[j].CaseCreatedAt) })
	return result, nil
}

func (r *MemoryTrackingRepository) ListBreached(ctx context.Context) ([]domain.SlaTrackingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.SlaTrackingRecord
	for _, rec := range r.records {
		if rec.ResolvedAt == nil && (rec.FirstResponseBreached || rec.ResolutionBreached) {
			result = append(result, *rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CaseCreatedAt.Before(result[j].CaseCreatedAt) })
	return result, nil
}
