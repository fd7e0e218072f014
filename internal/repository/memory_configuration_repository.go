package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/sla-service/internal/domain"
)

// MemoryConfigurationRepository is an in-memory ConfigurationRepository,
// used in tests and as a development fallback when no database is wired.
type MemoryConfigurationRepository struct {
	mu      sync.RWMutex
	configs map[string]*domain.SlaConfiguration
}

// NewMemoryConfigurationRepository creates an empty repository.
func NewMemoryConfigurationRepository() *MemoryConfigurationRepository {
	return &MemoryConfigurationRepository{
		configs: make(map[string]*domain.SlaConfiguration),
	}
}

func (r *MemoryConfigurationRepository) Create(ctx context.Context, cfg *domain.SlaConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg.ID = uuid.NewString()
	now := time.Now()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	stored := *cfg
	r.configs[cfg.ID] = &stored
	return nil
}

func (r *MemoryConfigurationRepository) Update(ctx context.Context, cfg *domain.SlaConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.configs[cfg.ID]
	if !ok {
		return ErrNotFound
	}
	cfg.CreatedAt = existing.CreatedAt
	cfg.UpdatedAt = time.Now()

	stored := *cfg
	r.configs[cfg.ID] = &stored
	return nil
}

func (r *MemoryConfigurationRepository) GetByID(ctx context.Context, id string) (*domain.SlaConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.configs[id]
	if !ok {
		return nil, ErrNotFound
	}
	result := *cfg
	return &result, nil
}

func (r *MemoryConfigurationRepository) List(ctx context.Context) ([]domain.SlaConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.SlaConfiguration, 0, len(r.configs))
	for _, cfg := range r.configs {
		result = append(result, *cfg)
	}
	return result, nil
}

func (r *MemoryConfigurationRepository) ListActive(ctx context.Context) ([]domain.SlaConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []domain.SlaConfiguration
	for _, cfg := range r.configs {
		if cfg.IsActive {
			result = append(result, *cfg)
		}
	}
	return result, nil
}

func (r *MemoryConfigurationRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.configs[id]; !ok {
		return ErrNotFound
	}
	delete(r.configs, id)
	return nil
}
