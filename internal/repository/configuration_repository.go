package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-service/internal/domain"
)

// ConfigurationRepository manages SLA configuration persistence.
type ConfigurationRepository interface {
	Create(ctx context.Context, cfg *domain.SlaConfiguration) error
	Update(ctx context.Context, cfg *domain.SlaConfiguration) error
	GetByID(ctx context.Context, id string) (*domain.SlaConfiguration, error)
	List(ctx context.Context) ([]domain.SlaConfiguration, error)
	ListActive(ctx context.Context) ([]domain.SlaConfiguration, error)
	Delete(ctx context.Context, id string) error
}

type configurationRepository struct {
	pool *pgxpool.Pool
}

// NewConfigurationRepository builds the repository.
func NewConfigurationRepository(pool *pgxpool.Pool) ConfigurationRepository {
	return &configurationRepository{pool: pool}
}

func (r *configurationRepository) Create(ctx context.Context, cfg *domain.SlaConfiguration) error {
	const query = `
        INSERT INTO sla_configurations (name, category, response_deadline_hours, resolution_deadline_hours, priority, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		cfg.Name,
		cfg.Category,
		cfg.ResponseDeadlineHours,
		cfg.ResolutionDeadlineHours,
		cfg.Priority,
		cfg.IsActive,
	).Scan(&cfg.ID, &cfg.CreatedAt, &cfg.UpdatedAt)
}

func (r *configurationRepository) Update(ctx context.Context, cfg *domain.SlaConfiguration) error {
	const query = `
        UPDATE sla_configurations SET name=$1, category=$2, response_deadline_hours=$3,
            resolution_deadline_hours=$4, priority=$5, is_active=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		cfg.Name,
		cfg.Category,
		cfg.ResponseDeadlineHours,
		cfg.ResolutionDeadlineHours,
		cfg.Priority,
		cfg.IsActive,
		cfg.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *configurationRepository) GetByID(ctx context.Context, id string) (*domain.SlaConfiguration, error) {
	const query = `
        SELECT id, name, category, response_deadline_hours, resolution_deadline_hours, priority, is_active, created_at, updated_at
        FROM sla_configurations WHERE id=$1`
	var cfg domain.SlaConfiguration
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&cfg.ID,
		&cfg.Name,
		&cfg.Category,
		&cfg.ResponseDeadlineHours,
		&cfg.ResolutionDeadlineHours,
		&cfg.Priority,
		&cfg.IsActive,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *configurationRepository) List(ctx context.Context) ([]domain.SlaConfiguration, error) {
	const query = `
        SELECT id, name, category, response_deadline_hours, resolution_deadline_hours, priority, is_active, created_at, updated_at
        FROM sla_configurations ORDER BY priority DESC, created_at DESC`
	return r.queryConfigurations(ctx, query)
}

func (r *configurationRepository) ListActive(ctx context.Context) ([]domain.SlaConfiguration, error) {
	const query = `
        SELECT id, name, category, response_deadline_hours, resolution_deadline_hours, priority, is_active, created_at, updated_at
        FROM sla_configurations WHERE is_active ORDER BY priority DESC, created_at DESC`
	return r.queryConfigurations(ctx, query)
}

func (r *configurationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sla_configurations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *configurationRepository) queryConfigurations(ctx context.Context, query string, args ...any) ([]domain.SlaConfiguration, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SlaConfiguration
	for rows.Next() {
		var cfg domain.SlaConfiguration
		if err := rows.Scan(
			&cfg.ID,
			&cfg.Name,
			&cfg.Category,
			&cfg.ResponseDeadlineHours,
			&cfg.ResolutionDeadlineHours,
			&cfg.Priority,
			&cfg.IsActive,
			&cfg.CreatedAt,
			&cfg.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, cfg)
	}
	return result, rows.Err()
}
