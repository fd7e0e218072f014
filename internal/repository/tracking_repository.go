package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/sla-service/internal/domain"
)

const trackingColumns = `id, case_id, case_number, case_type, store_id, store_name, category,
               matched_configuration_id, case_created_at, first_response_deadline, resolution_deadline,
               first_responded_at, resolved_at, first_response_breached, resolution_breached,
               last_breach_check_at, version, created_at, updated_at`

// TrackingRepository persists SLA tracking records keyed by case id.
// Mutations that race with the breach sweep are expressed as conditional
// updates so the database re-checks record state at write time.
type TrackingRepository interface {
	Create(ctx context.Context, rec *domain.SlaTrackingRecord) error
	GetByCaseID(ctx context.Context, caseID string) (*domain.SlaTrackingRecord, error)
	// SetFirstRespondedAt stores the first-response timestamp unless one is
	// already present. Returns false when the record was left untouched.
	SetFirstRespondedAt(ctx context.Context, caseID string, respondedAt time.Time) (bool, error)
	// SetResolvedAt stores the resolution timestamp unless one is already
	// present, making the record terminal.
	SetResolvedAt(ctx context.Context, caseID string, resolvedAt time.Time) (bool, error)
	// MarkBreaches flips the requested breach flags, re-checking at write
	// time that the corresponding event has not been recorded and the
	// record is not terminal. Returns true when at least one flag was
	// newly set.
	MarkBreaches(ctx context.Context, caseID string, flagFirstResponse, flagResolution bool, checkedAt time.Time) (bool, error)
	// ListOpenBatch pages non-terminal records ordered by case id,
	// returning at most limit records with case id greater than afterCaseID.
	ListOpenBatch(ctx context.Context, afterCaseID string, limit int) ([]domain.SlaTrackingRecord, error)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.SlaTrackingRecord, error)
	// ListBreached returns non-terminal records with either breach flag set.
	ListBreached(ctx context.Context) ([]domain.SlaTrackingRecord, error)
}

type trackingRepository struct {
	pool *pgxpool.Pool
}

// NewTrackingRepository instantiates the repository.
func NewTrackingRepository(pool *pgxpool.Pool) TrackingRepository {
	return &trackingRepository{pool: pool}
}

func (r *trackingRepository) Create(ctx context.Context, rec *domain.SlaTrackingRecord) error {
	const query = `
        INSERT INTO sla_tracking_records (case_id, case_number, case_type, store_id, store_name, category,
            matched_configuration_id, case_created_at, first_response_deadline, resolution_deadline)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, version, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		rec.CaseID,
		rec.CaseNumber,
		rec.CaseType,
		rec.StoreID,
		rec.StoreName,
		rec.Category,
		rec.MatchedConfigurationID,
		rec.CaseCreatedAt,
		rec.FirstResponseDeadline,
		rec.ResolutionDeadline,
	).Scan(&rec.ID, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCase
		}
		return err
	}
	return nil
}

func (r *trackingRepository) GetByCaseID(ctx context.Context, caseID string) (*domain.SlaTrackingRecord, error) {
	const query = `SELECT ` + trackingColumns + ` FROM sla_tracking_records WHERE case_id=$1`
	var rec domain.SlaTrackingRecord
	if err := scanTrackingRecord(r.pool.QueryRow(ctx, query, caseID), &rec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *trackingRepository) SetFirstRespondedAt(ctx context.Context, caseID string, respondedAt time.Time) (bool, error) {
	const query = `
        UPDATE sla_tracking_records
        SET first_responded_at=$2, version=version+1, updated_at=NOW()
        WHERE case_id=$1 AND first_responded_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, caseID, respondedAt)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *trackingRepository) SetResolvedAt(ctx context.Context, caseID string, resolvedAt time.Time) (bool, error) {
	const query = `
        UPDATE sla_tracking_records
        SET resolved_at=$2, version=version+1, updated_at=NOW()
        WHERE case_id=$1 AND resolved_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, caseID, resolvedAt)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *trackingRepository) MarkBreaches(ctx context.Context, caseID string, flagFirstResponse, flagResolution bool, checkedAt time.Time) (bool, error) {
	const query = `
        UPDATE sla_tracking_records
        SET first_response_breached = first_response_breached OR ($2 AND first_responded_at IS NULL),
            resolution_breached     = resolution_breached OR $3,
            last_breach_check_at    = $4,
            version                 = version + 1,
            updated_at              = NOW()
        WHERE case_id = $1
          AND resolved_at IS NULL
          AND (($2 AND first_responded_at IS NULL AND NOT first_response_breached)
            OR ($3 AND NOT resolution_breached))`
	cmd, err := r.pool.Exec(ctx, query, caseID, flagFirstResponse, flagResolution, checkedAt)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *trackingRepository) ListOpenBatch(ctx context.Context, afterCaseID string, limit int) ([]domain.SlaTrackingRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `SELECT ` + trackingColumns + `
        FROM sla_tracking_records
        WHERE resolved_at IS NULL AND case_id > $1
        ORDER BY case_id
        LIMIT $2`
	return r.queryTrackingRecords(ctx, query, afterCaseID, limit)
}

func (r *trackingRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]domain.SlaTrackingRecord, error) {
	const query = `SELECT ` + trackingColumns + `
        FROM sla_tracking_records
        WHERE case_created_at >= $1 AND case_created_at <= $2
        ORDER BY case_created_at`
	return r.queryTrackingRecords(ctx, query, from, to)
}

func (r *trackingRepository) ListBreached(ctx context.Context) ([]domain.SlaTrackingRecord, error) {
	const query = `SELECT ` + trackingColumns + `
        FROM sla_tracking_records
        WHERE resolved_at IS NULL AND (first_response_breached OR resolution_breached)
        ORDER BY case_created_at`
	return r.queryTrackingRecords(ctx, query)
}

func (r *trackingRepository) queryTrackingRecords(ctx context.Context, query string, args ...any) ([]domain.SlaTrackingRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SlaTrackingRecord
	for rows.Next() {
		var rec domain.SlaTrackingRecord
		if err := scanTrackingRecord(rows, &rec); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func scanTrackingRecord(row pgx.Row, rec *domain.SlaTrackingRecord) error {
	return row.Scan(
		&rec.ID,
		&rec.CaseID,
		&rec.CaseNumber,
		&rec.CaseType,
		&rec.StoreID,
		&rec.StoreName,
		&rec.Category,
		&rec.MatchedConfigurationID,
		&rec.CaseCreatedAt,
		&rec.FirstResponseDeadline,
		&rec.ResolutionDeadline,
		&rec.FirstRespondedAt,
		&rec.ResolvedAt,
		&rec.FirstResponseBreached,
		&rec.ResolutionBreached,
		&rec.LastBreachCheckAt,
		&rec.Version,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
}
