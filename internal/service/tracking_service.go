package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/sla"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

const defaultSweepBatchSize = 200

// TrackingService orchestrates the SLA tracking lifecycle: record creation
// with frozen deadlines, response/resolution events, the periodic breach
// sweep and compliance statistics.
type TrackingService struct {
	records    repository.TrackingRepository
	configs    repository.ConfigurationRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	batchSize  int
}

// TrackingDependencies bundles collaborators for the tracking service.
type TrackingDependencies struct {
	TrackingRepo      repository.TrackingRepository
	ConfigurationRepo repository.ConfigurationRepository
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
	SweepBatchSize    int
}

// TrackingRecordInput describes the case metadata supplied by the external
// case-lifecycle system when a case opens.
type TrackingRecordInput struct {
	CaseID        string
	CaseNumber    string
	CaseType      domain.CaseType
	StoreID       string
	StoreName     string
	CaseCreatedAt time.Time
	Category      *string
}

// NewTrackingService constructs the service.
func NewTrackingService(deps TrackingDependencies) *TrackingService {
	batchSize := deps.SweepBatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingService{
		records:    deps.TrackingRepo,
		configs:    deps.ConfigurationRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		batchSize:  batchSize,
	}
}

// CreateTrackingRecord computes deadlines from the applicable configuration
// and persists a new record. Deadlines are frozen here and never recomputed.
func (s *TrackingService) CreateTrackingRecord(ctx context.Context, input TrackingRecordInput) (*domain.SlaTrackingRecord, error) {
	if err := validateTrackingInput(input); err != nil {
		return nil, err
	}

	if _, err := s.records.GetByCaseID(ctx, input.CaseID); err == nil {
		return nil, apperrors.NewDuplicateTrackingRecord(input.CaseID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	active, err := s.configs.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	resolution, err := sla.Resolve(input.Category, input.CaseCreatedAt, active)
	if err != nil {
		if errors.Is(err, sla.ErrNoApplicableConfiguration) {
			return nil, apperrors.NewNoApplicableConfiguration(input.Category)
		}
		return nil, err
	}

	record := &domain.SlaTrackingRecord{
		CaseID:                 input.CaseID,
		CaseNumber:             strings.TrimSpace(input.CaseNumber),
		CaseType:               input.CaseType,
		StoreID:                input.StoreID,
		StoreName:              strings.TrimSpace(input.StoreName),
		Category:               input.Category,
		MatchedConfigurationID: resolution.ConfigurationID,
		CaseCreatedAt:          input.CaseCreatedAt,
		FirstResponseDeadline:  resolution.ResponseDeadline,
		ResolutionDeadline:     resolution.ResolutionDeadline,
	}

	if err := s.records.Create(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateCase) {
			return nil, apperrors.NewDuplicateTrackingRecord(input.CaseID)
		}
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventTrackingRecordCreated,
		CaseID:  record.CaseID,
		StoreID: record.StoreID,
		Payload: events.TrackingRecordCreatedPayload{
			CaseNumber:             record.CaseNumber,
			CaseType:               record.CaseType,
			Category:               record.Category,
			MatchedConfigurationID: record.MatchedConfigurationID,
			FirstResponseDeadline:  record.FirstResponseDeadline,
			ResolutionDeadline:     record.ResolutionDeadline,
		},
	})
	return record, nil
}

// RecordFirstResponse stores the first-response timestamp for a case.
// Idempotent: a timestamp already present is kept and the call is a no-op.
func (s *TrackingService) RecordFirstResponse(ctx context.Context, caseID string, respondedAt time.Time) (*domain.SlaTrackingRecord, error) {
	record, err := s.loadRecord(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if record.FirstRespondedAt != nil {
		return record, nil
	}

	updated, err := s.records.SetFirstRespondedAt(ctx, caseID, respondedAt)
	if err != nil {
		return nil, err
	}
	record, err = s.loadRecord(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if updated {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventFirstResponseRecorded,
			CaseID:  record.CaseID,
			StoreID: record.StoreID,
			Payload: events.FirstResponseRecordedPayload{
				RespondedAt: respondedAt,
				WithinSla:   !respondedAt.After(record.FirstResponseDeadline),
			},
		})
	}
	return record, nil
}

// RecordResolution stores the resolution timestamp, making the record
// terminal: later sweeps skip it entirely. Idempotent like RecordFirstResponse.
func (s *TrackingService) RecordResolution(ctx context.Context, caseID string, resolvedAt time.Time) (*domain.SlaTrackingRecord, error) {
	record, err := s.loadRecord(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if record.ResolvedAt != nil {
		return record, nil
	}

	updated, err := s.records.SetResolvedAt(ctx, caseID, resolvedAt)
	if err != nil {
		return nil, err
	}
	record, err = s.loadRecord(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if updated {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventResolutionRecorded,
			CaseID:  record.CaseID,
			StoreID: record.StoreID,
			Payload: events.ResolutionRecordedPayload{
				ResolvedAt: resolvedAt,
				WithinSla:  !resolvedAt.After(record.ResolutionDeadline),
			},
		})
	}
	return record, nil
}

// CheckAndUpdateBreaches sweeps all non-terminal records in batches and
// flags deadlines passed without the corresponding event. Flags only move
// false to true and the repository re-checks record state at write time,
// so concurrent or repeated sweeps never double-count: a re-run with the
// same now and no intervening events reports zero.
func (s *TrackingService) CheckAndUpdateBreaches(ctx context.Context, now time.Time) (int, error) {
	flagged := 0
	afterCaseID := ""

	for {
		batch, err := s.records.ListOpenBatch(ctx, afterCaseID, s.batchSize)
		if err != nil {
			return flagged, err
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			rec := &batch[i]
			flagResponse := rec.FirstRespondedAt == nil && !rec.FirstResponseBreached && now.After(rec.FirstResponseDeadline)
			flagResolution := !rec.ResolutionBreached && now.After(rec.ResolutionDeadline)
			if !flagResponse && !flagResolution {
				continue
			}

			changed, err := s.records.MarkBreaches(ctx, rec.CaseID, flagResponse, flagResolution, now)
			if err != nil {
				return flagged, err
			}
			if !changed {
				// lost the race against a response/resolution event
				continue
			}
			flagged++
			s.publishEvent(ctx, events.Event{
				Type:    events.EventBreachDetected,
				CaseID:  rec.CaseID,
				StoreID: rec.StoreID,
				Payload: events.BreachDetectedPayload{
					CaseNumber:            rec.CaseNumber,
					StoreName:             rec.StoreName,
					FirstResponseBreached: flagResponse,
					ResolutionBreached:    flagResolution,
					CheckedAt:             now,
				},
			})
		}

		afterCaseID = batch[len(batch)-1].CaseID
		if len(batch) < s.batchSize {
			break
		}
	}

	if flagged > 0 {
		s.logger.Info("breach sweep flagged records", zap.Int("count", flagged), zap.Time("now", now))
	}
	return flagged, nil
}

// GetDashboardStatistics aggregates compliance over records whose cases
// were created in the given range.
func (s *TrackingService) GetDashboardStatistics(ctx context.Context, from, to time.Time) (*domain.SlaDashboardStatistics, error) {
	if to.Before(from) {
		return nil, apperrors.NewValidationError("end date before start date", nil)
	}
	records, err := s.records.ListCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	stats := sla.Aggregate(records, from, to)
	return &stats, nil
}

// GetSellerStatistics returns the same aggregation grouped by store.
func (s *TrackingService) GetSellerStatistics(ctx context.Context, from, to time.Time) ([]domain.SlaStoreStatistics, error) {
	if to.Before(from) {
		return nil, apperrors.NewValidationError("end date before start date", nil)
	}
	records, err := s.records.ListCreatedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return sla.AggregateByStore(records, from, to), nil
}

// GetTrackingRecord fetches the record for a case.
func (s *TrackingService) GetTrackingRecord(ctx context.Context, caseID string) (*domain.SlaTrackingRecord, error) {
	return s.loadRecord(ctx, caseID)
}

// GetBreachedCases returns all non-terminal records with either breach
// flag set, for admin attention.
func (s *TrackingService) GetBreachedCases(ctx context.Context) ([]domain.SlaTrackingRecord, error) {
	return s.records.ListBreached(ctx)
}

func (s *TrackingService) loadRecord(ctx context.Context, caseID string) (*domain.SlaTrackingRecord, error) {
	record, err := s.records.GetByCaseID(ctx, caseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewRecordNotFound(caseID)
		}
		return nil, err
	}
	return record, nil
}

func validateTrackingInput(input TrackingRecordInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.CaseID) == "" {
		details["case_id"] = "required"
	}
	if strings.TrimSpace(input.CaseNumber) == "" {
		details["case_number"] = "required"
	}
	if !domain.ValidCaseType(input.CaseType) {
		details["case_type"] = "must be RETURN, COMPLAINT or DISPUTE"
	}
	if strings.TrimSpace(input.StoreID) == "" {
		details["store_id"] = "required"
	}
	if input.CaseCreatedAt.IsZero() {
		details["case_created_at"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid tracking record request", details)
	}
	return nil
}

func (s *TrackingService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
