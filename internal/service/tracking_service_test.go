package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/repository"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

func newTestService(t *testing.T, batchSize int) (*TrackingService, *ConfigurationService, *repository.MemoryTrackingRepository) {
	t.Helper()
	trackingRepo := repository.NewMemoryTrackingRepository()
	configRepo := repository.NewMemoryConfigurationRepository()
	dispatcher := events.NewInMemoryDispatcher()

	tracking := NewTrackingService(TrackingDependencies{
		TrackingRepo:      trackingRepo,
		ConfigurationRepo: configRepo,
		Dispatcher:        dispatcher,
		SweepBatchSize:    batchSize,
	})
	configuration := NewConfigurationService(configRepo, dispatcher, nil)
	return tracking, configuration, trackingRepo
}

func seedGlobalConfiguration(t *testing.T, configs *ConfigurationService, responseHours, resolutionHours int) *domain.SlaConfiguration {
	t.Helper()
	cfg, err := configs.SaveConfiguration(context.Background(), ConfigurationInput{
		Name:                    "global default",
		ResponseDeadlineHours:   responseHours,
		ResolutionDeadlineHours: resolutionHours,
		IsActive:                true,
	})
	require.NoError(t, err)
	return cfg
}

func caseInput(caseID string, createdAt time.Time) TrackingRecordInput {
	return TrackingRecordInput{
		CaseID:        caseID,
		CaseNumber:    "CASE-" + caseID,
		CaseType:      domain.CaseTypeReturn,
		StoreID:       "store-1",
		StoreName:     "Acme Outlet",
		CaseCreatedAt: createdAt,
	}
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	return domainErr.Code
}

func TestCreateTrackingRecord_FreezesDeadlines(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	cfg := seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	record, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.NoError(t, err)

	assert.Equal(t, cfg.ID, record.MatchedConfigurationID)
	assert.Equal(t, t0.Add(24*time.Hour), record.FirstResponseDeadline)
	assert.Equal(t, t0.Add(72*time.Hour), record.ResolutionDeadline)
	assert.Nil(t, record.FirstRespondedAt)
	assert.Nil(t, record.ResolvedAt)
	assert.False(t, record.FirstResponseBreached)
	assert.False(t, record.ResolutionBreached)

	// later configuration changes never touch the frozen deadlines
	_, err = configs.SaveConfiguration(ctx, ConfigurationInput{
		ID:                      cfg.ID,
		Name:                    cfg.Name,
		ResponseDeadlineHours:   1,
		ResolutionDeadlineHours: 2,
		IsActive:                true,
	})
	require.NoError(t, err)

	reloaded, err := tracking.GetTrackingRecord(ctx, "case-1")
	require.NoError(t, err)
	assert.Equal(t, t0.Add(24*time.Hour), reloaded.FirstResponseDeadline)
	assert.Equal(t, t0.Add(72*time.Hour), reloaded.ResolutionDeadline)
}

func TestCreateTrackingRecord_RejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Now().UTC()
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.NoError(t, err)

	_, err = tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_TRACKING_RECORD", domainCode(t, err))
}

func TestCreateTrackingRecord_NoApplicableConfiguration(t *testing.T) {
	ctx := context.Background()
	tracking, _, _ := newTestService(t, 0)

	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", time.Now().UTC()))
	require.Error(t, err)
	assert.Equal(t, "NO_APPLICABLE_CONFIGURATION", domainCode(t, err))
}

func TestCreateTrackingRecord_ValidatesInput(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	input := caseInput("", time.Time{})
	input.CaseType = domain.CaseType("UNKNOWN")
	_, err := tracking.CreateTrackingRecord(ctx, input)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestRecordFirstResponse_Idempotent(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Now().UTC()
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.NoError(t, err)

	t1 := t0.Add(5 * time.Hour)
	record, err := tracking.RecordFirstResponse(ctx, "case-1", t1)
	require.NoError(t, err)
	require.NotNil(t, record.FirstRespondedAt)
	assert.True(t, record.FirstRespondedAt.Equal(t1))

	// the second timestamp is discarded
	record, err = tracking.RecordFirstResponse(ctx, "case-1", t0.Add(9*time.Hour))
	require.NoError(t, err)
	assert.True(t, record.FirstRespondedAt.Equal(t1))
}

func TestRecordResolution_IdempotentAndTerminal(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Now().UTC()
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.NoError(t, err)

	t1 := t0.Add(10 * time.Hour)
	record, err := tracking.RecordResolution(ctx, "case-1", t1)
	require.NoError(t, err)
	require.NotNil(t, record.ResolvedAt)
	assert.True(t, record.ResolvedAt.Equal(t1))

	record, err = tracking.RecordResolution(ctx, "case-1", t0.Add(50*time.Hour))
	require.NoError(t, err)
	assert.True(t, record.ResolvedAt.Equal(t1))
}

func TestRecordEvents_UnknownCase(t *testing.T) {
	ctx := context.Background()
	tracking, _, _ := newTestService(t, 0)

	_, err := tracking.RecordFirstResponse(ctx, "missing", time.Now())
	require.Error(t, err)
	assert.Equal(t, "RECORD_NOT_FOUND", domainCode(t, err))

	_, err = tracking.RecordResolution(ctx, "missing", time.Now())
	require.Error(t, err)
	assert.Equal(t, "RECORD_NOT_FOUND", domainCode(t, err))
}

func TestSweep_FlagsMissedFirstResponse(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.NoError(t, err)

	flagged, err := tracking.CheckAndUpdateBreaches(ctx, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, flagged)

	record, err := tracking.GetTrackingRecord(ctx, "case-1")
	require.NoError(t, err)
	assert.True(t, record.FirstResponseBreached)
	assert.False(t, record.ResolutionBreached)
	require.NotNil(t, record.LastBreachCheckAt)
}

func TestSweep_OnTimeResponseIsNotBreached(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.NoError(t, err)

	_, err = tracking.RecordFirstResponse(ctx, "case-1", t0.Add(10*time.Hour))
	require.NoError(t, err)

	flagged, err := tracking.CheckAndUpdateBreaches(ctx, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, flagged)

	record, err := tracking.GetTrackingRecord(ctx, "case-1")
	require.NoError(t, err)
	assert.False(t, record.FirstResponseBreached)
}

func TestSweep_IdempotentRerun(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.NoError(t, err)

	now := t0.Add(25 * time.Hour)
	flagged, err := tracking.CheckAndUpdateBreaches(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, flagged)

	flagged, err = tracking.CheckAndUpdateBreaches(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, flagged)
}

func TestSweep_BreachFlagsAreMonotonic(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.NoError(t, err)

	_, err = tracking.CheckAndUpdateBreaches(ctx, t0.Add(25*time.Hour))
	require.NoError(t, err)

	// a late response does not clear the breach flag
	_, err = tracking.RecordFirstResponse(ctx, "case-1", t0.Add(26*time.Hour))
	require.NoError(t, err)

	for _, now := range []time.Time{t0.Add(30 * time.Hour), t0.Add(100 * time.Hour)} {
		_, err = tracking.CheckAndUpdateBreaches(ctx, now)
		require.NoError(t, err)
		record, err := tracking.GetTrackingRecord(ctx, "case-1")
		require.NoError(t, err)
		assert.True(t, record.FirstResponseBreached)
	}
}

func TestSweep_SkipsTerminalRecords(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.NoError(t, err)

	_, err = tracking.RecordResolution(ctx, "case-1", t0.Add(time.Hour))
	require.NoError(t, err)

	// both deadlines long past, record stays untouched
	flagged, err := tracking.CheckAndUpdateBreaches(ctx, t0.Add(1000*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, flagged)

	record, err := tracking.GetTrackingRecord(ctx, "case-1")
	require.NoError(t, err)
	assert.False(t, record.FirstResponseBreached)
	assert.False(t, record.ResolutionBreached)
	assert.Nil(t, record.LastBreachCheckAt)
}

func TestSweep_FlagsResolutionBreach(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.NoError(t, err)

	// responded on time but never resolved
	_, err = tracking.RecordFirstResponse(ctx, "case-1", t0.Add(2*time.Hour))
	require.NoError(t, err)

	flagged, err := tracking.CheckAndUpdateBreaches(ctx, t0.Add(73*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, flagged)

	record, err := tracking.GetTrackingRecord(ctx, "case-1")
	require.NoError(t, err)
	assert.False(t, record.FirstResponseBreached)
	assert.True(t, record.ResolutionBreached)
}

func TestSweep_ProcessesAllBatches(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 3)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		_, err := tracking.CreateTrackingRecord(ctx, caseInput(fmt.Sprintf("case-%02d", i), t0))
		require.NoError(t, err)
	}

	flagged, err := tracking.CheckAndUpdateBreaches(ctx, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 10, flagged)
}

func TestSweep_ExactDeadlineIsNotBreach(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.NoError(t, err)

	flagged, err := tracking.CheckAndUpdateBreaches(ctx, t0.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, flagged)
}

func TestGetBreachedCases(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-breached", t0))
	require.NoError(t, err)
	_, err = tracking.CreateTrackingRecord(ctx, caseInput("case-fresh", t0.Add(20*time.Hour)))
	require.NoError(t, err)
	_, err = tracking.CreateTrackingRecord(ctx, caseInput("case-resolved", t0))
	require.NoError(t, err)
	_, err = tracking.RecordResolution(ctx, "case-resolved", t0.Add(time.Hour))
	require.NoError(t, err)

	_, err = tracking.CheckAndUpdateBreaches(ctx, t0.Add(25*time.Hour))
	require.NoError(t, err)

	breached, err := tracking.GetBreachedCases(ctx)
	require.NoError(t, err)
	require.Len(t, breached, 1)
	assert.Equal(t, "case-breached", breached[0].CaseID)
}

func TestGetDashboardStatistics_RangeFilterAndValidation(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-in", t0))
	require.NoError(t, err)
	_, err = tracking.CreateTrackingRecord(ctx, caseInput("case-out", t0.AddDate(0, 1, 0)))
	require.NoError(t, err)
	_, err = tracking.RecordResolution(ctx, "case-in", t0.Add(time.Hour))
	require.NoError(t, err)

	stats, err := tracking.GetDashboardStatistics(ctx, t0, t0.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCases)
	assert.Equal(t, 100.0, stats.SlaCompliancePercentage)

	_, err = tracking.GetDashboardStatistics(ctx, t0, t0.Add(-time.Hour))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestGetSellerStatistics_GroupsByStore(t *testing.T) {
	ctx := context.Background()
	tracking, configs, _ := newTestService(t, 0)
	seedGlobalConfiguration(t, configs, 24, 72)

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	inputA := caseInput("case-a", t0)
	inputA.StoreID = "store-a"
	inputB := caseInput("case-b", t0)
	inputB.StoreID = "store-b"
	_, err := tracking.CreateTrackingRecord(ctx, inputA)
	require.NoError(t, err)
	_, err = tracking.CreateTrackingRecord(ctx, inputB)
	require.NoError(t, err)
	_, err = tracking.RecordResolution(ctx, "case-a", t0.Add(time.Hour))
	require.NoError(t, err)

	stats, err := tracking.GetSellerStatistics(ctx, t0, t0.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "store-a", stats[0].StoreID)
	assert.Equal(t, 100.0, stats[0].SlaCompliancePercentage)
	assert.Equal(t, "store-b", stats[1].StoreID)
	assert.Equal(t, 0.0, stats[1].SlaCompliancePercentage)
}

func TestSweep_EmitsBreachEvents(t *testing.T) {
	ctx := context.Background()
	trackingRepo := repository.NewMemoryTrackingRepository()
	configRepo := repository.NewMemoryConfigurationRepository()
	dispatcher := events.NewInMemoryDispatcher()

	var received []events.Event
	dispatcher.Subscribe(events.EventBreachDetected, func(ctx context.Context, event events.Event) error {
		received = append(received, event)
		return nil
	})

	tracking := NewTrackingService(TrackingDependencies{
		TrackingRepo:      trackingRepo,
		ConfigurationRepo: configRepo,
		Dispatcher:        dispatcher,
	})
	configuration := NewConfigurationService(configRepo, dispatcher, nil)
	seedGlobalConfiguration(t, configuration, 24, 72)

	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := tracking.CreateTrackingRecord(ctx, caseInput("case-1", t0))
	require.NoError(t, err)

	_, err = tracking.CheckAndUpdateBreaches(ctx, t0.Add(25*time.Hour))
	require.NoError(t, err)

	require.Len(t, received, 1)
	assert.Equal(t, "case-1", received[0].CaseID)
	payload, ok := received[0].Payload.(events.BreachDetectedPayload)
	require.True(t, ok)
	assert.True(t, payload.FirstResponseBreached)
	assert.False(t, payload.ResolutionBreached)
}
