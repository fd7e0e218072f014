package sla

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/sla-service/internal/domain"
)

func timePtr(t time.Time) *time.Time { return &t }

func openRecord(caseID, storeID string, createdAt time.Time) domain.SlaTrackingRecord {
	return domain.SlaTrackingRecord{
		CaseID:                caseID,
		StoreID:               storeID,
		StoreName:             "Store " + storeID,
		CaseCreatedAt:         createdAt,
		FirstResponseDeadline: createdAt.Add(24 * time.Hour),
		ResolutionDeadline:    createdAt.Add(72 * time.Hour),
	}
}

func TestAggregate_EmptyRangeYieldsZeroPercentages(t *testing.T) {
	from := time.Now().Add(-24 * time.Hour)
	to := time.Now()

	stats := Aggregate(nil, from, to)

	assert.Equal(t, 0, stats.TotalCases)
	assert.Equal(t, 0.0, stats.SlaCompliancePercentage)
	assert.Equal(t, 0.0, stats.ResponseCompliancePercentage)
	assert.Equal(t, time.Duration(0), stats.AverageResponseTime)
}

func TestAggregate_CompliancePercentage(t *testing.T) {
	t0 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	// 10 cases: 7 resolved within SLA, 2 resolved breached, 1 still open.
	var records []domain.SlaTrackingRecord
	for i := 0; i < 7; i++ {
		rec := openRecord(fmt.Sprintf("case-ok-%d", i), "store-1", t0)
		rec.ResolvedAt = timePtr(t0.Add(10 * time.Hour))
		records = append(records, rec)
	}
	for i := 0; i < 2; i++ {
		rec := openRecord(fmt.Sprintf("case-late-%d", i), "store-1", t0)
		rec.ResolvedAt = timePtr(t0.Add(100 * time.Hour))
		rec.ResolutionBreached = true
		records = append(records, rec)
	}
	records = append(records, openRecord("case-open", "store-1", t0))

	stats := Aggregate(records, t0, t0.Add(24*time.Hour))

	assert.Equal(t, 10, stats.TotalCases)
	assert.Equal(t, 1, stats.OpenCases)
	assert.Equal(t, 7, stats.ResolvedWithinSla)
	assert.Equal(t, 2, stats.ResolutionBreaches)
	assert.Equal(t, 70.0, stats.SlaCompliancePercentage)
}

func TestAggregate_CountsAndAverages(t *testing.T) {
	t0 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	responded := openRecord("case-1", "store-1", t0)
	responded.FirstRespondedAt = timePtr(t0.Add(10 * time.Hour))

	respondedLate := openRecord("case-2", "store-1", t0)
	respondedLate.FirstRespondedAt = timePtr(t0.Add(30 * time.Hour))
	respondedLate.FirstResponseBreached = true

	resolved := openRecord("case-3", "store-1", t0)
	resolved.FirstRespondedAt = timePtr(t0.Add(2 * time.Hour))
	resolved.ResolvedAt = timePtr(t0.Add(48 * time.Hour))

	openBreached := openRecord("case-4", "store-1", t0)
	openBreached.ResolutionBreached = true

	records := []domain.SlaTrackingRecord{responded, respondedLate, resolved, openBreached}
	stats := Aggregate(records, t0, t0.Add(24*time.Hour))

	assert.Equal(t, 4, stats.TotalCases)
	assert.Equal(t, 3, stats.OpenCases)
	assert.Equal(t, 1, stats.ResolvedWithinSla)
	assert.Equal(t, 2, stats.RespondedWithinSla)
	assert.Equal(t, 2, stats.CurrentlyBreached)
	assert.Equal(t, 1, stats.FirstResponseBreaches)
	assert.Equal(t, 1, stats.ResolutionBreaches)
	// responses at 10h, 30h and 2h average to 14h
	assert.Equal(t, 14*time.Hour, stats.AverageResponseTime)
	assert.Equal(t, 48*time.Hour, stats.AverageResolutionTime)
	assert.Equal(t, 25.0, stats.SlaCompliancePercentage)
	assert.Equal(t, 50.0, stats.ResponseCompliancePercentage)
}

func TestAggregate_PercentageRounding(t *testing.T) {
	t0 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	var records []domain.SlaTrackingRecord
	rec := openRecord("case-1", "store-1", t0)
	rec.ResolvedAt = timePtr(t0.Add(time.Hour))
	records = append(records, rec)
	records = append(records, openRecord("case-2", "store-1", t0))
	records = append(records, openRecord("case-3", "store-1", t0))

	stats := Aggregate(records, t0, t0.Add(24*time.Hour))
	// 1/3 rounds to 33.33
	assert.Equal(t, 33.33, stats.SlaCompliancePercentage)
}

func TestAggregateByStore_GroupsAndOrders(t *testing.T) {
	t0 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	recA := openRecord("case-1", "store-b", t0)
	recA.ResolvedAt = timePtr(t0.Add(time.Hour))
	recB := openRecord("case-2", "store-a", t0)
	recC := openRecord("case-3", "store-a", t0)
	recC.ResolvedAt = timePtr(t0.Add(2 * time.Hour))

	stats := AggregateByStore([]domain.SlaTrackingRecord{recA, recB, recC}, t0, t0.Add(24*time.Hour))

	assert.Len(t, stats, 2)
	assert.Equal(t, "store-a", stats[0].StoreID)
	assert.Equal(t, 2, stats[0].TotalCases)
	assert.Equal(t, 50.0, stats[0].SlaCompliancePercentage)
	assert.Equal(t, "store-b", stats[1].StoreID)
	assert.Equal(t, 100.0, stats[1].SlaCompliancePercentage)
}
