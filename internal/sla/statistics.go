package sla

import (
	"math"
	"sort"
	"time"

	"github.com/spec-kit/sla-service/internal/domain"
)

// Aggregate computes dashboard statistics over a set of tracking records,
// typically the result of a creation-time range query.
func Aggregate(records []domain.SlaTrackingRecord, periodStart, periodEnd time.Time) domain.SlaDashboardStatistics {
	stats := domain.SlaDashboardStatistics{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		TotalCases:  len(records),
	}

	var responseSum, resolutionSum time.Duration
	var responded, resolved int

	for i := range records {
		rec := &records[i]

		if !rec.IsTerminal() {
			stats.OpenCases++
			if rec.IsBreached() {
				stats.CurrentlyBreached++
			}
		} else if !rec.ResolutionBreached {
			stats.ResolvedWithinSla++
		}

		if rec.HasResponse() {
			responded++
			responseSum += rec.FirstRespondedAt.Sub(rec.CaseCreatedAt)
			if !rec.FirstResponseBreached {
				stats.RespondedWithinSla++
			}
		}
		if rec.IsTerminal() {
			resolved++
			resolutionSum += rec.ResolvedAt.Sub(rec.CaseCreatedAt)
		}

		if rec.FirstResponseBreached {
			stats.FirstResponseBreaches++
		}
		if rec.ResolutionBreached {
			stats.ResolutionBreaches++
		}
	}

	if responded > 0 {
		stats.AverageResponseTime = responseSum / time.Duration(responded)
	}
	if resolved > 0 {
		stats.AverageResolutionTime = resolutionSum / time.Duration(resolved)
	}
	stats.SlaCompliancePercentage = percentage(stats.ResolvedWithinSla, stats.TotalCases)
	stats.ResponseCompliancePercentage = percentage(stats.RespondedWithinSla, stats.TotalCases)
	return stats
}

// AggregateByStore groups the same aggregation per store id, ordered by
// store id for stable output.
func AggregateByStore(records []domain.SlaTrackingRecord, periodStart, periodEnd time.Time) []domain.SlaStoreStatistics {
	grouped := make(map[string][]domain.SlaTrackingRecord)
	names := make(map[string]string)
	for _, rec := range records {
		grouped[rec.StoreID] = append(grouped[rec.StoreID], rec)
		names[rec.StoreID] = rec.StoreName
	}

	storeIDs := make([]string, 0, len(grouped))
	for id := range grouped {
		storeIDs = append(storeIDs, id)
	}
	sort.Strings(storeIDs)

	result := make([]domain.SlaStoreStatistics, 0, len(storeIDs))
	for _, id := range storeIDs {
		result = append(result, domain.SlaStoreStatistics{
			StoreID:                id,
			StoreName:              names[id],
			SlaDashboardStatistics: Aggregate(grouped[id], periodStart, periodEnd),
		})
	}
	return result
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
