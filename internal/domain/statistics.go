package domain

import "time"

// SlaDashboardStatistics aggregates compliance over a reporting range.
// Derived on demand from tracking records; never persisted.
type SlaDashboardStatistics struct {
	PeriodStart time.Time
	PeriodEnd   time.Time

	TotalCases            int
	OpenCases             int
	ResolvedWithinSla     int
	RespondedWithinSla    int
	CurrentlyBreached     int
	FirstResponseBreaches int
	ResolutionBreaches    int

	AverageResponseTime   time.Duration
	AverageResolutionTime time.Duration

	// Percentages are count/TotalCases*100 rounded to two decimals,
	// zero when TotalCases is zero.
	SlaCompliancePercentage      float64
	ResponseCompliancePercentage float64
}

// SlaStoreStatistics is the per-seller breakdown of the same aggregation.
type SlaStoreStatistics struct {
	StoreID   string
	StoreName string
	SlaDashboardStatistics
}
