package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/dto"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/service"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// StatisticsHandler exposes compliance statistics to admin dashboards.
type StatisticsHandler struct {
	service *service.TrackingService
}

// NewStatisticsHandler constructs handler.
func NewStatisticsHandler(trackingService *service.TrackingService) *StatisticsHandler {
	return &StatisticsHandler{service: trackingService}
}

// Dashboard GET /statistics/dashboard?from=...&to=...
func (h *StatisticsHandler) Dashboard(c *fiber.Ctx) error {
	from, to, err := parseRange(c)
	if err != nil {
		return err
	}
	stats, err := h.service.GetDashboardStatistics(c.Context(), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboardResponse(stats)})
}

// Sellers GET /statistics/sellers?from=...&to=...
func (h *StatisticsHandler) Sellers(c *fiber.Ctx) error {
	from, to, err := parseRange(c)
	if err != nil {
		return err
	}
	stats, err := h.service.GetSellerStatistics(c.Context(), from, to)
	if err != nil {
		return err
	}
	items := make([]dto.StoreStatisticsResponse, 0, len(stats))
	for i := range stats {
		items = append(items, dto.StoreStatisticsResponse{
			StoreID:                     stats[i].StoreID,
			StoreName:                   stats[i].StoreName,
			DashboardStatisticsResponse: dashboardResponse(&stats[i].SlaDashboardStatistics),
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("from and to query parameters required", nil)
	}
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("invalid from timestamp", map[string]any{"from": fromStr})
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("invalid to timestamp", map[string]any{"to": toStr})
	}
	return from, to, nil
}

func dashboardResponse(stats *domain.SlaDashboardStatistics) dto.DashboardStatisticsResponse {
	return dto.DashboardStatisticsResponse{
		PeriodStart:                  stats.PeriodStart,
		PeriodEnd:                    stats.PeriodEnd,
		TotalCases:                   stats.TotalCases,
		OpenCases:                    stats.OpenCases,
		ResolvedWithinSla:            stats.ResolvedWithinSla,
		RespondedWithinSla:           stats.RespondedWithinSla,
		CurrentlyBreached:            stats.CurrentlyBreached,
		FirstResponseBreaches:        stats.FirstResponseBreaches,
		ResolutionBreaches:           stats.ResolutionBreaches,
		AverageResponseHours:         stats.AverageResponseTime.Hours(),
		AverageResolutionHours:       stats.AverageResolutionTime.Hours(),
		SlaCompliancePercentage:      stats.SlaCompliancePercentage,
		ResponseCompliancePercentage: stats.ResponseCompliancePercentage,
	}
}
