package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/dto"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/service"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// TrackingHandler manages tracking record endpoints fed by the
// case-lifecycle system, plus the breached-case listing for admins.
type TrackingHandler struct {
	service *service.TrackingService
}

// NewTrackingHandler constructs handler.
func NewTrackingHandler(trackingService *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{service: trackingService}
}

// Create POST /tracking-records.
func (h *TrackingHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTrackingRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	record, err := h.service.CreateTrackingRecord(c.Context(), service.TrackingRecordInput{
		CaseID:        req.CaseID,
		CaseNumber:    req.CaseNumber,
		CaseType:      req.CaseType,
		StoreID:       req.StoreID,
		StoreName:     req.StoreName,
		CaseCreatedAt: req.CaseCreatedAt,
		Category:      req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": trackingRecordResponse(record)})
}

// Get GET /tracking-records/:caseId.
func (h *TrackingHandler) Get(c *fiber.Ctx) error {
	record, err := h.service.GetTrackingRecord(c.Context(), c.Params("caseId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": trackingRecordResponse(record)})
}

// RecordFirstResponse POST /tracking-records/:caseId/first-response.
func (h *TrackingHandler) RecordFirstResponse(c *fiber.Ctx) error {
	occurredAt, err := parseEventRequest(c)
	if err != nil {
		return err
	}
	record, err := h.service.RecordFirstResponse(c.Context(), c.Params("caseId"), occurredAt)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": trackingRecordResponse(record)})
}

// RecordResolution POST /tracking-records/:caseId/resolution.
func (h *TrackingHandler) RecordResolution(c *fiber.Ctx) error {
	occurredAt, err := parseEventRequest(c)
	if err != nil {
		return err
	}
	record, err := h.service.RecordResolution(c.Context(), c.Params("caseId"), occurredAt)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": trackingRecordResponse(record)})
}

// ListBreached GET /tracking-records/breached.
func (h *TrackingHandler) ListBreached(c *fiber.Ctx) error {
	records, err := h.service.GetBreachedCases(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TrackingRecordResponse, 0, len(records))
	for i := range records {
		items = append(items, trackingRecordResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// TriggerSweep POST /tracking-records/sweep. Intended for the external
// scheduler host; the sweep is idempotent so manual triggers are safe.
func (h *TrackingHandler) TriggerSweep(c *fiber.Ctx) error {
	now := time.Now().UTC()
	flagged, err := h.service.CheckAndUpdateBreaches(c.Context(), now)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SweepResponse{NewlyFlagged: flagged, CheckedAt: now}})
}

func parseEventRequest(c *fiber.Ctx) (time.Time, error) {
	var req dto.RecordEventRequest
	if err := c.BodyParser(&req); err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OccurredAt.IsZero() {
		return time.Time{}, apperrors.NewValidationError("occurred_at required", nil)
	}
	return req.OccurredAt, nil
}

func trackingRecordResponse(rec *domain.SlaTrackingRecord) dto.TrackingRecordResponse {
	return dto.TrackingRecordResponse{
		ID:                     rec.ID,
		CaseID:                 rec.CaseID,
		CaseNumber:             rec.CaseNumber,
		CaseType:               rec.CaseType,
		StoreID:                rec.StoreID,
		StoreName:              rec.StoreName,
		Category:               rec.Category,
		MatchedConfigurationID: rec.MatchedConfigurationID,
		CaseCreatedAt:          rec.CaseCreatedAt,
		FirstResponseDeadline:  rec.FirstResponseDeadline,
		ResolutionDeadline:     rec.ResolutionDeadline,
		FirstRespondedAt:       rec.FirstRespondedAt,
		ResolvedAt:             rec.ResolvedAt,
		FirstResponseBreached:  rec.FirstResponseBreached,
		ResolutionBreached:     rec.ResolutionBreached,
		LastBreachCheckAt:      rec.LastBreachCheckAt,
		CreatedAt:              rec.CreatedAt,
		UpdatedAt:              rec.UpdatedAt,
	}
}
