package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/dto"
	"github.com/spec-kit/sla-service/internal/domain"
	"github.com/spec-kit/sla-service/internal/service"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// ConfigurationsHandler manages SLA configuration endpoints.
type ConfigurationsHandler struct {
	service *service.ConfigurationService
}

// NewConfigurationsHandler constructs handler.
func NewConfigurationsHandler(configurationService *service.ConfigurationService) *ConfigurationsHandler {
	return &ConfigurationsHandler{service: configurationService}
}

// List GET /configurations.
func (h *ConfigurationsHandler) List(c *fiber.Ctx) error {
	configs, err := h.service.ListConfigurations(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.ConfigurationResponse, 0, len(configs))
	for i := range configs {
		items = append(items, configurationResponse(&configs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /configurations/:id.
func (h *ConfigurationsHandler) Get(c *fiber.Ctx) error {
	cfg, err := h.service.GetConfiguration(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": configurationResponse(cfg)})
}

// Create POST /configurations.
func (h *ConfigurationsHandler) Create(c *fiber.Ctx) error {
	input, err := parseConfigurationRequest(c)
	if err != nil {
		return err
	}
	cfg, err := h.service.SaveConfiguration(c.Context(), *input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": configurationResponse(cfg)})
}

// Update PUT /configurations/:id.
func (h *ConfigurationsHandler) Update(c *fiber.Ctx) error {
	input, err := parseConfigurationRequest(c)
	if err != nil {
		return err
	}
	input.ID = c.Params("id")
	cfg, err := h.service.SaveConfiguration(c.Context(), *input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": configurationResponse(cfg)})
}

// Delete DELETE /configurations/:id.
func (h *ConfigurationsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteConfiguration(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseConfigurationRequest(c *fiber.Ctx) (*service.ConfigurationInput, error) {
	var req dto.SaveConfigurationRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	return &service.ConfigurationInput{
		Name:                    req.Name,
		Category:                req.Category,
		ResponseDeadlineHours:   req.ResponseDeadlineHours,
		ResolutionDeadlineHours: req.ResolutionDeadlineHours,
		Priority:                req.Priority,
		IsActive:                req.IsActive,
	}, nil
}

func configurationResponse(cfg *domain.SlaConfiguration) dto.ConfigurationResponse {
	return dto.ConfigurationResponse{
		ID:                      cfg.ID,
		Name:                    cfg.Name,
		Category:                cfg.Category,
		ResponseDeadlineHours:   cfg.ResponseDeadlineHours,
		ResolutionDeadlineHours: cfg.ResolutionDeadlineHours,
		Priority:                cfg.Priority,
		IsActive:                cfg.IsActive,
		CreatedAt:               cfg.CreatedAt,
		UpdatedAt:               cfg.UpdatedAt,
	}
}
