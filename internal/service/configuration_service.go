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
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// ConfigurationService manages SLA configuration rules. Changes never
// retroactively alter deadlines already frozen on tracking records.
type ConfigurationService struct {
	configs    repository.ConfigurationRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ConfigurationInput describes a configuration create/update payload.
// An empty ID creates a new configuration.
type ConfigurationInput struct {
	ID                      string
	Name                    string
	Category                *string
	ResponseDeadlineHours   int
	ResolutionDeadlineHours int
	Priority                int
	IsActive                bool
}

// NewConfigurationService constructs the service.
func NewConfigurationService(configs repository.ConfigurationRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ConfigurationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigurationService{configs: configs, dispatcher: dispatcher, logger: logger}
}

// ListConfigurations returns all configurations including inactive ones.
func (s *ConfigurationService) ListConfigurations(ctx context.Context) ([]domain.SlaConfiguration, error) {
	return s.configs.List(ctx)
}

// GetConfiguration fetches a configuration by id.
func (s *ConfigurationService) GetConfiguration(ctx context.Context, id string) (*domain.SlaConfiguration, error) {
	cfg, err := s.configs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("sla configuration", map[string]any{"id": id})
		}
		return nil, err
	}
	return cfg, nil
}

// SaveConfiguration creates or updates a configuration after validating
// deadline ordering and positivity.
func (s *ConfigurationService) SaveConfiguration(ctx context.Context, input ConfigurationInput) (*domain.SlaConfiguration, error) {
	if err := validateConfigurationInput(input); err != nil {
		return nil, err
	}

	cfg := &domain.SlaConfiguration{
		ID:                      input.ID,
		Name:                    strings.TrimSpace(input.Name),
		Category:                normalizeCategory(input.Category),
		ResponseDeadlineHours:   input.ResponseDeadlineHours,
		ResolutionDeadlineHours: input.ResolutionDeadlineHours,
		Priority:                input.Priority,
		IsActive:                input.IsActive,
	}

	action := "created"
	if cfg.ID == "" {
		if err := s.configs.Create(ctx, cfg); err != nil {
			return nil, err
		}
	} else {
		action = "updated"
		if err := s.configs.Update(ctx, cfg); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewNotFound("sla configuration", map[string]any{"id": cfg.ID})
			}
			return nil, err
		}
	}

	s.logger.Info("sla configuration saved",
		zap.String("id", cfg.ID),
		zap.String("action", action),
		zap.Int("priority", cfg.Priority))
	s.publishChange(ctx, cfg.ID, action)
	return cfg, nil
}

// DeleteConfiguration removes a configuration. Tracking records that were
// computed from it keep their frozen deadlines.
func (s *ConfigurationService) DeleteConfiguration(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("configuration id required", nil)
	}
	if err := s.configs.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("sla configuration", map[string]any{"id": id})
		}
		return err
	}
	s.publishChange(ctx, id, "deleted")
	return nil
}

func validateConfigurationInput(input ConfigurationInput) error {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	if input.ResponseDeadlineHours <= 0 {
		details["response_deadline_hours"] = "must be positive"
	}
	if input.ResolutionDeadlineHours <= 0 {
		details["resolution_deadline_hours"] = "must be positive"
	} else if input.ResponseDeadlineHours > input.ResolutionDeadlineHours {
		details["resolution_deadline_hours"] = "must be greater than or equal to response_deadline_hours"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid sla configuration", details)
	}
	return nil
}

func normalizeCategory(category *string) *string {
	if category == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*category)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (s *ConfigurationService) publishChange(ctx context.Context, configurationID, action string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventConfigurationChanged,
		Timestamp: time.Now(),
		Payload: events.ConfigurationChangedPayload{
			ConfigurationID: configurationID,
			Action:          action,
		},
	})
}
