package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/repository"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

func strPtr(s string) *string { return &s }

func newConfigurationService(t *testing.T) *ConfigurationService {
	t.Helper()
	return NewConfigurationService(repository.NewMemoryConfigurationRepository(), events.NewInMemoryDispatcher(), nil)
}

func TestSaveConfiguration_Create(t *testing.T) {
	ctx := context.Background()
	svc := newConfigurationService(t)

	cfg, err := svc.SaveConfiguration(ctx, ConfigurationInput{
		Name:                    "returns fast lane",
		Category:                strPtr("RETURN"),
		ResponseDeadlineHours:   4,
		ResolutionDeadlineHours: 24,
		Priority:                10,
		IsActive:                true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ID)
	require.NotNil(t, cfg.Category)
	assert.Equal(t, "RETURN", *cfg.Category)
	assert.False(t, cfg.IsGlobal())
}

func TestSaveConfiguration_Update(t *testing.T) {
	ctx := context.Background()
	svc := newConfigurationService(t)

	created, err := svc.SaveConfiguration(ctx, ConfigurationInput{
		Name:                    "default",
		ResponseDeadlineHours:   24,
		ResolutionDeadlineHours: 72,
		IsActive:                true,
	})
	require.NoError(t, err)

	updated, err := svc.SaveConfiguration(ctx, ConfigurationInput{
		ID:                      created.ID,
		Name:                    "default",
		ResponseDeadlineHours:   12,
		ResolutionDeadlineHours: 48,
		Priority:                5,
		IsActive:                false,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 12, updated.ResponseDeadlineHours)
	assert.Equal(t, 5, updated.Priority)
	assert.False(t, updated.IsActive)
}

func TestSaveConfiguration_UpdateUnknownID(t *testing.T) {
	ctx := context.Background()
	svc := newConfigurationService(t)

	_, err := svc.SaveConfiguration(ctx, ConfigurationInput{
		ID:                      "missing",
		Name:                    "ghost",
		ResponseDeadlineHours:   1,
		ResolutionDeadlineHours: 2,
	})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestSaveConfiguration_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newConfigurationService(t)

	cases := []struct {
		name  string
		input ConfigurationInput
		field string
	}{
		{
			name:  "missing name",
			input: ConfigurationInput{ResponseDeadlineHours: 4, ResolutionDeadlineHours: 24},
			field: "name",
		},
		{
			name:  "zero response hours",
			input: ConfigurationInput{Name: "x", ResponseDeadlineHours: 0, ResolutionDeadlineHours: 24},
			field: "response_deadline_hours",
		},
		{
			name:  "negative resolution hours",
			input: ConfigurationInput{Name: "x", ResponseDeadlineHours: 4, ResolutionDeadlineHours: -1},
			field: "resolution_deadline_hours",
		},
		{
			name:  "resolution shorter than response",
			input: ConfigurationInput{Name: "x", ResponseDeadlineHours: 48, ResolutionDeadlineHours: 24},
			field: "resolution_deadline_hours",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SaveConfiguration(ctx, tc.input)
			require.Error(t, err)
			domainErr := apperrors.ToDomainError(err)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			assert.Contains(t, domainErr.Details, tc.field)
		})
	}
}

func TestSaveConfiguration_NormalizesCategory(t *testing.T) {
	ctx := context.Background()
	svc := newConfigurationService(t)

	cfg, err := svc.SaveConfiguration(ctx, ConfigurationInput{
		Name:                    "blank category becomes global",
		Category:                strPtr("   "),
		ResponseDeadlineHours:   4,
		ResolutionDeadlineHours: 24,
		IsActive:                true,
	})
	require.NoError(t, err)
	assert.Nil(t, cfg.Category)
	assert.True(t, cfg.IsGlobal())

	cfg, err = svc.SaveConfiguration(ctx, ConfigurationInput{
		Name:                    "trimmed category",
		Category:                strPtr("  DISPUTE  "),
		ResponseDeadlineHours:   4,
		ResolutionDeadlineHours: 24,
		IsActive:                true,
	})
	require.NoError(t, err)
	require.NotNil(t, cfg.Category)
	assert.Equal(t, "DISPUTE", *cfg.Category)
}

func TestDeleteConfiguration(t *testing.T) {
	ctx := context.Background()
	svc := newConfigurationService(t)

	cfg, err := svc.SaveConfiguration(ctx, ConfigurationInput{
		Name:                    "to delete",
		ResponseDeadlineHours:   4,
		ResolutionDeadlineHours: 24,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteConfiguration(ctx, cfg.ID))

	_, err = svc.GetConfiguration(ctx, cfg.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)

	err = svc.DeleteConfiguration(ctx, cfg.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestListConfigurations_IncludesInactive(t *testing.T) {
	ctx := context.Background()
	svc := newConfigurationService(t)

	_, err := svc.SaveConfiguration(ctx, ConfigurationInput{
		Name:                    "active",
		ResponseDeadlineHours:   4,
		ResolutionDeadlineHours: 24,
		IsActive:                true,
	})
	require.NoError(t, err)
	_, err = svc.SaveConfiguration(ctx, ConfigurationInput{
		Name:                    "inactive",
		ResponseDeadlineHours:   4,
		ResolutionDeadlineHours: 24,
		IsActive:                false,
	})
	require.NoError(t, err)

	all, err := svc.ListConfigurations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
