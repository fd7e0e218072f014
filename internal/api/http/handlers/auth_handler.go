package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-service/internal/api/dto"
	"github.com/spec-kit/sla-service/internal/auth"
	"github.com/spec-kit/sla-service/internal/config"
	apperrors "github.com/spec-kit/sla-service/pkg/util"
)

// AuthHandler exchanges the shared service credential for scoped JWTs.
type AuthHandler struct {
	tokens *TokenIssuer
}

// TokenIssuer wraps token generation with credential verification.
type TokenIssuer struct {
	manager *auth.TokenManager
	cfg     config.AuthConfig
}

// NewTokenIssuer builds an issuer.
func NewTokenIssuer(manager *auth.TokenManager, cfg config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{manager: manager, cfg: cfg}
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *TokenIssuer) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// IssueToken POST /auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.SubjectID) == "" || req.Credential == "" {
		return apperrors.NewValidationError("subject_id and credential required", nil)
	}
	if !auth.ValidRole(req.Role) {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
	}
	if h.tokens.cfg.ServiceCredentialHash == "" {
		return apperrors.NewUnauthorized("token issuance not configured")
	}
	if err := auth.CompareCredential(h.tokens.cfg.ServiceCredentialHash, req.Credential); err != nil {
		return apperrors.NewUnauthorized("invalid credential")
	}

	token, expiresAt, err := h.tokens.manager.GenerateToken(req.SubjectID, req.Role)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}})
}
