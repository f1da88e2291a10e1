package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/NotSilaev/MrStone/internal/auth/http/dto"
	authUseCase "github.com/NotSilaev/MrStone/internal/auth/usecase"
	"github.com/NotSilaev/MrStone/internal/httputil"
)

// TokenHandler handles HTTP requests for token operations.
type TokenHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(tokenUseCase authUseCase.TokenUseCase, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// VerifyHandler confirms the presented bearer token.
// GET /v1/auth/verify - The authentication middleware has already done the work.
func (h *TokenHandler) VerifyHandler(c *gin.Context) {
	httputil.RespondGin(c, http.StatusOK, "OK", nil)
}

// IssueTokenHandler issues a new bearer token for a user.
// POST /v1/auth/tokens - Requires a valid bearer token.
// Returns 201 Created with the plain token, shown only once.
func (h *TokenHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	input, err := req.ToIssueTokenInput()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssueTokenOutput(output))
}

// RevokeTokenHandler permanently revokes a token.
// DELETE /v1/auth/tokens/:id - Requires a valid bearer token.
// Returns 204 No Content.
func (h *TokenHandler) RevokeTokenHandler(c *gin.Context) {
	tokenID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			errors.New("invalid token ID format: must be a valid UUID"),
			h.logger)
		return
	}

	if err := h.tokenUseCase.Revoke(c.Request.Context(), tokenID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
