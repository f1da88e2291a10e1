package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authUseCase "github.com/NotSilaev/MrStone/internal/auth/usecase"
	"github.com/NotSilaev/MrStone/internal/httputil"
)

const bearerPrefix = "bearer "

// AuthenticationMiddleware accepts requests carrying a valid bearer token in the
// Authorization header and rejects everything else.
//
// The middleware:
//  1. Extracts the token from "Authorization: Bearer <token>" (case-insensitive scheme)
//  2. Verifies it with tokenUseCase.Authenticate()
//  3. Stores the matched token record in the request context (see GetToken)
//
// Every failure, a missing header or an unreachable credential store included, answers
// 403 with {"status":403,"message":"Invalid auth token","details":null}.
//
// Usage:
//
//	protected := router.Group("/v1")
//	protected.Use(AuthenticationMiddleware(tokenUseCase, logger))
func AuthenticationMiddleware(tokenUseCase authUseCase.TokenUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		plainToken, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			rejectInvalidToken(c)
			return
		}

		token, err := tokenUseCase.Authenticate(c.Request.Context(), plainToken)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			rejectInvalidToken(c)
			return
		}

		ctx := WithToken(c.Request.Context(), token)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("token_id", token.ID.String()),
			slog.String("user_id", token.UserID.String()))

		c.Next()
	}
}

// bearerToken extracts the credential from an Authorization header value.
func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

func rejectInvalidToken(c *gin.Context) {
	httputil.RespondGin(c, http.StatusForbidden, "Invalid auth token", nil)
	c.Abort()
}
