// Package integration runs the HTTP API end to end against PostgreSQL and MySQL.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NotSilaev/MrStone/internal/app"
	authDomain "github.com/NotSilaev/MrStone/internal/auth/domain"
	authDTO "github.com/NotSilaev/MrStone/internal/auth/http/dto"
	"github.com/NotSilaev/MrStone/internal/config"
	"github.com/NotSilaev/MrStone/internal/testutil"
	userUseCase "github.com/NotSilaev/MrStone/internal/user/usecase"
)

type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	userID    uuid.UUID
	rootToken string
	dbDriver  string
}

func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body any,
	token string,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NoError(t, resp.Body.Close())

	return resp, respBody
}

func setupIntegrationTest(t *testing.T, dbDriver string, rateLimit bool) *integrationTestContext {
	t.Helper()

	testutil.SkipIfNoDB(t, dbDriver)
	gin.SetMode(gin.TestMode)

	var db *sql.DB
	var dsn string
	if dbDriver == "postgres" {
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	}

	cfg := &config.Config{
		DBDriver:              dbDriver,
		DBConnectionString:    dsn,
		DBMaxOpenConnections:  10,
		DBMaxIdleConnections:  5,
		DBConnMaxLifetime:     time.Hour,
		ServerHost:            "localhost",
		ServerPort:            8080,
		LogLevel:              "error",
		CacheDriver:           config.CacheDriverMemory,
		CacheOperationTimeout: time.Second,
		RateLimitEnabled:      rateLimit,
		RateLimitWindow:       time.Minute,
		AuthTokenExpiration:   time.Hour,
	}

	container := app.NewContainer(cfg)

	users, err := container.UserUseCase()
	require.NoError(t, err, "failed to get user use case")
	user, err := users.Create(context.Background(), userUseCase.CreateUserInput{Name: "integration-root"})
	require.NoError(t, err, "failed to create root user")

	tokens, err := container.TokenUseCase()
	require.NoError(t, err, "failed to get token use case")
	issued, err := tokens.Issue(context.Background(), &authDomain.IssueTokenInput{UserID: user.ID})
	require.NoError(t, err, "failed to issue root token")

	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")
	handler := httpSrv.GetHandler()
	require.NotNil(t, handler)

	return &integrationTestContext{
		container: container,
		db:        db,
		server:    httptest.NewServer(handler),
		userID:    user.ID,
		rootToken: issued.PlainToken,
		dbDriver:  dbDriver,
	}
}

func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}
	if ctx.container != nil {
		if err := ctx.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}
	if ctx.db != nil {
		testutil.TeardownDB(t, ctx.db)
	}
}

var drivers = []struct {
	name     string
	dbDriver string
}{
	{"PostgreSQL", "postgres"},
	{"MySQL", "mysql"},
}

func TestIntegration_Health_BasicChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range drivers {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver, false)
			defer teardownIntegrationTest(t, ctx)

			resp, body := ctx.makeRequest(t, http.MethodGet, "/health", nil, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"status":"healthy"}`, string(body))

			resp, body = ctx.makeRequest(t, http.MethodGet, "/ready", nil, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"status":"ready","components":{"database":"ok","cache":"ok"}}`, string(body))
		})
	}
}

func TestIntegration_Auth_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range drivers {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver, false)
			defer teardownIntegrationTest(t, ctx)

			var issued authDTO.IssueTokenResponse

			t.Run("01_VerifyWithoutToken", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/auth/verify", nil, "")
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
				assert.JSONEq(t, `{"status":403,"message":"Invalid auth token","details":null}`, string(body))
			})

			t.Run("02_VerifyWithUnknownToken", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/auth/verify", nil, "not-a-real-token")
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})

			t.Run("03_VerifyWithRootToken", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/auth/verify", nil, ctx.rootToken)
				assert.Equal(t, http.StatusOK, resp.StatusCode)
				assert.JSONEq(t, `{"status":200,"message":"OK","details":null}`, string(body))
			})

			t.Run("04_IssueToken", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/auth/tokens", map[string]any{
					"user_id":            ctx.userID.String(),
					"expires_in_seconds": 3600,
				}, ctx.rootToken)
				require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
				require.NoError(t, json.Unmarshal(body, &issued))
				assert.NotEmpty(t, issued.Token)
				assert.NotNil(t, issued.ExpiresAt)
			})

			t.Run("05_VerifyIssuedToken", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/auth/verify", nil, issued.Token)
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			})

			t.Run("06_RevokeIssuedToken", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodDelete, "/v1/auth/tokens/"+issued.ID, nil, ctx.rootToken)
				assert.Equal(t, http.StatusNoContent, resp.StatusCode)

				resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/auth/tokens/"+issued.ID, nil, ctx.rootToken)
				assert.Equal(t, http.StatusNoContent, resp.StatusCode, "revoking twice is not an error")
			})

			t.Run("07_RevokedTokenIsRejected", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/auth/verify", nil, issued.Token)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})

			t.Run("08_RevokeUnknownToken", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodDelete, "/v1/auth/tokens/"+uuid.NewString(), nil, ctx.rootToken)
				assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			})

			t.Run("09_CreateUser", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/users", map[string]string{"name": "second-user"}, ctx.rootToken)
				assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

				resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/users", map[string]string{"name": "second-user"}, ctx.rootToken)
				assert.Equal(t, http.StatusConflict, resp.StatusCode)
			})

			t.Run("10_CleanupKeepsValidTokens", func(t *testing.T) {
				tokens, err := ctx.container.TokenUseCase()
				require.NoError(t, err)

				count, err := tokens.CleanupExpired(context.Background(), 0, true)
				require.NoError(t, err)
				assert.Equal(t, int64(1), count, "only the revoked token is eligible")
				assert.Equal(t, 2, testutil.CountRows(t, ctx.db, "auth_tokens"))
			})
		})
	}
}

func TestIntegration_RateLimit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range drivers {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver, true)
			defer teardownIntegrationTest(t, ctx)

			// The first tier admits 50 requests with no minimum spacing.
			for i := range 50 {
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/health", nil, "")
				require.Equal(t, http.StatusOK, resp.StatusCode, "request %d", i+1)
			}

			resp, body := ctx.makeRequest(t, http.MethodGet, "/health", nil, "")
			assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
			assert.JSONEq(t, `{"status":429,"message":"Too many requests","details":null}`, string(body))

			time.Sleep(300 * time.Millisecond)
			resp, _ = ctx.makeRequest(t, http.MethodGet, "/health", nil, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}
