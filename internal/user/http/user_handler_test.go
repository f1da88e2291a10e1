package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/NotSilaev/MrStone/internal/httputil"
	"github.com/NotSilaev/MrStone/internal/user/domain"
	"github.com/NotSilaev/MrStone/internal/user/http/dto"
	"github.com/NotSilaev/MrStone/internal/user/usecase"
	"github.com/NotSilaev/MrStone/internal/user/usecase/mocks"
)

func setupUserRouter(t *testing.T) (*gin.Engine, *mocks.MockUserUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	useCase := &mocks.MockUserUseCase{}
	handler := NewUserHandler(useCase, slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	router.POST("/v1/users", handler.CreateHandler)
	return router, useCase
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUserHandler_CreateHandler(t *testing.T) {
	t.Run("Success_Created", func(t *testing.T) {
		router, useCase := setupUserRouter(t)
		user := &domain.User{
			ID:        uuid.Must(uuid.NewV7()),
			Name:      "store-admin",
			CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		}
		useCase.On("Create", mock.Anything, usecase.CreateUserInput{Name: "store-admin"}).Return(user, nil).Once()

		w := postJSON(router, `{"name":"store-admin"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response dto.UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, dto.ToUserResponse(user), response)
		useCase.AssertExpectations(t)
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		router, _ := setupUserRouter(t)

		w := postJSON(router, `{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_InvalidName", func(t *testing.T) {
		router, useCase := setupUserRouter(t)

		w := postJSON(router, `{"name":"   "}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		useCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		router, useCase := setupUserRouter(t)
		useCase.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrUserAlreadyExists).Once()

		w := postJSON(router, `{"name":"store-admin"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Errors, 1)
		assert.Equal(t, "Conflict", response.Errors[0].Message)
	})
}
