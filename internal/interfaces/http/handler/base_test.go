package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farmacia/backend/internal/domain/shared"
	"github.com/farmacia/backend/internal/interfaces/http/dto"
	"github.com/farmacia/backend/internal/interfaces/http/middleware"
	"github.com/farmacia/backend/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// setupTestRouter returns an engine that authenticates every request as actor
func setupTestRouter(actor *shared.Actor) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.RequestIDContextKey, "req-test")
		if actor != nil {
			c.Set(middleware.ActorKey, *actor)
		}
		c.Next()
	})
	return router
}

func actorPtr(a shared.Actor) *shared.Actor {
	return &a
}

func performRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) dto.Response {
	t.Helper()
	assert.Equal(t, status, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, code, resp.Error.Code)
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedReason string
	}{
		{"not found", shared.NewNotFoundError("Order"), http.StatusNotFound, dto.ErrCodeNotFound, "NOT_FOUND"},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, dto.ErrCodeForbidden, "FORBIDDEN"},
		{"insufficient stock", shared.NewInsufficientStockError("Paracetamol", 1, 2), http.StatusBadRequest, dto.ErrCodeInsufficientStock, "INSUFFICIENT_STOCK"},
		{"order not pending", shared.NewDomainError("ORDER_NOT_PENDING", "Order is not pending"), http.StatusBadRequest, dto.ErrCodeConflict, "ORDER_NOT_PENDING"},
		{"empty order", shared.NewValidationError("EMPTY_ORDER", "Order has no items"), http.StatusBadRequest, dto.ErrCodeValidation, "EMPTY_ORDER"},
		{"wrapped domain error", fmt.Errorf("confirm: %w", shared.ErrConflict), http.StatusBadRequest, dto.ErrCodeConflict, "CONFLICT"},
		{"unknown domain code", shared.NewDomainError("SOMETHING_NEW", "odd"), http.StatusInternalServerError, dto.ErrCodeInternal, "SOMETHING_NEW"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			router := setupTestRouter(nil)
			router.GET("/", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := performRequest(router, http.MethodGet, "/", nil)

			resp := assertErrorCode(t, w, tt.expectedStatus, tt.expectedCode)
			assert.Equal(t, "req-test", resp.Error.RequestID)
			details, ok := resp.Error.Details.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.expectedReason, details["reason"])
		})
	}
}

func TestBaseHandler_HandleError_HidesInternalErrors(t *testing.T) {
	h := &BaseHandler{}
	router := setupTestRouter(nil)
	router.GET("/", func(c *gin.Context) { h.HandleError(c, errors.New("pq: connection refused")) })

	w := performRequest(router, http.MethodGet, "/", nil)

	resp := assertErrorCode(t, w, http.StatusInternalServerError, dto.ErrCodeInternal)
	assert.NotContains(t, resp.Error.Message, "pq")
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	h := &BaseHandler{}
	router := setupTestRouter(nil)
	router.GET("/", func(c *gin.Context) {
		h.HandleError(c, nil)
		c.Status(http.StatusTeapot)
	})

	w := performRequest(router, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestBaseHandler_SuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	router := setupTestRouter(nil)
	router.GET("/", func(c *gin.Context) { h.SuccessWithMeta(c, []string{"a", "b"}, 45, 2, 20) })

	w := performRequest(router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestBaseHandler_Actor(t *testing.T) {
	h := &BaseHandler{}

	t.Run("present", func(t *testing.T) {
		router := setupTestRouter(actorPtr(testutil.CustomerActor()))
		router.GET("/", func(c *gin.Context) {
			actor, ok := h.Actor(c)
			require.True(t, ok)
			h.Success(c, actor.UserID)
		})

		w := performRequest(router, http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		router := setupTestRouter(nil)
		router.GET("/", func(c *gin.Context) {
			_, ok := h.Actor(c)
			assert.False(t, ok)
		})

		w := performRequest(router, http.MethodGet, "/", nil)
		assertErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
	})
}

func TestBaseHandler_ParamID(t *testing.T) {
	h := &BaseHandler{}
	id := uuid.New()
	router := setupTestRouter(nil)
	router.GET("/things/:id", func(c *gin.Context) {
		parsed, ok := h.ParamID(c, "id")
		if !ok {
			return
		}
		h.Success(c, parsed)
	})

	w := performRequest(router, http.MethodGet, "/things/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), decodeResponse(t, w).Data)

	w = performRequest(router, http.MethodGet, "/things/not-a-uuid", nil)
	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
}

func TestBaseHandler_BindJSON_Malformed(t *testing.T) {
	h := &BaseHandler{}
	router := setupTestRouter(nil)
	router.POST("/", func(c *gin.Context) {
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if !h.BindJSON(c, &req) {
			return
		}
		h.Success(c, req.Name)
	})

	w := performRequest(router, http.MethodPost, "/", "{not json")
	assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)

	w = performRequest(router, http.MethodPost, "/", map[string]string{})
	resp := assertErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	assert.NotNil(t, resp.Error.Details)
}
