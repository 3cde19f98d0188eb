package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"minecraft-store/internal/client"
	"minecraft-store/internal/dto"
	"minecraft-store/internal/service"
	"minecraft-store/internal/session"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{name: "no basket", err: fmt.Errorf("checkout: %w", service.ErrNoBasket), status: http.StatusBadRequest, msg: "no basket for this session"},
		{name: "username", err: service.ErrUsernameRequired, status: http.StatusUnauthorized, msg: "username is required"},
		{name: "signature", err: service.ErrInvalidSignature, status: http.StatusUnauthorized, msg: "invalid webhook signature"},
		{name: "item", err: service.ErrItemNotFound, status: http.StatusNotFound, msg: "item is not in the basket"},
		{name: "stage", err: fmt.Errorf("%w: none on checkout", session.ErrInvalidTransition), status: http.StatusBadRequest, msg: "invalid basket stage transition"},
		{name: "provider 5xx", err: fmt.Errorf("get checkout url: %w", &client.APIError{StatusCode: 503}), status: http.StatusBadGateway, msg: providerDownMessage},
		{name: "provider 4xx", err: &client.APIError{StatusCode: 422}, status: http.StatusBadGateway, msg: "The store rejected the request."},
		{name: "unreachable", err: fmt.Errorf("%w: dial tcp", client.ErrUnavailable), status: http.StatusBadGateway, msg: providerDownMessage},
		{name: "echo error", err: echo.NewHTTPError(http.StatusNotFound, "package not found"), status: http.StatusNotFound, msg: "package not found"},
		{name: "unknown", err: errors.New("disk on fire"), status: http.StatusInternalServerError, msg: "Internal server error"},
	}

	h := HTTPErrorHandler(zap.NewNop())
	e := echo.New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/basket", nil), rec)

			h(tt.err, c)

			assert.Equal(t, tt.status, rec.Code)
			var res dto.Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.False(t, res.Success)
			assert.Equal(t, tt.msg, res.Error)
		})
	}
}
