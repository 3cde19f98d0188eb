package handler

import (
	"errors"
	"net/http"

	"minecraft-store/internal/client"
	"minecraft-store/internal/dto"
	"minecraft-store/internal/service"
	"minecraft-store/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const providerDownMessage = "The store is temporarily unavailable. Please try again shortly."

// HTTPErrorHandler turns every error that reaches echo into the
// {success:false, error} envelope.
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, msg := classify(err)
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, dto.Result{Success: false, Error: msg})
		}
		if err != nil {
			logger.Error("write error response", zap.Error(err))
		}
	}
}

func classify(err error) (int, string) {
	var (
		httpErr   *echo.HTTPError
		apiErr    *client.APIError
		validErrs validator.ValidationErrors
	)

	switch {
	case errors.As(err, &httpErr):
		msg := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		}
		return httpErr.Code, msg
	case errors.As(err, &validErrs):
		return http.StatusBadRequest, validErrs.Error()
	case errors.Is(err, service.ErrUsernameRequired),
		errors.Is(err, service.ErrInvalidSignature):
		return http.StatusUnauthorized, rootMessage(err)
	case errors.Is(err, service.ErrItemNotFound):
		return http.StatusNotFound, rootMessage(err)
	case errors.Is(err, service.ErrNoBasket),
		errors.Is(err, service.ErrPackageRequired),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrTransactionRequired),
		errors.Is(err, service.ErrMalformedWebhook),
		errors.Is(err, session.ErrInvalidTransition):
		return http.StatusBadRequest, rootMessage(err)
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return http.StatusBadGateway, "The store rejected the request."
		}
		return http.StatusBadGateway, providerDownMessage
	case errors.Is(err, client.ErrUnavailable),
		errors.Is(err, client.ErrMalformedResponse):
		return http.StatusBadGateway, providerDownMessage
	}
	return http.StatusInternalServerError, "Internal server error"
}

// rootMessage is the sentinel's own text, without the wrapping context.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		service.ErrUsernameRequired,
		service.ErrInvalidSignature,
		service.ErrItemNotFound,
		service.ErrNoBasket,
		service.ErrPackageRequired,
		service.ErrInvalidQuantity,
		service.ErrTransactionRequired,
		service.ErrMalformedWebhook,
		session.ErrInvalidTransition,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
