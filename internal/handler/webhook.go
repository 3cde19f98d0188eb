package handler

import (
	"io"
	"net/http"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/service"
	"minecraft-store/internal/session"

	"github.com/labstack/echo/v4"
)

const maxWebhookBytes = 1 << 20

type WebhookHandler struct {
	webhookService service.WebhookService
	loginService   service.LoginService
	sessions       *session.Store
}

func NewWebhookHandler(webhookService service.WebhookService, loginService service.LoginService, sessions *session.Store) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		loginService:   loginService,
		sessions:       sessions,
	}
}

func (h *WebhookHandler) TebexWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read webhook body")
	}

	res, err := h.webhookService.HandleWebhook(ctx, c.Request().Header, body)
	if err != nil {
		return err
	}

	// Clears the caller's own cookie; the visitor's is dropped by the
	// session middleware once the basket shows up as paid.
	if res.ClearBasket {
		h.sessions.Clear(c)
	}
	return c.JSON(http.StatusOK, res)
}

// VerifyLogin answers the provider's login verification hook.
func (h *WebhookHandler) VerifyLogin(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginVerificationRequest
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return c.JSON(http.StatusBadRequest, dto.LoginVerificationResult{Error: "Missing required parameters"})
	}

	return c.JSON(http.StatusOK, h.loginService.Verify(ctx, req))
}
