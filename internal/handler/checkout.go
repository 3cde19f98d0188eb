package handler

import (
	"errors"
	"net/http"
	"time"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/service"
	"minecraft-store/internal/session"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
	sessions        *session.Store
	logger          *zap.Logger
}

func NewCheckoutHandler(checkoutService service.CheckoutService, sessions *session.Store, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		sessions:        sessions,
		logger:          logger,
	}
}

// BuyNow checks out a single package, directly when the basket flow fails.
func (h *CheckoutHandler) BuyNow(c echo.Context) error {
	ctx := c.Request().Context()
	st := session.FromContext(c)

	var req dto.CheckoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.checkoutService.BuyNow(ctx, st, req, c.RealIP())
	if err != nil {
		return err
	}
	if err := h.sessions.Save(c, st); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CheckoutHandler) DirectPurchase(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.DirectPurchaseRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.checkoutService.DirectPurchase(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Status is the JSON completion signal.
func (h *CheckoutHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()
	st := session.FromContext(c)

	res, err := h.checkoutService.Complete(ctx, st, c.QueryParam("txn_id"))
	if err != nil {
		return err
	}
	h.sessions.Clear(c)
	return c.JSON(http.StatusOK, res)
}

// SubmitCheckout is the form variant of checkout: it redirects to the
// provider, or back to the store with an error code.
func (h *CheckoutHandler) SubmitCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	st := session.FromContext(c)

	res, err := h.checkoutService.Checkout(ctx, st)
	if errors.Is(err, service.ErrNoBasket) {
		return c.Redirect(http.StatusSeeOther, "/store?error=no-basket")
	}
	if err != nil {
		h.logger.Warn("checkout failed", zap.String("basket", st.BasketIdent), zap.Error(err))
		return c.Redirect(http.StatusSeeOther, "/store?error=checkout-failed")
	}

	if err := h.sessions.Save(c, st); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, res.URL)
}

type confirmationPage struct {
	TransactionID string
	Date          string
}

// Confirmed is the provider's return page after payment.
func (h *CheckoutHandler) Confirmed(c echo.Context) error {
	txnID := c.QueryParam("txn_id")
	if txnID == "" {
		return c.Redirect(http.StatusFound, "/store")
	}
	return h.complete(c, txnID)
}

// Complete is the provider's complete_url. The transaction id is optional
// here; the basket ident stands in for it.
func (h *CheckoutHandler) Complete(c echo.Context) error {
	txnID := c.QueryParam("txn_id")
	if txnID == "" {
		txnID = session.FromContext(c).BasketIdent
	}
	if txnID == "" {
		h.sessions.Clear(c)
		return c.Render(http.StatusOK, "complete.html", confirmationPage{Date: time.Now().Format("2006-01-02")})
	}
	return h.complete(c, txnID)
}

func (h *CheckoutHandler) complete(c echo.Context, txnID string) error {
	ctx := c.Request().Context()
	st := session.FromContext(c)

	res, err := h.checkoutService.Complete(ctx, st, txnID)
	if err != nil {
		return err
	}
	h.sessions.Clear(c)

	date := res.Transaction.Timestamp
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		date = t.Format("2006-01-02")
	}
	return c.Render(http.StatusOK, "complete.html", confirmationPage{
		TransactionID: res.Transaction.ID,
		Date:          date,
	})
}

func storeErrorMessage(code string) string {
	switch code {
	case "":
		return ""
	case "no-basket":
		return "Your basket is empty."
	case "checkout-failed":
		return "Checkout could not be started. Please try again."
	}
	return "Something went wrong. Please try again."
}
