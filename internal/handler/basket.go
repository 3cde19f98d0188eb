package handler

import (
	"net/http"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/service"
	"minecraft-store/internal/session"

	"github.com/labstack/echo/v4"
)

type BasketHandler struct {
	basketService   service.BasketService
	checkoutService service.CheckoutService
	sessions        *session.Store
}

func NewBasketHandler(basketService service.BasketService, checkoutService service.CheckoutService, sessions *session.Store) *BasketHandler {
	return &BasketHandler{
		basketService:   basketService,
		checkoutService: checkoutService,
		sessions:        sessions,
	}
}

// respond persists the session before writing, so the cookies always match
// the body.
func (h *BasketHandler) respond(c echo.Context, st *session.State, body any) error {
	if err := h.sessions.Save(c, st); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, body)
}

func (h *BasketHandler) GetBasket(c echo.Context) error {
	ctx := c.Request().Context()
	st := session.FromContext(c)

	return h.respond(c, st, h.basketService.Basket(ctx, st))
}

func (h *BasketHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	st := session.FromContext(c)

	var req dto.AddItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.basketService.AddItem(ctx, st, req.PackageID, req.Username, c.RealIP())
	if err != nil {
		return err
	}
	return h.respond(c, st, res)
}

func (h *BasketHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	st := session.FromContext(c)

	var req dto.RemoveItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.basketService.RemoveItem(ctx, st, req.PackageID)
	if err != nil {
		return err
	}
	return h.respond(c, st, res)
}

func (h *BasketHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	st := session.FromContext(c)

	var req dto.UpdateQuantityRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.basketService.UpdateQuantity(ctx, st, req.PackageID, req.Delta)
	if err != nil {
		return err
	}
	return h.respond(c, st, res)
}

func (h *BasketHandler) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	st := session.FromContext(c)

	var req dto.SetQuantityRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.basketService.SetQuantity(ctx, st, req.PackageID, req.Quantity)
	if err != nil {
		return err
	}
	return h.respond(c, st, res)
}

func (h *BasketHandler) AuthLinks(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.basketService.AuthLinks(ctx, session.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *BasketHandler) ApplyCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	st := session.FromContext(c)

	var req dto.CouponRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.basketService.ApplyCoupon(ctx, st, req.Code)
	if err != nil {
		return err
	}
	return h.respond(c, st, res)
}

// Checkout hands out the payment URL. The basket cookie stays until a
// completion signal arrives.
func (h *BasketHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	st := session.FromContext(c)

	res, err := h.checkoutService.Checkout(ctx, st)
	if err != nil {
		return err
	}
	return h.respond(c, st, res)
}

func (h *BasketHandler) Cancel(c echo.Context) error {
	st := session.FromContext(c)

	h.checkoutService.Cancel(st)
	h.sessions.Clear(c)
	return c.JSON(http.StatusOK, dto.Result{Success: true, Message: "Basket cleared"})
}
