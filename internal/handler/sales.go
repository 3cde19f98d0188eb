package handler

import (
	"net/http"
	"strconv"

	"minecraft-store/internal/service"

	"github.com/labstack/echo/v4"
)

type SalesHandler struct {
	salesService service.SalesService
}

func NewSalesHandler(salesService service.SalesService) *SalesHandler {
	return &SalesHandler{
		salesService: salesService,
	}
}

func (h *SalesHandler) RecentSales(c echo.Context) error {
	ctx := c.Request().Context()

	sales, err := h.salesService.RecentSales(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sales)
}

func (h *SalesHandler) Payments(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	payments, err := h.salesService.Payments(ctx, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}
