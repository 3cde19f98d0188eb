package handler

import (
	"net/http"
	"sort"
	"strconv"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/model"
	"minecraft-store/internal/service"
	"minecraft-store/internal/session"

	"github.com/labstack/echo/v4"
)

const catalogCacheControl = "public, s-maxage=300, stale-while-revalidate=600"

type StoreHandler struct {
	catalogService service.CatalogService
	basketService  service.BasketService
}

func NewStoreHandler(catalogService service.CatalogService, basketService service.BasketService) *StoreHandler {
	return &StoreHandler{
		catalogService: catalogService,
		basketService:  basketService,
	}
}

// Catalog returns every server's storefront. It never fails: the catalog
// service falls back to stale or mock data.
func (h *StoreHandler) Catalog(c echo.Context) error {
	ctx := c.Request().Context()

	catalog := h.catalogService.Catalog(ctx)

	c.Response().Header().Set(echo.HeaderCacheControl, catalogCacheControl)
	return c.JSON(http.StatusOK, catalog)
}

func (h *StoreHandler) GetPackage(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid package id")
	}

	pkg, ok := h.catalogService.FindPackage(ctx, id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "package not found")
	}
	return c.JSON(http.StatusOK, pkg)
}

type storePage struct {
	Servers []*model.Storefront
	Basket  *dto.BasketView
	Error   string
}

func (h *StoreHandler) Page(c echo.Context) error {
	ctx := c.Request().Context()
	st := session.FromContext(c)

	catalog := h.catalogService.Catalog(ctx)
	servers := make([]*model.Storefront, 0, len(catalog))
	for _, sf := range catalog {
		servers = append(servers, sf)
	}
	sort.Slice(servers, func(i, j int) bool { return servers[i].Server < servers[j].Server })

	page := storePage{
		Servers: servers,
		Error:   storeErrorMessage(c.QueryParam("error")),
	}
	if st.BasketIdent != "" || len(st.Mirror.Lines()) > 0 {
		page.Basket = h.basketService.Basket(ctx, st).Basket
	}
	return c.Render(http.StatusOK, "store.html", page)
}

func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
