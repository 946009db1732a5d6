package asset

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/assets", h.ListAssets)
	api.POST("/assets", h.CreateAsset)
	api.GET("/assets/:id", h.GetAsset)
	api.PUT("/assets/:id", h.UpdateAsset)
	api.DELETE("/assets/:id", h.DeleteAsset)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateAsset(c echo.Context) error {
	var in AssetInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAssets(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context(), Filter{
		AssetType: c.QueryParam("asset_type"),
		Status:    c.QueryParam("status"),
		Search:    c.QueryParam("search"),
	})
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if items == nil {
		items = []*Asset{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetAsset(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateAsset(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var patch AssetPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAsset(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Asset deleted successfully"})
}
