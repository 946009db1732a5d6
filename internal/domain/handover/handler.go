package handover

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
	"github.com/clinicdesk/frontdesk/internal/platform/auth"
)

type Handler struct {
	svc *Service
	log zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/handovers", h.ListHandovers)
	api.POST("/handovers", h.CreateHandover)
	api.GET("/handovers/export", h.ExportHandovers)
	api.GET("/handovers/export.xlsx", h.ExportHandoversXLSX)
	api.DELETE("/handovers/clear", h.ClearHandovers, auth.RequireAdmin())
	api.GET("/handovers/:id", h.GetHandover)
	api.PUT("/handovers/:id", h.UpdateHandover)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateHandover(c echo.Context) error {
	var in HandoverInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ho, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, ho)
}

func (h *Handler) ListHandovers(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetHandover(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	ho, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, ho)
}

func (h *Handler) UpdateHandover(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in HandoverInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ho, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, ho)
}

// ExportHandovers always answers 200; failures are reported in the body
// with success=false.
func (h *Handler) ExportHandovers(c echo.Context) error {
	res, err := h.svc.Export(c.Request().Context())
	if err != nil {
		h.log.Error().Err(err).Msg("handover export failed")
		return c.JSON(http.StatusOK, ExportResult{
			Data:    []ExportRow{},
			Total:   0,
			Success: false,
			Error:   fmt.Sprint(apperr.ToHTTP(err).Message),
		})
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ExportHandoversXLSX(c echo.Context) error {
	data, err := h.svc.ExportXLSX(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=handover-log.xlsx")
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) ClearHandovers(c echo.Context) error {
	res, err := h.svc.ClearAll(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, res)
}
