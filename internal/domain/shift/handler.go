package shift

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

// RegisterRoutes mounts the shift endpoints. They are reachable without a
// token; see auth.AuthSkipper.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/shifts", h.CreateShift)
	api.POST("/shifts/bulk", h.CreateShifts)
	api.GET("/shifts", h.ListShifts)
	api.GET("/shifts/:id", h.GetShift)
	api.PUT("/shifts/:id", h.UpdateShift)
	api.DELETE("/shifts/:id", h.DeleteShift)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateShift(c echo.Context) error {
	var in ShiftInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) CreateShifts(c echo.Context) error {
	var in BulkInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, err := h.svc.CreateBatch(c.Request().Context(), in.Shifts)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListShifts(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context(), c.QueryParam("date"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if items == nil {
		items = []*Shift{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetShift(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	s, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) UpdateShift(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in ShiftInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) DeleteShift(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Shift deleted successfully"})
}
