package account

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/frontdesk/internal/platform/apperr"
	"github.com/clinicdesk/frontdesk/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the form login on root and everything else on api.
func (h *Handler) RegisterRoutes(root *echo.Group, api *echo.Group) {
	root.POST("/token", h.TokenForm)

	api.POST("/login", h.Login)
	api.POST("/register", h.Register)
	api.GET("/me", h.Me)
	api.PUT("/profile", h.UpdateProfile)
	api.GET("/users/public", h.ListUsersPublic)

	admin := auth.RequireAdmin()
	api.POST("/users", h.CreateUser, admin)
	api.GET("/users", h.ListUsers, admin)
	api.GET("/users/:id", h.GetUser, admin)
	api.PUT("/users/:id", h.UpdateUser, admin)
	api.DELETE("/users/:id", h.DeleteUser, admin)
}

// PublicAccount is the staff-picker view of an account.
type PublicAccount struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func currentIdentity(c echo.Context) (*auth.Identity, error) {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, auth.ErrInvalidToken.Message)
	}
	return ident, nil
}

func (h *Handler) login(c echo.Context) error {
	var creds Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	tok, err := h.svc.Login(c.Request().Context(), creds.Username, creds.Password)
	if err != nil {
		he := apperr.ToHTTP(err)
		if he.Code == http.StatusUnauthorized {
			c.Response().Header().Set("WWW-Authenticate", "Bearer")
		}
		return he
	}
	return c.JSON(http.StatusOK, tok)
}

// TokenForm accepts application/x-www-form-urlencoded credentials.
func (h *Handler) TokenForm(c echo.Context) error { return h.login(c) }

// Login accepts JSON credentials.
func (h *Handler) Login(c echo.Context) error { return h.login(c) }

func (h *Handler) Register(c echo.Context) error {
	var in AccountInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Me(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), ident.UserID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var in ProfileInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.UpdateProfile(c.Request().Context(), ident.UserID, in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListUsersPublic(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	out := make([]PublicAccount, 0, len(items))
	for _, a := range items {
		if !a.IsActive {
			continue
		}
		out = append(out, PublicAccount{ID: a.ID, Name: a.Name, Position: a.Position})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateUser(c echo.Context) error {
	var in AccountInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.CreateUser(c.Request().Context(), in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListUsers(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetUser(c echo.Context) error {
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

func (h *Handler) UpdateUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in AccountInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.UpdateUser(c.Request().Context(), id, in)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteUser(c echo.Context) error {
	ident, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), ident.UserID, id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
