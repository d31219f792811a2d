package audit

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthtech/hms/internal/platform/auth"
	"github.com/healthtech/hms/internal/platform/policy"
	"github.com/healthtech/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole(policy.RoleAdmin))
	read.GET("/audit-logs", h.ListAuditLogs)
	read.GET("/audit-logs/:id", h.GetAuditLog)
}

func (h *Handler) GetAuditLog(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.svc.GetAuditLog(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "audit log not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) ListAuditLogs(c echo.Context) error {
	pg := pagination.FromContext(c)

	params := map[string]string{}
	for _, key := range []string{"action", "path"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	if v := c.QueryParam("status"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
		}
		params["status"] = v
	}
	if v := c.QueryParam("user"); v != "" {
		if _, err := uuid.Parse(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user filter")
		}
		params["user"] = v
	}

	items, total, err := h.svc.SearchAuditLogs(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
