package clinicalrecord

import (
	"errors"
	"net/http"

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
	read := api.Group("", auth.RequireRole(policy.RoleAdmin, policy.RoleDoctor, policy.RoleNurse))
	read.GET("/clinical-records", h.ListRecords)
	read.GET("/clinical-records/:id", h.GetRecord)

	write := api.Group("", auth.RequireRole(policy.RoleAdmin, policy.RoleDoctor))
	write.POST("/clinical-records", h.CreateRecord)
	write.PUT("/clinical-records/:id", h.UpdateRecord)
	write.PATCH("/clinical-records/:id", h.UpdateRecord)
	write.DELETE("/clinical-records/:id", h.DeleteRecord)
}

func callerScope(c echo.Context) policy.Scope {
	id, _ := auth.IdentityFromContext(c.Request().Context())
	return policy.ScopeFor(id.PolicyIdentity(), policy.ResourceClinicalRecord)
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var cr ClinicalRecord
	if err := c.Bind(&cr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.CreateRecord(c.Request().Context(), &cr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, cr)
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	cr, err := h.svc.GetRecord(c.Request().Context(), id, callerScope(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "clinical record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cr)
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	scope := callerScope(c)
	existing, err := h.svc.GetRecord(c.Request().Context(), id, scope)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "clinical record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	cr := *existing
	if err := c.Bind(&cr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	cr.ID = id
	if err := h.svc.UpdateRecord(c.Request().Context(), &cr, scope); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "clinical record not found")
		case errors.Is(err, ErrDuplicateAppointment):
			return echo.NewHTTPError(http.StatusBadRequest, "appointment already has a clinical record")
		default:
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return c.JSON(http.StatusOK, cr)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteRecord(c.Request().Context(), id, callerScope(c)); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "clinical record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListRecords(c echo.Context) error {
	pg := pagination.FromContext(c)

	params := map[string]string{}
	if v := c.QueryParam("patient"); v != "" {
		if _, err := uuid.Parse(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient filter")
		}
		params["patient"] = v
	}

	items, total, err := h.svc.ListRecords(c.Request().Context(), callerScope(c), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
