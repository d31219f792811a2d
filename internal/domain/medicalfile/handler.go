package medicalfile

import (
	"errors"
	"fmt"
	"net/http"
	"path"

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
	read := api.Group("", auth.RequireRole(policy.RoleAdmin, policy.RoleDoctor, policy.RoleNurse, policy.RoleReceptionist))
	read.GET("/medical-files", h.ListFiles)
	read.GET("/medical-files/:id", h.GetFile)
	read.GET("/medical-files/:id/download", h.DownloadFile)

	write := api.Group("", auth.RequireRole(policy.RoleAdmin, policy.RoleDoctor, policy.RoleNurse))
	write.POST("/medical-files", h.UploadFile)
	write.PUT("/medical-files/:id", h.UpdateFile)
	write.PATCH("/medical-files/:id", h.UpdateFile)
	write.DELETE("/medical-files/:id", h.DeleteFile)
}

// UploadFile accepts a multipart form: a "file" part plus patient_id,
// file_type, description, and optional clinical_record_id fields.
func (h *Handler) UploadFile(c echo.Context) error {
	patientID, err := uuid.Parse(c.FormValue("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}

	f := MedicalFile{
		PatientID:   patientID,
		FileType:    c.FormValue("file_type"),
		Description: c.FormValue("description"),
	}
	if v := c.FormValue("clinical_record_id"); v != "" {
		recordID, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid clinical_record_id")
		}
		f.ClinicalRecordID = &recordID
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read file")
	}
	defer src.Close()

	caller, _ := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Upload(c.Request().Context(), caller, &f, fh.Filename, src); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) GetFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	f, err := h.svc.GetFile(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medical file not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) DownloadFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	f, rc, err := h.svc.Open(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medical file not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer rc.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, path.Base(f.FileKey)))
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, rc)
}

func (h *Handler) UpdateFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	existing, err := h.svc.GetFile(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medical file not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	f := *existing
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// Content, ownership, and attribution are fixed at upload time.
	f.ID = id
	f.PatientID = existing.PatientID
	f.FileKey = existing.FileKey
	f.UploadedBy = existing.UploadedBy
	if err := h.svc.UpdateFile(c.Request().Context(), &f); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medical file not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) DeleteFile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteFile(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medical file not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListFiles(c echo.Context) error {
	pg := pagination.FromContext(c)

	params := map[string]string{}
	if v := c.QueryParam("patient"); v != "" {
		if _, err := uuid.Parse(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient filter")
		}
		params["patient"] = v
	}
	if v := c.QueryParam("file_type"); v != "" {
		params["file_type"] = v
	}

	items, total, err := h.svc.ListFiles(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
