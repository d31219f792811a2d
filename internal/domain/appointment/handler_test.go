package appointment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthtech/hms/internal/platform/policy"
)

// downApptRepo fails every call the way a lost database connection would.
type downApptRepo struct {
	err error
}

func (r *downApptRepo) Create(_ context.Context, _ *Appointment) error { return r.err }

func (r *downApptRepo) GetByID(_ context.Context, _ uuid.UUID, _ policy.Scope) (*Appointment, error) {
	return nil, r.err
}

func (r *downApptRepo) Update(_ context.Context, _ *Appointment, _ policy.Scope) error {
	return r.err
}

func (r *downApptRepo) Delete(_ context.Context, _ uuid.UUID, _ policy.Scope) error {
	return r.err
}

func (r *downApptRepo) List(_ context.Context, _ policy.Scope, _ map[string]string, _, _ int) ([]*Appointment, int, error) {
	return nil, 0, r.err
}

func (r *downApptRepo) ListByPatient(_ context.Context, _ uuid.UUID, _ policy.Scope) ([]*Appointment, error) {
	return nil, r.err
}

func callStatus(t *testing.T, fn echo.HandlerFunc, method, target, id, body string) int {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	err := fn(c)
	if err == nil {
		return rec.Code
	}
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return httpErr.Code
}

// A store outage must surface as 500; only a genuinely absent row is 404.
func TestGetAppointment_StoreOutageIsNotNotFound(t *testing.T) {
	h := NewHandler(NewService(&downApptRepo{err: errors.New("connection refused")}))

	code := callStatus(t, h.GetAppointment, http.MethodGet, "/api/v1/appointments/x", uuid.NewString(), "")
	if code == http.StatusNotFound {
		t.Fatal("store outage surfaced as 404")
	}
	if code != http.StatusInternalServerError {
		t.Errorf("expected 500 for store outage, got %d", code)
	}
}

func TestGetAppointment_AbsentRowIsNotFound(t *testing.T) {
	h := NewHandler(NewService(newMockApptRepo()))

	code := callStatus(t, h.GetAppointment, http.MethodGet, "/api/v1/appointments/x", uuid.NewString(), "")
	if code != http.StatusNotFound {
		t.Errorf("expected 404 for absent id, got %d", code)
	}
}

// The update path reads the row before applying the body; that read follows
// the same error split as a plain retrieve.
func TestUpdateAppointment_StoreOutageIsNotNotFound(t *testing.T) {
	h := NewHandler(NewService(&downApptRepo{err: errors.New("connection refused")}))

	code := callStatus(t, h.UpdateAppointment, http.MethodPatch, "/api/v1/appointments/x",
		uuid.NewString(), `{"notes":"rescheduled"}`)
	if code != http.StatusInternalServerError {
		t.Errorf("expected 500 for store outage, got %d", code)
	}
}
