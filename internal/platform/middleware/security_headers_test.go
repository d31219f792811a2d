package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func serveWithHeaders(t *testing.T, target string, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, SecurityHeaders()(handler)(c)
}

func TestSecurityHeaders_AppliedToJSONAndDownloads(t *testing.T) {
	for _, target := range []string{
		"/api/v1/patients",
		"/api/v1/medical-files/42/download",
	} {
		rec, err := serveWithHeaders(t, target, func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		if err != nil {
			t.Fatalf("%s: %v", target, err)
		}
		for name, want := range securityHeaders {
			if got := rec.Header().Get(name); got != want {
				t.Errorf("%s: header %s = %q, want %q", target, name, got, want)
			}
		}
	}
}

// Responses carrying PHI must never be cacheable, whatever the handler set.
func TestSecurityHeaders_ForbidCaching(t *testing.T) {
	rec, err := serveWithHeaders(t, "/api/v1/patients", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", rec.Header().Get("Cache-Control"))
	}
	if rec.Header().Get("Pragma") != "no-cache" {
		t.Errorf("Pragma = %q, want no-cache", rec.Header().Get("Pragma"))
	}
}

func TestSecurityHeaders_SetBeforeHandlerError(t *testing.T) {
	rec, err := serveWithHeaders(t, "/api/v1/patients/nope", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "patient not found")
	})
	if err == nil {
		t.Fatal("expected error from handler")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("headers must be stamped even when the handler fails")
	}
}
