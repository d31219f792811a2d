package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthtech/hms/internal/platform/policy"
)

var testKey = []byte("test-key")

func issueAccessToken(t *testing.T, id Identity) string {
	t.Helper()
	svc := NewTokenService(testKey, 15*time.Minute, 24*time.Hour, newMemRefreshStore())
	pair, err := svc.Issue(context.Background(), id)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return pair.Access
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader, path string) (*httptest.ResponseRecorder, Identity, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Identity
	var ok bool
	handler := mw(func(c echo.Context) error {
		got, ok = IdentityFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, got, ok
}

func TestJWTMiddleware_ValidToken(t *testing.T) {
	id := Identity{UserID: uuid.New(), Username: "dr.adams", Role: policy.RoleDoctor}
	mw := JWTMiddleware(testKey, nil)

	rec, got, ok := doRequest(t, mw, "Bearer "+issueAccessToken(t, id), "/api/v1/patients")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !ok {
		t.Fatal("expected identity on context")
	}
	if got.UserID != id.UserID || got.Username != id.Username || got.Role != id.Role {
		t.Errorf("identity mismatch: %+v", got)
	}
}

func TestJWTMiddleware_MissingHeader(t *testing.T) {
	mw := JWTMiddleware(testKey, nil)
	rec, _, _ := doRequest(t, mw, "", "/api/v1/patients")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddleware_MalformedHeader(t *testing.T) {
	mw := JWTMiddleware(testKey, nil)
	rec, _, _ := doRequest(t, mw, "Token abc", "/api/v1/patients")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddleware_WrongKey(t *testing.T) {
	id := Identity{UserID: uuid.New(), Role: policy.RoleAdmin}
	token := issueAccessToken(t, id)

	mw := JWTMiddleware([]byte("other-key"), nil)
	rec, _, _ := doRequest(t, mw, "Bearer "+token, "/api/v1/patients")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for token signed with another key, got %d", rec.Code)
	}
}

func TestJWTMiddleware_RejectsRefreshToken(t *testing.T) {
	svc := NewTokenService(testKey, 15*time.Minute, 24*time.Hour, newMemRefreshStore())
	pair, err := svc.Issue(context.Background(), Identity{UserID: uuid.New(), Role: policy.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	mw := JWTMiddleware(testKey, nil)
	rec, _, _ := doRequest(t, mw, "Bearer "+pair.Refresh, "/api/v1/patients")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 when refresh token is used as bearer, got %d", rec.Code)
	}
}

func TestJWTMiddleware_SkipperBypassesAuth(t *testing.T) {
	mw := JWTMiddleware(testKey, Skipper)
	rec, _, ok := doRequest(t, mw, "", "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 on skipped path, got %d", rec.Code)
	}
	if ok {
		t.Error("skipped request should carry no identity")
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	cases := []struct {
		name     string
		identity *Identity
		allowed  []string
		want     int
	}{
		{"matching role", &Identity{Role: policy.RoleDoctor}, []string{policy.RoleDoctor}, http.StatusOK},
		{"admin passes any guard", &Identity{Role: policy.RoleAdmin}, []string{policy.RoleDoctor}, http.StatusOK},
		{"elevated passes any guard", &Identity{Role: policy.RolePatient, Elevated: true}, []string{policy.RoleDoctor}, http.StatusOK},
		{"wrong role", &Identity{Role: policy.RolePatient}, []string{policy.RoleDoctor, policy.RoleNurse}, http.StatusForbidden},
		{"no identity", nil, []string{policy.RoleDoctor}, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.identity != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tc.identity))
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := RequireRole(tc.allowed...)(handler)(c)
			if err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestHashPassword_NeverStoresClearText(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the clear text")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("correct password should verify")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("wrong password should not verify")
	}
}

func TestHashPassword_RejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}
