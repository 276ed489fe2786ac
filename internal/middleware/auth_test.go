package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/tracker/internal/middleware"
	"winsbygroup.com/tracker/internal/user"
	"winsbygroup.com/tracker/internal/version"
)

// Helper to create echo context with request/response
func newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// Dummy handler that returns 200 OK
func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// fakeUsers is a UserLoader backed by a map
type fakeUsers map[string]*user.User

func (f fakeUsers) Get(_ context.Context, id string) (*user.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

// ============================================================================
// SessionAuth Tests
// ============================================================================

func TestSessionAuth(t *testing.T) {
	ctx := context.Background()
	store := middleware.NewMemorySessionStore(0)
	users := fakeUsers{"u1": {UserID: "u1", Email: "a@example.com"}}
	mw := middleware.SessionAuth(store, users)

	t.Run("attaches the user of a valid session", func(t *testing.T) {
		token, _ := store.Create(ctx, "u1")
		c, _ := newContext(http.MethodGet, "/api/customers")
		c.Request().AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})

		var got *user.User
		err := mw(func(c echo.Context) error {
			got, _ = middleware.CurrentUser(c)
			return nil
		})(c)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || got.UserID != "u1" {
			t.Errorf("expected user u1, got %+v", got)
		}
		if middleware.SessionToken(c) != token {
			t.Errorf("expected session token %q, got %q", token, middleware.SessionToken(c))
		}
	})

	t.Run("passes through without a cookie", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/api/customers")
		if err := mw(okHandler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if _, ok := middleware.CurrentUser(c); ok {
			t.Error("expected no user")
		}
	})

	t.Run("ignores an unknown token", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/api/customers")
		c.Request().AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "bogus"})
		if err := mw(okHandler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := middleware.CurrentUser(c); ok {
			t.Error("expected no user")
		}
	})

	t.Run("ignores a session whose user is gone", func(t *testing.T) {
		token, _ := store.Create(ctx, "deleted-user")
		c, _ := newContext(http.MethodGet, "/api/customers")
		c.Request().AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
		if err := mw(okHandler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := middleware.CurrentUser(c); ok {
			t.Error("expected no user")
		}
	})
}

// ============================================================================
// RequireUser / RequireOwner Tests
// ============================================================================

func TestRequireUser(t *testing.T) {
	t.Run("rejects anonymous requests with 401", func(t *testing.T) {
		c, _ := newContext(http.MethodGet, "/api/customers")
		err := middleware.RequireUser()(okHandler)(c)
		if code := httpStatus(t, err); code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", code)
		}
	})

	t.Run("allows an authenticated user", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/api/customers")
		c.Set("user", &user.User{UserID: "u1"})
		if err := middleware.RequireUser()(okHandler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})
}

func TestRequireOwner(t *testing.T) {
	owners := map[string]string{"c1": "u1", "c2": "u2"}
	lookup := func(_ context.Context, id string) (string, bool, error) {
		owner, ok := owners[id]
		return owner, ok, nil
	}
	mw := middleware.RequireOwner("id", lookup)

	tests := []struct {
		name     string
		id       string
		wantCode int
	}{
		{"owner passes", "c1", http.StatusOK},
		{"other user's resource is 404", "c2", http.StatusNotFound},
		{"missing resource reaches the handler", "c3", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodPut, "/api/customers/"+tt.id)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			c.Set("user", &user.User{UserID: "u1"})

			err := mw(okHandler)(c)
			if tt.wantCode == http.StatusOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if rec.Code != http.StatusOK {
					t.Errorf("expected status 200, got %d", rec.Code)
				}
				return
			}
			if code := httpStatus(t, err); code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, code)
			}
		})
	}

	t.Run("lookup errors propagate", func(t *testing.T) {
		boom := errors.New("boom")
		mw := middleware.RequireOwner("id", func(context.Context, string) (string, bool, error) {
			return "", false, boom
		})
		c, _ := newContext(http.MethodGet, "/api/projects/p1")
		c.SetParamNames("id")
		c.SetParamValues("p1")
		c.Set("user", &user.User{UserID: "u1"})

		if err := mw(okHandler)(c); !errors.Is(err, boom) {
			t.Errorf("expected boom, got %v", err)
		}
	})
}

// ============================================================================
// Cookie helpers
// ============================================================================

func TestSessionCookie(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		c, rec := newContext(http.MethodPost, "/api/auth/login")
		middleware.SetSessionCookie(c, "tok", middleware.CookieConfig{Secure: true})

		cookies := rec.Result().Cookies()
		if len(cookies) != 1 {
			t.Fatalf("expected 1 cookie, got %d", len(cookies))
		}
		ck := cookies[0]
		if ck.Name != middleware.SessionCookieName || ck.Value != "tok" {
			t.Errorf("unexpected cookie %s=%s", ck.Name, ck.Value)
		}
		if !ck.HttpOnly || !ck.Secure || ck.Path != "/" {
			t.Errorf("unexpected cookie attributes %+v", ck)
		}
		if ck.MaxAge != int(middleware.DefaultSessionTTL.Seconds()) {
			t.Errorf("expected MaxAge %v, got %d", middleware.DefaultSessionTTL.Seconds(), ck.MaxAge)
		}
	})

	t.Run("clear", func(t *testing.T) {
		c, rec := newContext(http.MethodGet, "/api/auth/logout")
		middleware.ClearSessionCookie(c, middleware.CookieConfig{})

		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].MaxAge >= 0 || cookies[0].Value != "" {
			t.Errorf("expected an expired empty cookie, got %+v", cookies)
		}
	})
}

func TestVersion(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/customers")
	if err := middleware.Version()(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get(middleware.VersionHeader); got != version.Version {
		t.Errorf("expected version header %q, got %q", version.Version, got)
	}
}
