package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/tracker/internal/user"
)

const SessionCookieName = "tracker_session"

// Echo context keys
const (
	userContextKey    = "user"
	sessionContextKey = "session"
)

// UserLoader resolves a session's user id to the full user record.
type UserLoader interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Secure bool
	TTL    time.Duration
}

// SessionAuth resolves the session cookie to a user and attaches it to the
// context. Requests without a valid session pass through anonymously;
// RequireUser rejects them where a login is needed.
func SessionAuth(store SessionStore, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			userID, ok, err := store.Resolve(ctx, cookie.Value)
			if err != nil {
				return err
			}
			if !ok {
				return next(c)
			}

			u, err := users.Get(ctx, userID)
			if errors.Is(err, user.ErrNotFound) {
				// the account is gone (e.g. the database was reseeded)
				return next(c)
			}
			if err != nil {
				return err
			}

			c.Set(userContextKey, u)
			c.Set(sessionContextKey, cookie.Value)
			return next(c)
		}
	}
}

// RequireUser rejects requests that carry no authenticated session with 401.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentUser(c); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by SessionAuth.
func CurrentUser(c echo.Context) (*user.User, bool) {
	u, ok := c.Get(userContextKey).(*user.User)
	return u, ok && u != nil
}

// SessionToken returns the token of the session attached by SessionAuth.
func SessionToken(c echo.Context) string {
	token, _ := c.Get(sessionContextKey).(string)
	return token
}

// OwnerLookup reports which user owns the resource with the given id.
// found is false when the resource does not exist.
type OwnerLookup func(ctx context.Context, id string) (ownerID string, found bool, err error)

// RequireOwner guards routes addressing a resource by the path parameter
// param. A resource owned by another user answers 404 so its existence is
// not confirmed; a missing resource is left to the handler. Must run after
// RequireUser.
func RequireOwner(param string, lookup OwnerLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized)
			}

			owner, found, err := lookup(c.Request().Context(), c.Param(param))
			if err != nil {
				return err
			}
			if found && owner != u.UserID {
				return echo.NewHTTPError(http.StatusNotFound)
			}
			return next(c)
		}
	}
}

// SetSessionCookie hands the session token to the client.
func SetSessionCookie(c echo.Context, token string, cfg CookieConfig) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie overwrites the session cookie with an expired one.
func ClearSessionCookie(c echo.Context, cfg CookieConfig) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
