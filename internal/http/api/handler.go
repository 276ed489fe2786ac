package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/tracker/internal/auth"
	"winsbygroup.com/tracker/internal/customer"
	"winsbygroup.com/tracker/internal/middleware"
	"winsbygroup.com/tracker/internal/project"
)

const (
	msgMissingFields = "Request should contain the following fields: email, password, firstName, lastName"
	msgEmailTaken    = "This email address is already taken"
	msgPasswordLong  = "Password must be at most 72 bytes"
)

type Handler struct {
	auth      *auth.Service
	customers *customer.Service
	projects  *project.Service
	sessions  middleware.SessionStore
	cookie    middleware.CookieConfig
}

func NewHandler(
	a *auth.Service,
	c *customer.Service,
	p *project.Service,
	sessions middleware.SessionStore,
	cookie middleware.CookieConfig,
) *Handler {
	return &Handler{
		auth:      a,
		customers: c,
		projects:  p,
		sessions:  sessions,
		cookie:    cookie,
	}
}

// sendStatus writes the status code with its text as a plain body
func sendStatus(c echo.Context, code int) error {
	return c.String(code, http.StatusText(code))
}

// --------------------------
// Authentication
// --------------------------

// POST /api/auth/register
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, msgMissingFields)
	}

	u, err := h.auth.Register(c.Request().Context(), auth.Registration{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	switch {
	case errors.Is(err, auth.ErrValidation):
		return c.String(http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, auth.ErrPasswordTooLong):
		return c.String(http.StatusBadRequest, msgPasswordLong)
	case errors.Is(err, auth.ErrDuplicateEmail):
		return c.String(http.StatusBadRequest, msgEmailTaken)
	case err != nil:
		return err
	}

	if err := h.startSession(c, u.UserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(auth.ProfileOf(u)))
}

// POST /api/auth/login
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return sendStatus(c, http.StatusBadRequest)
	}

	u, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return sendStatus(c, http.StatusBadRequest)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return sendStatus(c, http.StatusUnauthorized)
	case err != nil:
		return err
	}

	if err := h.startSession(c, u.UserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(auth.ProfileOf(u)))
}

// GET /api/auth/logout
func (h *Handler) Logout(c echo.Context) error {
	if token := middleware.SessionToken(c); token != "" {
		if err := h.sessions.Destroy(c.Request().Context(), token); err != nil {
			return err
		}
	}
	middleware.ClearSessionCookie(c, h.cookie)
	return sendStatus(c, http.StatusOK)
}

// GET /api/auth/authenticate
func (h *Handler) Authenticate(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return sendStatus(c, http.StatusUnauthorized)
	}
	return c.JSON(http.StatusOK, toProfileResponse(auth.ProfileOf(u)))
}

// startSession replaces any current session with a new one for userID
func (h *Handler) startSession(c echo.Context, userID string) error {
	ctx := c.Request().Context()
	if token := middleware.SessionToken(c); token != "" {
		if err := h.sessions.Destroy(ctx, token); err != nil {
			return err
		}
	}

	token, err := h.sessions.Create(ctx, userID)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(c, token, h.cookie)
	return nil
}

// --------------------------
// Customers
// --------------------------

// GET /api/customers
func (h *Handler) GetCustomers(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)
	out, err := h.customers.ListByUser(c.Request().Context(), u.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCustomerList(out))
}

// POST /api/customers
func (h *Handler) CreateCustomer(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return sendStatus(c, http.StatusBadRequest)
	}

	_, err := h.customers.Create(c.Request().Context(), &customer.Customer{
		UserID:    u.UserID,
		FirstName: deref(req.FirstName),
		LastName:  deref(req.LastName),
		Email:     deref(req.Email),
		Phone:     deref(req.Phone),
		Address:   deref(req.Address),
	})
	if errors.Is(err, customer.ErrOwnerNotFound) {
		// the session outlived its account
		return sendStatus(c, http.StatusUnauthorized)
	}
	if err != nil {
		return err
	}
	return sendStatus(c, http.StatusOK)
}

// PUT /api/customers/:id
func (h *Handler) UpdateCustomer(c echo.Context) error {
	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return sendStatus(c, http.StatusBadRequest)
	}

	err := h.customers.Update(c.Request().Context(), c.Param("id"), req.patch())
	if err != nil && !errors.Is(err, customer.ErrNotFound) {
		return err
	}
	return sendStatus(c, http.StatusOK)
}

// DELETE /api/customers/:id
func (h *Handler) DeleteCustomer(c echo.Context) error {
	if err := h.customers.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return sendStatus(c, http.StatusOK)
}

// --------------------------
// Projects
// --------------------------

// GET /api/projects/:id answers null for an unknown id.
func (h *Handler) GetProject(c echo.Context) error {
	p, err := h.projects.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, project.ErrNotFound) {
		return c.JSON(http.StatusOK, nil)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectResponse(p))
}

// POST /api/projects accepts a single project or an array of them.
func (h *Handler) CreateProjects(c echo.Context) error {
	u, _ := middleware.CurrentUser(c)

	var raw json.RawMessage
	if err := c.Bind(&raw); err != nil {
		return sendStatus(c, http.StatusBadRequest)
	}
	reqs, err := decodeProjects(raw)
	if err != nil {
		return sendStatus(c, http.StatusBadRequest)
	}

	projects := make([]project.Project, 0, len(reqs))
	for i := range reqs {
		projects = append(projects, reqs[i].project())
	}

	_, err = h.projects.Create(c.Request().Context(), u.UserID, projects)
	if errors.Is(err, project.ErrCustomerNotFound) {
		return c.String(http.StatusNotFound, "Customer not found")
	}
	if err != nil {
		return err
	}
	return sendStatus(c, http.StatusOK)
}

// PUT /api/projects/:id
func (h *Handler) UpdateProject(c echo.Context) error {
	var req UpdateProjectRequest
	if err := c.Bind(&req); err != nil {
		return sendStatus(c, http.StatusBadRequest)
	}

	err := h.projects.Update(c.Request().Context(), c.Param("id"), req.patch())
	if err != nil && !errors.Is(err, project.ErrNotFound) {
		return err
	}
	return sendStatus(c, http.StatusOK)
}

// --------------------------
// Seeding
// --------------------------

// InitDB wipes every collection and loads the seed data.
func InitDB(seed func(ctx context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Logger().Info("re-initializing db")
		if err := seed(c.Request().Context()); err != nil {
			return err
		}
		return sendStatus(c, http.StatusOK)
	}
}

func decodeProjects(raw json.RawMessage) ([]CreateProjectRequest, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty body")
	}

	if raw[0] == '[' {
		var reqs []CreateProjectRequest
		if err := json.Unmarshal(raw, &reqs); err != nil {
			return nil, err
		}
		return reqs, nil
	}

	var req CreateProjectRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	return []CreateProjectRequest{req}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
