package api

import (
	"github.com/labstack/echo/v4"

	"winsbygroup.com/tracker/internal/middleware"
)

// RegisterRoutes wires the tracker API under the given Echo group. The group
// must already run middleware.SessionAuth.
func RegisterRoutes(g *echo.Group, h *Handler) {
	requireUser := middleware.RequireUser()
	customerOwner := middleware.RequireOwner("id", h.customers.OwnerOf)
	projectOwner := middleware.RequireOwner("id", h.projects.OwnerOf)

	// Authentication
	g.POST("/auth/register", h.Register)
	g.POST("/auth/login", h.Login)
	g.GET("/auth/logout", h.Logout)
	g.GET("/auth/authenticate", h.Authenticate)

	// Customers
	g.GET("/customers", h.GetCustomers, requireUser)
	g.POST("/customers", h.CreateCustomer, requireUser)
	g.PUT("/customers/:id", h.UpdateCustomer, requireUser, customerOwner)
	g.DELETE("/customers/:id", h.DeleteCustomer, requireUser, customerOwner)

	// Projects
	g.GET("/projects/:id", h.GetProject, requireUser, projectOwner)
	g.POST("/projects", h.CreateProjects, requireUser)
	g.PUT("/projects/:id", h.UpdateProject, requireUser, projectOwner)
}
