package routes

import (
	"net/http"

	"github.com/shashiranjanraj/tiffin/app/controllers"
	"github.com/shashiranjanraj/tiffin/pkg/ctx"
	"github.com/shashiranjanraj/tiffin/pkg/middleware"
	"github.com/shashiranjanraj/tiffin/pkg/rbac"
	"github.com/shashiranjanraj/tiffin/pkg/router"
)

// Handlers is everything the route table points at.
type Handlers struct {
	Orders       *controllers.OrderController
	Addresses    *controllers.AddressController
	Menu         *controllers.MenuController
	Profile      *controllers.ProfileController
	Verification *controllers.VerificationController
	Admin        *controllers.AdminController

	GraphQL   http.HandlerFunc
	OrderFeed http.HandlerFunc
}

func RegisterAPI(r *router.Router, h Handlers) {
	api := r.Group("/api")
	api.Post("/orders", "orders.store", ctx.Wrap(h.Orders.Store))
	api.Post("/addresses", "addresses.manage", ctx.Wrap(h.Addresses.Manage))
	api.Post("/menu-items", "menu.index", ctx.Wrap(h.Menu.Index))
	api.Post("/profile", "profile.setup", ctx.Wrap(h.Profile.Setup))
	api.Post("/verification", "verification.submit", ctx.Wrap(h.Verification.Submit))

	admin := api.Group("/admin", rbac.HasRole("admin"))
	admin.Get("/notifications", "admin.notifications", ctx.Wrap(h.Admin.Notifications))

	if h.GraphQL != nil {
		r.Post("/graphql", "graphql", h.GraphQL, middleware.Authenticate)
	}
	if h.OrderFeed != nil {
		r.Get("/ws/orders", "ws.orders", h.OrderFeed)
	}
}
