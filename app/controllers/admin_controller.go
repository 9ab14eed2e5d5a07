package controllers

import (
	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/ctx"
	"github.com/shashiranjanraj/tiffin/pkg/response"
)

type AdminController struct {
	service *services.AdminService
}

func NewAdminController(service *services.AdminService) *AdminController {
	return &AdminController{service: service}
}

// Notifications lists unread admin notifications. The route is guarded by
// the admin role.
func (c *AdminController) Notifications(x *ctx.Context) {
	notes, err := c.service.UnreadNotifications(x.Context())
	if err != nil {
		x.Fail("Failed to fetch notifications")
		return
	}
	x.OK(response.Payload{"notifications": notes})
}
