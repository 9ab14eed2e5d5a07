package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/bind"
	"github.com/shashiranjanraj/tiffin/pkg/ctx"
	"github.com/shashiranjanraj/tiffin/pkg/response"
)

type MenuController struct {
	service *services.MenuService
}

func NewMenuController(service *services.MenuService) *MenuController {
	return &MenuController{service: service}
}

// Index lists available menu items. An empty body means no filters.
func (c *MenuController) Index(x *ctx.Context) {
	if _, ok := requireCaller(x); !ok {
		return
	}

	var f services.MenuFilter
	if err := bind.Decode(x.R, &f); err != nil && !errors.Is(err, bind.ErrEmptyBody) {
		x.Error(http.StatusBadRequest, ctx.MsgInvalidBody)
		return
	}

	items, err := c.service.Items(x.Context(), f)
	if err != nil {
		x.Fail("Failed to fetch menu items")
		return
	}
	x.OK(response.Payload{"items": items})
}
