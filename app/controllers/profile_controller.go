package controllers

import (
	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/ctx"
	"github.com/shashiranjanraj/tiffin/pkg/response"
)

type ProfileController struct {
	service *services.ProfileService
}

func NewProfileController(service *services.ProfileService) *ProfileController {
	return &ProfileController{service: service}
}

// Setup creates the caller's profile. Field rules on ProfileInput are
// answered before the service runs.
func (c *ProfileController) Setup(x *ctx.Context) {
	userID, ok := requireCaller(x)
	if !ok {
		return
	}

	var in services.ProfileInput
	if !x.Bind(&in) {
		return
	}

	res, err := c.service.Setup(x.Context(), userID, in)
	if err != nil {
		x.Fail(messageFor(err, profileMessages, "Failed to create profile"))
		return
	}

	body := response.Payload{"profileId": res.ProfileID, "userType": res.UserType}
	if res.FoodMakerID != 0 {
		body["foodMakerId"] = res.FoodMakerID
	}
	if res.VehicleInfo != nil {
		body["vehicleInfo"] = res.VehicleInfo
	}
	x.OK(body)
}
