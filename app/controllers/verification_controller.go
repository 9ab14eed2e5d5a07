package controllers

import (
	"time"

	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/ctx"
	"github.com/shashiranjanraj/tiffin/pkg/response"
)

type VerificationController struct {
	service *services.VerificationService
}

func NewVerificationController(service *services.VerificationService) *VerificationController {
	return &VerificationController{service: service}
}

func (c *VerificationController) Submit(x *ctx.Context) {
	userID, ok := requireCaller(x)
	if !ok {
		return
	}

	var in services.VerificationInput
	if !x.Decode(&in) {
		return
	}

	res, err := c.service.Submit(x.Context(), userID, in)
	if err != nil {
		x.Fail(messageFor(err, verificationMessages, "Failed to submit verification. Please try again."))
		return
	}

	x.OK(response.Payload{
		"verificationId": res.VerificationID,
		"status":         res.Status,
		"message":        "Verification submitted successfully. You will be notified once reviewed.",
		"submittedAt":    res.SubmittedAt.Format(time.RFC3339Nano),
	})
}
