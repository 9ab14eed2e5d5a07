package controllers

import (
	"errors"

	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/ctx"
)

const msgAuthRequired = "Authentication required"

type message struct {
	err  error
	text string
}

var orderMessages = []message{
	{services.ErrUnauthenticated, msgAuthRequired},
	{services.ErrEmptyCart, "Cart items are required"},
	{services.ErrMissingAddress, "Delivery address is required"},
	{services.ErrMissingPayment, "Payment method is required"},
	{services.ErrInvalidAddress, "Invalid delivery address"},
	{services.ErrItemsUnavailable, "Some menu items are not available"},
	{services.ErrMultipleFoodMakers, "All items must be from the same food maker"},
}

var profileMessages = []message{
	{services.ErrUnauthenticated, msgAuthRequired},
	{services.ErrInvalidUserType, "Valid user type is required"},
	{services.ErrImageUpload, "Failed to upload profile image"},
	{services.ErrProfileExists, "Profile already exists"},
}

var verificationMessages = []message{
	{services.ErrUnauthenticated, msgAuthRequired},
	{services.ErrVerificationSections, "All verification sections are required"},
	{services.ErrPersonalInfo, "Personal information is incomplete"},
	{services.ErrBusinessDetails, "Business details are incomplete"},
	{services.ErrDocumentsMissing, "Required documents are missing"},
	{services.ErrNoFoodMakerProfile, "Food maker profile not found. Please complete profile setup first."},
	{services.ErrFoodMakerRecord, "Food maker record not found"},
	{services.ErrAlreadyVerified, "You are already verified"},
	{services.ErrVerificationInReview, "Your verification is already under review"},
}

// messageFor returns the caller-facing text for err, or fallback when err
// is not a known domain failure.
func messageFor(err error, table []message, fallback string) string {
	for _, m := range table {
		if errors.Is(err, m.err) {
			return m.text
		}
	}
	return fallback
}

// requireCaller answers "Authentication required" for anonymous requests.
func requireCaller(x *ctx.Context) (string, bool) {
	id := x.UserID()
	if id == "" {
		x.Fail(msgAuthRequired)
		return "", false
	}
	return id, true
}
