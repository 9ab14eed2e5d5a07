package controllers

import (
	"errors"

	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/ctx"
	"github.com/shashiranjanraj/tiffin/pkg/response"
)

type AddressController struct {
	service *services.AddressService
}

func NewAddressController(service *services.AddressService) *AddressController {
	return &AddressController{service: service}
}

// Manage runs one address action: create, get, update, delete or
// setDefault.
func (c *AddressController) Manage(x *ctx.Context) {
	userID, ok := requireCaller(x)
	if !ok {
		return
	}

	var req services.AddressRequest
	if !x.Decode(&req) {
		return
	}
	action, err := req.Variant()
	if err != nil {
		x.Fail(addressMessage(err, nil))
		return
	}

	res, err := c.service.Handle(x.Context(), userID, action)
	if err != nil {
		x.Log().Debug("address action rejected", "action", req.Action, "error", err)
		x.Fail(addressMessage(err, action))
		return
	}

	body := response.Payload{}
	switch action.(type) {
	case services.CreateAddress:
		body["address"], body["message"] = res.Address, res.Message
	case services.ListAddresses:
		body["addresses"] = res.Addresses
	case services.UpdateAddress:
		body["address"] = res.Address
	default:
		body["message"] = res.Message
	}
	x.OK(body)
}

func addressMessage(err error, action services.AddressAction) string {
	_, creating := action.(services.CreateAddress)

	var storageErr *services.StorageError
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return msgAuthRequired
	case errors.Is(err, services.ErrInvalidAction):
		return "Invalid action"
	case errors.Is(err, services.ErrAddressFieldsMissing):
		return "Required fields missing: address line 1, city, state, and PIN code are required"
	case errors.Is(err, services.ErrAddressPinCode) && creating:
		return "Invalid PIN code - must be between 5-10 digits"
	case errors.Is(err, services.ErrAddressPinCode):
		return "Invalid pin code"
	case errors.Is(err, services.ErrAddressType) && creating:
		return "Invalid address type - must be home, work, or other"
	case errors.Is(err, services.ErrAddressType):
		return "Invalid address type"
	case errors.Is(err, services.ErrAddressIDRequired):
		return "Address ID required"
	case errors.Is(err, services.ErrAddressNotFound):
		return "Address not found"
	case errors.Is(err, services.ErrNoAddressChanges):
		return "No fields to update"
	case errors.Is(err, services.ErrAddressSave):
		return "Failed to save address to database"
	case errors.As(err, &storageErr):
		return "Database operation failed: " + storageErr.Error()
	default:
		return "Database operation failed: " + err.Error()
	}
}
