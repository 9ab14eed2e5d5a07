package services

import "errors"

// Order pipeline.
var (
	ErrUnauthenticated    = errors.New("caller is not authenticated")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingAddress     = errors.New("delivery address missing")
	ErrMissingPayment     = errors.New("payment method missing")
	ErrInvalidAddress     = errors.New("delivery address not owned by caller")
	ErrItemsUnavailable   = errors.New("menu items unavailable")
	ErrMultipleFoodMakers = errors.New("items span several food makers")
	ErrPersistence        = errors.New("persistence failed")
)

// Addresses.
var (
	ErrAddressFieldsMissing = errors.New("address fields missing")
	ErrAddressPinCode       = errors.New("invalid pin code")
	ErrAddressType          = errors.New("invalid address type")
	ErrAddressIDRequired    = errors.New("address id required")
	ErrAddressNotFound      = errors.New("address not found")
	ErrNoAddressChanges     = errors.New("no fields to update")
	ErrAddressSave          = errors.New("address insert failed")
	ErrInvalidAction        = errors.New("invalid action")
)

// Menu.
var ErrMenuUnavailable = errors.New("menu listing failed")

// Profiles.
var (
	ErrInvalidUserType = errors.New("invalid user type")
	ErrImageUpload     = errors.New("profile image upload failed")
	ErrProfileExists   = errors.New("profile already exists")
)

// Verification.
var (
	ErrVerificationSections = errors.New("verification sections missing")
	ErrPersonalInfo         = errors.New("personal information incomplete")
	ErrBusinessDetails      = errors.New("business details incomplete")
	ErrDocumentsMissing     = errors.New("required documents missing")
	ErrNoFoodMakerProfile   = errors.New("food maker profile not found")
	ErrFoodMakerRecord      = errors.New("food maker record not found")
	ErrAlreadyVerified      = errors.New("already verified")
	ErrVerificationInReview = errors.New("verification under review")
)
