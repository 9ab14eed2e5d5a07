package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/app/repositories"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/validate"
)

// AddressAction is one of CreateAddress, ListAddresses, UpdateAddress,
// DeleteAddress or SetDefaultAddress.
type AddressAction interface {
	addressAction()
}

type CreateAddress struct{ Input AddressInput }
type ListAddresses struct{}
type UpdateAddress struct {
	ID    uint
	Input AddressInput
}
type DeleteAddress struct{ ID uint }
type SetDefaultAddress struct{ ID uint }

func (CreateAddress) addressAction()     {}
func (ListAddresses) addressAction()     {}
func (UpdateAddress) addressAction()     {}
func (DeleteAddress) addressAction()     {}
func (SetDefaultAddress) addressAction() {}

// Optional distinguishes a key that was absent from one sent as null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o Optional[T]) present() bool { return o.Set && o.Value != nil }

func (o Optional[T]) value() T {
	var zero T
	if !o.present() {
		return zero
	}
	return *o.Value
}

// AddressInput is addressData after snake_case and camelCase keys have been
// folded together.
type AddressInput struct {
	Line1       Optional[string]
	Line2       Optional[string]
	City        Optional[string]
	State       Optional[string]
	PinCode     Optional[string]
	AddressType Optional[string]
	Label       Optional[string]
	Latitude    Optional[float64]
	Longitude   Optional[float64]
}

// AddressRequest is the wire form of POST /api/addresses.
type AddressRequest struct {
	Action      string          `json:"action"`
	AddressID   json.RawMessage `json:"addressId"`
	AddressData json.RawMessage `json:"addressData"`
}

// Variant decodes the request into its action type. Unknown actions return
// ErrInvalidAction. An absent or zero addressId is left for Handle to
// report as missing; one that is not a positive integer names no address.
func (r AddressRequest) Variant() (AddressAction, error) {
	id, idErr := r.addressID()

	switch r.Action {
	case "get":
		return ListAddresses{}, nil
	case "delete":
		if idErr != nil {
			return nil, idErr
		}
		return DeleteAddress{ID: id}, nil
	case "setDefault":
		if idErr != nil {
			return nil, idErr
		}
		return SetDefaultAddress{ID: id}, nil
	case "create", "update":
		in, err := ParseAddressData(r.AddressData)
		if err != nil {
			return nil, err
		}
		if r.Action == "create" {
			return CreateAddress{Input: in}, nil
		}
		if idErr != nil {
			return nil, idErr
		}
		return UpdateAddress{ID: id, Input: in}, nil
	default:
		return nil, ErrInvalidAction
	}
}

func (r AddressRequest) addressID() (uint, error) {
	n, ok := looseInt(r.AddressID)
	if !ok || n < 0 {
		return 0, fmt.Errorf("%w: addressId %s", ErrAddressNotFound, r.AddressID)
	}
	return uint(n), nil
}

var addressKeys = []struct {
	snake, camel string
}{
	{"address_line1", "addressLine1"},
	{"address_line2", "addressLine2"},
	{"city", "city"},
	{"state", "state"},
	{"pin_code", "pinCode"},
	{"address_type", "addressType"},
	{"label", "label"},
	{"latitude", "latitude"},
	{"longitude", "longitude"},
}

// ParseAddressData reads addressData accepting either key style. The
// snake_case key wins when both are sent. Pin codes may be numbers.
func ParseAddressData(raw json.RawMessage) (AddressInput, error) {
	var in AddressInput
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return in, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return in, fmt.Errorf("%w: addressData: %v", ErrAddressFieldsMissing, err)
	}
	pick := func(i int) (json.RawMessage, bool) {
		if v, ok := fields[addressKeys[i].snake]; ok {
			return v, true
		}
		v, ok := fields[addressKeys[i].camel]
		return v, ok
	}

	targets := []*Optional[string]{&in.Line1, &in.Line2, &in.City, &in.State, &in.PinCode, &in.AddressType, &in.Label}
	for i, dst := range targets {
		v, ok := pick(i)
		if !ok {
			continue
		}
		s, err := stringValue(v)
		if err != nil {
			return in, fmt.Errorf("%w: %s: %v", ErrAddressFieldsMissing, addressKeys[i].snake, err)
		}
		*dst = Optional[string]{Set: true, Value: s}
	}

	for i, dst := range []*Optional[float64]{&in.Latitude, &in.Longitude} {
		v, ok := pick(len(targets) + i)
		if !ok {
			continue
		}
		var f *float64
		if err := json.Unmarshal(v, &f); err != nil {
			return in, fmt.Errorf("%w: %s: %v", ErrAddressFieldsMissing, addressKeys[len(targets)+i].snake, err)
		}
		*dst = Optional[float64]{Set: true, Value: f}
	}
	return in, nil
}

func stringValue(v json.RawMessage) (*string, error) {
	var s *string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		return nil, err
	}
	str := n.String()
	return &str, nil
}

func nonEmpty(o Optional[string]) (string, bool) {
	if !o.present() || *o.Value == "" {
		return "", false
	}
	return *o.Value, true
}

// newAddressFields holds what a new address must carry.
type newAddressFields struct {
	Line1       string `json:"address_line1" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	PinCode     string `json:"pin_code" validate:"required,between=5,10"`
	AddressType string `json:"address_type" validate:"in=home,work,other"`
}

// addressChanges holds the checked columns of an update; empty means
// unchanged.
type addressChanges struct {
	PinCode     string `json:"pin_code" validate:"nullable,between=5,10"`
	AddressType string `json:"address_type" validate:"nullable,in=home,work,other"`
}

// addressRuleErr maps the first failed rule onto its address error.
func addressRuleErr(errs validate.Errors) error {
	if !validate.HasErrors(errs) {
		return nil
	}
	switch first := errs[0]; first.Rule {
	case "required":
		return fmt.Errorf("%w: %s", ErrAddressFieldsMissing, first.Message)
	case "between":
		return fmt.Errorf("%w: %s", ErrAddressPinCode, first.Message)
	default:
		return fmt.Errorf("%w: %s", ErrAddressType, first.Message)
	}
}

// StorageError carries an unexpected datastore failure whose reason is
// shown to the caller.
type StorageError struct{ Err error }

func (e *StorageError) Error() string { return e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }

// AddressResult holds whichever of the fields the action produces.
type AddressResult struct {
	Address   *models.CustomerAddress
	Addresses []models.CustomerAddress
	Message   string
}

type AddressStore interface {
	FindOwned(ctx context.Context, userID string, id uint) (models.CustomerAddress, error)
	List(ctx context.Context, userID string) ([]models.CustomerAddress, error)
	Create(ctx context.Context, addr *models.CustomerAddress) error
	Update(ctx context.Context, userID string, id uint, changes map[string]any) (models.CustomerAddress, error)
	Delete(ctx context.Context, userID string, id uint) error
	SetDefault(ctx context.Context, userID string, id uint) error
}

type AddressService struct {
	store AddressStore
}

func NewAddressService(store AddressStore) *AddressService {
	return &AddressService{store: store}
}

func (s *AddressService) Handle(ctx context.Context, userID string, action AddressAction) (AddressResult, error) {
	if userID == "" {
		return AddressResult{}, ErrUnauthenticated
	}

	switch a := action.(type) {
	case CreateAddress:
		return s.create(ctx, userID, a.Input)
	case ListAddresses:
		addrs, err := s.store.List(ctx, userID)
		if err != nil {
			return AddressResult{}, &StorageError{Err: err}
		}
		return AddressResult{Addresses: addrs}, nil
	case UpdateAddress:
		return s.update(ctx, userID, a)
	case DeleteAddress:
		if a.ID == 0 {
			return AddressResult{}, ErrAddressIDRequired
		}
		if err := s.store.Delete(ctx, userID, a.ID); err != nil {
			return AddressResult{}, s.lookupErr(err)
		}
		return AddressResult{Message: "Address deleted successfully"}, nil
	case SetDefaultAddress:
		if a.ID == 0 {
			return AddressResult{}, ErrAddressIDRequired
		}
		if err := s.store.SetDefault(ctx, userID, a.ID); err != nil {
			return AddressResult{}, s.lookupErr(err)
		}
		return AddressResult{Message: "Default address updated successfully"}, nil
	default:
		return AddressResult{}, ErrInvalidAction
	}
}

func (s *AddressService) create(ctx context.Context, userID string, in AddressInput) (AddressResult, error) {
	fields := newAddressFields{
		Line1:       in.Line1.value(),
		City:        in.City.value(),
		State:       in.State.value(),
		PinCode:     in.PinCode.value(),
		AddressType: in.AddressType.value(),
	}
	if fields.AddressType == "" {
		fields.AddressType = models.AddressHome
	}
	if err := addressRuleErr(validate.Struct(fields)); err != nil {
		return AddressResult{}, err
	}

	addr := models.CustomerAddress{
		UserID:       userID,
		AddressLine1: fields.Line1,
		City:         fields.City,
		State:        fields.State,
		PinCode:      fields.PinCode,
		AddressType:  fields.AddressType,
	}
	if v, ok := nonEmpty(in.Line2); ok {
		addr.AddressLine2 = &v
	}
	if v, ok := nonEmpty(in.Label); ok {
		addr.Label = &v
	}
	if in.Latitude.present() && *in.Latitude.Value != 0 {
		addr.Latitude = in.Latitude.Value
	}
	if in.Longitude.present() && *in.Longitude.Value != 0 {
		addr.Longitude = in.Longitude.Value
	}

	if err := s.store.Create(ctx, &addr); err != nil {
		logger.WithCtx(ctx).Error("address: create failed", "error", err)
		return AddressResult{}, fmt.Errorf("%w: %v", ErrAddressSave, err)
	}
	return AddressResult{Address: &addr, Message: "Address added successfully"}, nil
}

func (s *AddressService) update(ctx context.Context, userID string, a UpdateAddress) (AddressResult, error) {
	if a.ID == 0 {
		return AddressResult{}, ErrAddressIDRequired
	}
	if _, err := s.store.FindOwned(ctx, userID, a.ID); err != nil {
		return AddressResult{}, s.lookupErr(err)
	}

	in := a.Input
	pin := strings.TrimSpace(in.PinCode.value())
	kind := strings.TrimSpace(in.AddressType.value())
	if err := addressRuleErr(validate.Struct(addressChanges{PinCode: pin, AddressType: kind})); err != nil {
		return AddressResult{}, err
	}

	changes := map[string]any{}
	if v, ok := nonEmpty(in.Line1); ok {
		changes["address_line1"] = v
	}
	if in.Line2.Set {
		changes["address_line2"] = in.Line2.Value
	}
	if v, ok := nonEmpty(in.City); ok {
		changes["city"] = v
	}
	if v, ok := nonEmpty(in.State); ok {
		changes["state"] = v
	}
	if pin != "" {
		changes["pin_code"] = pin
	}
	if kind != "" {
		changes["address_type"] = kind
	}
	if in.Label.Set {
		changes["label"] = in.Label.Value
	}
	if in.Latitude.Set {
		changes["latitude"] = in.Latitude.Value
	}
	if in.Longitude.Set {
		changes["longitude"] = in.Longitude.Value
	}
	if len(changes) == 0 {
		return AddressResult{}, ErrNoAddressChanges
	}

	addr, err := s.store.Update(ctx, userID, a.ID, changes)
	if err != nil {
		return AddressResult{}, s.lookupErr(err)
	}
	return AddressResult{Address: &addr}, nil
}

func (s *AddressService) lookupErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrAddressNotFound
	}
	return &StorageError{Err: err}
}
