package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/app/repositories"
	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAddressService(t *testing.T) *services.AddressService {
	t.Helper()
	db := testkit.NewDB(t, models.All()...)
	return services.NewAddressService(repositories.NewAddressRepository(db))
}

func action(t *testing.T, body string) services.AddressAction {
	t.Helper()
	var req services.AddressRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	a, err := req.Variant()
	require.NoError(t, err)
	return a
}

func TestParseAddressDataAcceptsBothStyles(t *testing.T) {
	snake, err := services.ParseAddressData(json.RawMessage(`{"address_line1":"1 MG Road","pin_code":"560001","address_type":"work"}`))
	require.NoError(t, err)
	camel, err := services.ParseAddressData(json.RawMessage(`{"addressLine1":"1 MG Road","pinCode":560001,"addressType":"work"}`))
	require.NoError(t, err)

	assert.Equal(t, "1 MG Road", *snake.Line1.Value)
	assert.Equal(t, *snake.Line1.Value, *camel.Line1.Value)
	assert.Equal(t, "560001", *camel.PinCode.Value)
	assert.Equal(t, *snake.AddressType.Value, *camel.AddressType.Value)
	assert.False(t, camel.City.Set)
}

func TestParseAddressDataKeepsExplicitNull(t *testing.T) {
	in, err := services.ParseAddressData(json.RawMessage(`{"label":null,"latitude":12.97}`))
	require.NoError(t, err)
	assert.True(t, in.Label.Set)
	assert.Nil(t, in.Label.Value)
	assert.InDelta(t, 12.97, *in.Latitude.Value, 1e-9)
	assert.False(t, in.Longitude.Set)
}

func TestAddressRequestUnknownAction(t *testing.T) {
	_, err := services.AddressRequest{Action: "archive"}.Variant()
	assert.ErrorIs(t, err, services.ErrInvalidAction)
}

func TestCreateAddressValidation(t *testing.T) {
	svc := newAddressService(t)
	cases := []struct {
		name string
		data string
		want error
	}{
		{"missing city", `{"address_line1":"a","state":"KA","pin_code":"560001"}`, services.ErrAddressFieldsMissing},
		{"short pin", `{"address_line1":"a","city":"b","state":"KA","pin_code":"5600"}`, services.ErrAddressPinCode},
		{"long pin", `{"address_line1":"a","city":"b","state":"KA","pin_code":"56000112345"}`, services.ErrAddressPinCode},
		{"bad type", `{"address_line1":"a","city":"b","state":"KA","pin_code":"560001","address_type":"villa"}`, services.ErrAddressType},
		{"blank line", `{"address_line1":"  ","city":"b","state":"KA","pin_code":"560001"}`, services.ErrAddressFieldsMissing},
		{"missing fields before bad pin", `{"address_line1":"a","pin_code":"12","address_type":"villa"}`, services.ErrAddressFieldsMissing},
		{"bad pin before bad type", `{"address_line1":"a","city":"b","state":"KA","pin_code":"12","address_type":"villa"}`, services.ErrAddressPinCode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Handle(context.Background(), "u-1", action(t, `{"action":"create","addressData":`+tc.data+`}`))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAddressRequestIDs(t *testing.T) {
	svc := newAddressService(t)
	cases := []struct {
		name string
		body string
		want error
	}{
		{"absent", `{"action":"delete"}`, services.ErrAddressIDRequired},
		{"zero", `{"action":"setDefault","addressId":0}`, services.ErrAddressIDRequired},
		{"empty string", `{"action":"update","addressId":"","addressData":{"city":"x"}}`, services.ErrAddressIDRequired},
		{"negative", `{"action":"delete","addressId":-4}`, services.ErrAddressNotFound},
		{"not a number", `{"action":"delete","addressId":"home"}`, services.ErrAddressNotFound},
		{"unknown numeric string", `{"action":"setDefault","addressId":"77"}`, services.ErrAddressNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req services.AddressRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			a, err := req.Variant()
			if err == nil {
				_, err = svc.Handle(context.Background(), "u-1", a)
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateAddressValidation(t *testing.T) {
	svc := newAddressService(t)
	ctx := context.Background()
	created, err := svc.Handle(ctx, "u-1", action(t, `{"action":"create","addressData":{"addressLine1":"1 MG Road","city":"Bengaluru","state":"KA","pinCode":"560001"}}`))
	require.NoError(t, err)
	id := created.Address.ID

	_, err = svc.Handle(ctx, "u-1", services.UpdateAddress{ID: id, Input: mustParse(t, `{"address_type":"castle"}`)})
	assert.ErrorIs(t, err, services.ErrAddressType)

	res, err := svc.Handle(ctx, "u-1", services.UpdateAddress{ID: id, Input: mustParse(t, `{"address_type":"work","pin_code":"5600010"}`)})
	require.NoError(t, err)
	assert.Equal(t, models.AddressWork, res.Address.AddressType)
	assert.Equal(t, "5600010", res.Address.PinCode)
}

func TestAddressLifecycle(t *testing.T) {
	svc := newAddressService(t)
	ctx := context.Background()

	first, err := svc.Handle(ctx, "u-1", action(t, `{"action":"create","addressData":{"addressLine1":"1 MG Road","city":"Bengaluru","state":"KA","pinCode":"560001"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Address added successfully", first.Message)
	assert.True(t, first.Address.IsDefault)
	assert.Equal(t, models.AddressHome, first.Address.AddressType)

	second, err := svc.Handle(ctx, "u-1", action(t, `{"action":"create","addressData":{"address_line1":"2 Church St","city":"Bengaluru","state":"KA","pin_code":"560002","address_type":"work","label":"Office"}}`))
	require.NoError(t, err)
	assert.False(t, second.Address.IsDefault)
	assert.Equal(t, "Office", *second.Address.Label)

	updated, err := svc.Handle(ctx, "u-1", services.UpdateAddress{ID: second.Address.ID, Input: mustParse(t, `{"city":"Mysuru","label":null}`)})
	require.NoError(t, err)
	assert.Equal(t, "Mysuru", updated.Address.City)
	assert.Nil(t, updated.Address.Label)

	_, err = svc.Handle(ctx, "u-1", services.UpdateAddress{ID: second.Address.ID, Input: mustParse(t, `{}`)})
	assert.ErrorIs(t, err, services.ErrNoAddressChanges)
	_, err = svc.Handle(ctx, "u-1", services.UpdateAddress{ID: second.Address.ID, Input: mustParse(t, `{"pin_code":"12"}`)})
	assert.ErrorIs(t, err, services.ErrAddressPinCode)
	_, err = svc.Handle(ctx, "u-2", services.UpdateAddress{ID: second.Address.ID, Input: mustParse(t, `{"city":"x"}`)})
	assert.ErrorIs(t, err, services.ErrAddressNotFound)
	_, err = svc.Handle(ctx, "u-1", services.UpdateAddress{Input: mustParse(t, `{"city":"x"}`)})
	assert.ErrorIs(t, err, services.ErrAddressIDRequired)

	res, err := svc.Handle(ctx, "u-1", services.SetDefaultAddress{ID: second.Address.ID})
	require.NoError(t, err)
	assert.Equal(t, "Default address updated successfully", res.Message)

	list, err := svc.Handle(ctx, "u-1", services.ListAddresses{})
	require.NoError(t, err)
	require.Len(t, list.Addresses, 2)
	assert.Equal(t, second.Address.ID, list.Addresses[0].ID)
	assert.True(t, list.Addresses[0].IsDefault)
	assert.False(t, list.Addresses[1].IsDefault)

	res, err = svc.Handle(ctx, "u-1", services.DeleteAddress{ID: second.Address.ID})
	require.NoError(t, err)
	assert.Equal(t, "Address deleted successfully", res.Message)

	list, err = svc.Handle(ctx, "u-1", services.ListAddresses{})
	require.NoError(t, err)
	require.Len(t, list.Addresses, 1)
	assert.True(t, list.Addresses[0].IsDefault)

	_, err = svc.Handle(ctx, "u-1", services.DeleteAddress{ID: second.Address.ID})
	assert.ErrorIs(t, err, services.ErrAddressNotFound)
	_, err = svc.Handle(ctx, "u-1", services.SetDefaultAddress{})
	assert.ErrorIs(t, err, services.ErrAddressIDRequired)
}

func TestAddressRequiresCaller(t *testing.T) {
	svc := newAddressService(t)
	_, err := svc.Handle(context.Background(), "", services.ListAddresses{})
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func mustParse(t *testing.T, raw string) services.AddressInput {
	t.Helper()
	in, err := services.ParseAddressData(json.RawMessage(raw))
	require.NoError(t, err)
	return in
}
