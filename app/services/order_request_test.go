package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wireInput(t *testing.T, body string) services.PlaceOrderInput {
	t.Helper()
	var req services.OrderRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req.Input()
}

func TestOrderRequestAcceptsNumericStrings(t *testing.T) {
	f := newOrderFixture(t)
	body := fmt.Sprintf(`{"cartItems":[{"menuItemId":"%d","quantity":"2"}],"deliveryAddressId":"%d","paymentMethod":"cod","specialInstructions":"ring twice"}`,
		f.dal.ID, f.address.ID)

	conf, err := f.svc.PlaceOrder(context.Background(), "cust-1", wireInput(t, body))
	require.NoError(t, err)
	assert.True(t, conf.Subtotal.Equal(dec("240")), conf.Subtotal.String())

	var order models.Order
	require.NoError(t, f.db.First(&order, conf.OrderID).Error)
	require.NotNil(t, order.SpecialInstructions)
	assert.Equal(t, "ring twice", *order.SpecialInstructions)
}

func TestOrderRequestMalformedValues(t *testing.T) {
	f := newOrderFixture(t)
	line := fmt.Sprintf(`{"menuItemId":%d,"quantity":1}`, f.dal.ID)
	addr := fmt.Sprint(f.address.ID)

	cases := []struct {
		name string
		body string
		want error
	}{
		{"cart is an object", `{"cartItems":{"menuItemId":1},"deliveryAddressId":` + addr + `,"paymentMethod":"cod"}`, services.ErrEmptyCart},
		{"cart line is a string", `{"cartItems":["thali"],"deliveryAddressId":` + addr + `,"paymentMethod":"cod"}`, services.ErrEmptyCart},
		{"quantity not a number", fmt.Sprintf(`{"cartItems":[{"menuItemId":%d,"quantity":"lots"}],"deliveryAddressId":%s,"paymentMethod":"cod"}`, f.dal.ID, addr), services.ErrEmptyCart},
		{"quantity past the cap", fmt.Sprintf(`{"cartItems":[{"menuItemId":%d,"quantity":5000}],"deliveryAddressId":%s,"paymentMethod":"cod"}`, f.dal.ID, addr), services.ErrEmptyCart},
		{"menu item id not a number", `{"cartItems":[{"menuItemId":"thali"}],"deliveryAddressId":` + addr + `,"paymentMethod":"cod"}`, services.ErrItemsUnavailable},
		{"address id zero", `{"cartItems":[` + line + `],"deliveryAddressId":0,"paymentMethod":"cod"}`, services.ErrMissingAddress},
		{"address id empty string", `{"cartItems":[` + line + `],"deliveryAddressId":"","paymentMethod":"cod"}`, services.ErrMissingAddress},
		{"address id not a number", `{"cartItems":[` + line + `],"deliveryAddressId":"home","paymentMethod":"cod"}`, services.ErrInvalidAddress},
		{"address id negative", `{"cartItems":[` + line + `],"deliveryAddressId":-3,"paymentMethod":"cod"}`, services.ErrInvalidAddress},
		{"bad address id still needs payment", `{"cartItems":[` + line + `],"deliveryAddressId":"home"}`, services.ErrMissingPayment},
		{"payment method not a string", `{"cartItems":[` + line + `],"deliveryAddressId":` + addr + `,"paymentMethod":{}}`, services.ErrMissingPayment},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.PlaceOrder(context.Background(), "cust-1", wireInput(t, tc.body))
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Zero(t, f.count(t, &models.Order{}))
}
