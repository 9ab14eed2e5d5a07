package controllers

import (
	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/bind"
	"github.com/shashiranjanraj/tiffin/pkg/ctx"
	"github.com/shashiranjanraj/tiffin/pkg/response"
)

type OrderController struct {
	service *services.OrderService
}

func NewOrderController(service *services.OrderService) *OrderController {
	return &OrderController{service: service}
}

// Store places an order. An Idempotency-Key header takes precedence over
// the body's idempotencyKey.
func (c *OrderController) Store(x *ctx.Context) {
	userID, ok := requireCaller(x)
	if !ok {
		return
	}

	var req services.OrderRequest
	if err := bind.Decode(x.R, &req); err != nil {
		x.Log().Debug("order: unreadable body", "error", err)
		x.Fail("Failed to create order")
		return
	}
	in := req.Input()
	if key := x.Header("Idempotency-Key"); key != "" {
		in.IdempotencyKey = key
	}

	conf, err := c.service.PlaceOrder(x.Context(), userID, in)
	if err != nil {
		x.Fail(messageFor(err, orderMessages, "Failed to create order"))
		return
	}

	x.OK(response.Payload{
		"orderId":     conf.OrderID,
		"totalAmount": conf.Total.InexactFloat64(),
		"deliveryFee": conf.DeliveryFee.InexactFloat64(),
		"taxAmount":   conf.Tax.InexactFloat64(),
		"subtotal":    conf.Subtotal.InexactFloat64(),
	})
}
