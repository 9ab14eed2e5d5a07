package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/tiffin/app/models"
	"github.com/shashiranjanraj/tiffin/app/pricing"
	"github.com/shashiranjanraj/tiffin/app/repositories"
	"github.com/shashiranjanraj/tiffin/pkg/event"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/metrics"
	"github.com/shopspring/decimal"
)

// EventOrderPlaced is fired after an order commits.
const EventOrderPlaced = "order.placed"

type CartItem struct {
	MenuItemID uint `json:"menuItemId"`
	Quantity   int  `json:"quantity"`
}

type PlaceOrderInput struct {
	CartItems           []CartItem `json:"cartItems"`
	DeliveryAddressID   uint       `json:"deliveryAddressId"`
	PaymentMethod       string     `json:"paymentMethod"`
	DeliveryTimeSlot    *string    `json:"deliveryTimeSlot"`
	SpecialInstructions *string    `json:"specialInstructions"`
	IdempotencyKey      string     `json:"idempotencyKey"`

	// Set by OrderRequest.Input when the wire value could not be read.
	malformedCart    bool
	malformedAddress bool
}

// maxLineQuantity caps one cart line, after duplicate lines are merged.
const maxLineQuantity = 1000

// Confirmation is what the caller gets back for a placed (or replayed) order.
type Confirmation struct {
	OrderID     uint
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
	Replayed    bool
}

// OrderPlaced is the order.placed event payload.
type OrderPlaced struct {
	OrderID     uint            `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	FoodMakerID uint            `json:"food_maker_id"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
}

type AddressFinder interface {
	FindOwned(ctx context.Context, userID string, id uint) (models.CustomerAddress, error)
}

type MenuFinder interface {
	FindAvailable(ctx context.Context, ids []uint) ([]models.MenuItem, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order, items []models.OrderItem, idempotencyKey string) error
	Find(ctx context.Context, id uint) (models.Order, error)
}

type IdempotencyStore interface {
	Lookup(ctx context.Context, customerID, key string) (uint, error)
}

type OrderService struct {
	addresses AddressFinder
	menu      MenuFinder
	orders    OrderStore
	keys      IdempotencyStore
	policy    pricing.Policy
	fire      func(ctx context.Context, name string, payload any)
}

func NewOrderService(addresses AddressFinder, menu MenuFinder, orders OrderStore, keys IdempotencyStore, policy pricing.Policy) *OrderService {
	return &OrderService{
		addresses: addresses,
		menu:      menu,
		orders:    orders,
		keys:      keys,
		policy:    policy,
		fire:      event.FireAsync,
	}
}

// WithBus sends order events to b instead of the process-wide bus.
func (s *OrderService) WithBus(b *event.Bus) *OrderService {
	s.fire = b.FireAsync
	return s
}

// PlaceOrder validates the cart, prices it and stores the order. The
// returned error wraps one of the order sentinel errors.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID string, in PlaceOrderInput) (Confirmation, error) {
	log := logger.WithCtx(ctx)

	if customerID == "" {
		return Confirmation{}, reject("unauthenticated", ErrUnauthenticated)
	}

	if in.IdempotencyKey != "" {
		conf, found, err := s.replay(ctx, customerID, in.IdempotencyKey)
		if err != nil {
			log.Error("order: idempotency lookup failed", "error", err)
			return Confirmation{}, reject("persistence", fmt.Errorf("%w: %v", ErrPersistence, err))
		}
		if found {
			log.Info("order: replayed", "order_id", conf.OrderID)
			return conf, nil
		}
	}

	if in.malformedCart {
		return Confirmation{}, reject("empty_cart", ErrEmptyCart)
	}
	lines, err := mergeCart(in.CartItems)
	if err != nil {
		return Confirmation{}, reject("empty_cart", err)
	}
	if in.DeliveryAddressID == 0 && !in.malformedAddress {
		return Confirmation{}, reject("missing_address", ErrMissingAddress)
	}
	if in.PaymentMethod == "" {
		return Confirmation{}, reject("missing_payment", ErrMissingPayment)
	}
	if in.malformedAddress {
		return Confirmation{}, reject("invalid_address", ErrInvalidAddress)
	}

	if _, err := s.addresses.FindOwned(ctx, customerID, in.DeliveryAddressID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return Confirmation{}, reject("invalid_address", ErrInvalidAddress)
		}
		log.Error("order: address lookup failed", "error", err)
		return Confirmation{}, reject("persistence", fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	ids := make([]uint, len(lines))
	for i, l := range lines {
		ids[i] = l.MenuItemID
	}
	items, err := s.menu.FindAvailable(ctx, ids)
	if err != nil {
		log.Error("order: menu lookup failed", "error", err)
		return Confirmation{}, reject("persistence", fmt.Errorf("%w: %v", ErrPersistence, err))
	}
	if len(items) != len(ids) {
		return Confirmation{}, reject("items_unavailable", ErrItemsUnavailable)
	}

	byID := make(map[uint]models.MenuItem, len(items))
	makerID := items[0].FoodMakerID
	for _, it := range items {
		if it.FoodMakerID != makerID {
			return Confirmation{}, reject("multiple_food_makers", ErrMultipleFoodMakers)
		}
		byID[it.ID] = it
	}

	priced := make([]pricing.Line, len(lines))
	for i, l := range lines {
		priced[i] = pricing.Line{MenuItemID: l.MenuItemID, Quantity: l.Quantity, UnitPrice: byID[l.MenuItemID].Price}
	}
	quote := s.policy.Quote(priced)

	order := &models.Order{
		CustomerID:          customerID,
		FoodMakerID:         makerID,
		DeliveryAddressID:   in.DeliveryAddressID,
		Subtotal:            quote.Subtotal,
		DeliveryFee:         quote.DeliveryFee,
		TaxAmount:           quote.Tax,
		TotalAmount:         quote.Total,
		PaymentMethod:       in.PaymentMethod,
		DeliveryTimeSlot:    in.DeliveryTimeSlot,
		SpecialInstructions: in.SpecialInstructions,
		OrderStatus:         models.OrderStatusPending,
		PaymentStatus:       models.PaymentStatusPending,
	}
	rows := make([]models.OrderItem, len(quote.Lines))
	for i, l := range quote.Lines {
		rows[i] = models.OrderItem{MenuItemID: l.MenuItemID, Quantity: l.Quantity, UnitPrice: l.UnitPrice, TotalPrice: l.Total}
	}

	if err := s.orders.Create(ctx, order, rows, in.IdempotencyKey); err != nil {
		// A concurrent request with the same key may have won the race.
		if in.IdempotencyKey != "" {
			if conf, found, lookupErr := s.replay(ctx, customerID, in.IdempotencyKey); lookupErr == nil && found {
				return conf, nil
			}
		}
		log.Error("order: create failed", "error", err)
		return Confirmation{}, reject("persistence", fmt.Errorf("%w: %v", ErrPersistence, err))
	}

	metrics.OrdersPlaced.Inc()
	metrics.OrderValue.Observe(quote.Total.InexactFloat64())
	log.Info("order: placed", "order_id", order.ID, "food_maker_id", makerID, "total", quote.Total.String())

	s.fire(ctx, EventOrderPlaced, OrderPlaced{
		OrderID:     order.ID,
		CustomerID:  customerID,
		FoodMakerID: makerID,
		Total:       quote.Total,
		ItemCount:   len(rows),
	})

	return Confirmation{
		OrderID:     order.ID,
		Subtotal:    quote.Subtotal,
		DeliveryFee: quote.DeliveryFee,
		Tax:         quote.Tax,
		Total:       quote.Total,
	}, nil
}

func (s *OrderService) replay(ctx context.Context, customerID, key string) (Confirmation, bool, error) {
	orderID, err := s.keys.Lookup(ctx, customerID, key)
	if errors.Is(err, repositories.ErrNotFound) {
		return Confirmation{}, false, nil
	}
	if err != nil {
		return Confirmation{}, false, err
	}
	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return Confirmation{}, false, err
	}
	return Confirmation{
		OrderID:     order.ID,
		Subtotal:    order.Subtotal,
		DeliveryFee: order.DeliveryFee,
		Tax:         order.TaxAmount,
		Total:       order.TotalAmount,
		Replayed:    true,
	}, true, nil
}

// mergeCart folds lines with the same menu item together, keeping first
// appearance order. Missing or zero quantities count as one.
func mergeCart(cart []CartItem) ([]CartItem, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}
	merged := make([]CartItem, 0, len(cart))
	index := make(map[uint]int, len(cart))
	for _, c := range cart {
		if c.Quantity < 0 || c.Quantity > maxLineQuantity {
			return nil, ErrEmptyCart
		}
		if c.Quantity == 0 {
			c.Quantity = 1
		}
		if i, ok := index[c.MenuItemID]; ok {
			merged[i].Quantity += c.Quantity
			if merged[i].Quantity > maxLineQuantity {
				return nil, ErrEmptyCart
			}
			continue
		}
		index[c.MenuItemID] = len(merged)
		merged = append(merged, c)
	}
	return merged, nil
}

func reject(reason string, err error) error {
	metrics.OrderRejections.WithLabelValues(reason).Inc()
	return err
}
