// Package listeners connects domain events to queued jobs.
package listeners

import (
	"context"

	"github.com/shashiranjanraj/tiffin/app/jobs"
	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/event"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/queue"
)

// Register subscribes the application's listeners on bus.
func Register(bus *event.Bus, m *queue.Manager) {
	bus.Listen(services.EventOrderPlaced, func(ctx context.Context, payload any) {
		placed, ok := payload.(services.OrderPlaced)
		if !ok {
			logger.WithCtx(ctx).Error("listeners: unexpected payload", "event", services.EventOrderPlaced)
			return
		}
		job := &jobs.NotifyFoodMakerJob{
			OrderID:     placed.OrderID,
			FoodMakerID: placed.FoodMakerID,
			CustomerID:  placed.CustomerID,
			Total:       placed.Total.String(),
			ItemCount:   placed.ItemCount,
		}
		if err := m.Dispatch(ctx, job); err != nil {
			logger.WithCtx(ctx).Error("listeners: dispatch notify job failed", "order_id", placed.OrderID, "error", err)
		}
	})
}
