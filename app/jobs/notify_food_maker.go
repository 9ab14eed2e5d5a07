// Package jobs holds the application's queued background work.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/notification"
	"github.com/shashiranjanraj/tiffin/pkg/queue"
	"github.com/shashiranjanraj/tiffin/pkg/ws"
)

const NotifyFoodMakerName = "notify_food_maker"

// Deps are the collaborators jobs reach at run time.
type Deps struct {
	Hub        *ws.Hub
	Notifier   *notification.Notifier
	WebhookURL string
}

// FoodMakerRoom is the websocket room a food maker's dashboard joins.
func FoodMakerRoom(foodMakerID uint) string {
	return fmt.Sprintf("food-maker:%d", foodMakerID)
}

// NotifyFoodMakerJob tells a food maker about a new order over websocket
// and, when configured, a webhook.
type NotifyFoodMakerJob struct {
	OrderID     uint   `json:"order_id"`
	FoodMakerID uint   `json:"food_maker_id"`
	CustomerID  string `json:"customer_id"`
	Total       string `json:"total"`
	ItemCount   int    `json:"item_count"`

	deps Deps
}

func (j *NotifyFoodMakerJob) JobName() string { return NotifyFoodMakerName }

func (j *NotifyFoodMakerJob) Handle(ctx context.Context) error {
	msg, err := json.Marshal(map[string]any{"event": "order.placed", "order": j})
	if err != nil {
		return fmt.Errorf("notify food maker: encode: %w", err)
	}
	if j.deps.Hub != nil && !j.deps.Hub.Publish(FoodMakerRoom(j.FoodMakerID), msg) {
		logger.WithCtx(ctx).Warn("notify food maker: websocket publish dropped", "order_id", j.OrderID)
	}

	if j.deps.WebhookURL == "" || j.deps.Notifier == nil {
		return nil
	}
	return j.deps.Notifier.Send(ctx, orderWebhook{url: j.deps.WebhookURL, job: j})
}

type orderWebhook struct {
	url string
	job *NotifyFoodMakerJob
}

func (orderWebhook) Via() []string { return []string{notification.Webhook} }

func (w orderWebhook) ToWebhook() notification.WebhookData {
	return notification.WebhookData{URL: w.url, Event: "order.placed", Payload: w.job}
}

// Register makes the job types runnable by m.
func Register(m *queue.Manager, deps Deps) {
	m.Register(NotifyFoodMakerName, func() queue.Job { return &NotifyFoodMakerJob{deps: deps} })
}
