// Package kernel assembles the HTTP handler: global middleware, the
// controllers with their repositories, and the route table.
package kernel

import (
	"errors"
	"net/http"
	"time"

	"github.com/shashiranjanraj/tiffin/app/controllers"
	menugql "github.com/shashiranjanraj/tiffin/app/graphql"
	"github.com/shashiranjanraj/tiffin/app/jobs"
	"github.com/shashiranjanraj/tiffin/app/pricing"
	"github.com/shashiranjanraj/tiffin/app/repositories"
	"github.com/shashiranjanraj/tiffin/app/routes"
	"github.com/shashiranjanraj/tiffin/app/services"
	"github.com/shashiranjanraj/tiffin/pkg/event"
	gqlserver "github.com/shashiranjanraj/tiffin/pkg/graphql"
	"github.com/shashiranjanraj/tiffin/pkg/logger"
	"github.com/shashiranjanraj/tiffin/pkg/metrics"
	"github.com/shashiranjanraj/tiffin/pkg/middleware"
	"github.com/shashiranjanraj/tiffin/pkg/notification"
	"github.com/shashiranjanraj/tiffin/pkg/reqid"
	"github.com/shashiranjanraj/tiffin/pkg/response"
	"github.com/shashiranjanraj/tiffin/pkg/router"
	"github.com/shashiranjanraj/tiffin/pkg/storage"
	"github.com/shashiranjanraj/tiffin/pkg/ws"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators the handler is built from.
type Deps struct {
	DB      *gorm.DB
	Disk    storage.Disk
	Hub     *ws.Hub
	Limiter *middleware.RateLimiter
	Policy  pricing.Policy
	MenuTTL time.Duration
	// Bus receives order events; nil means the process-wide bus.
	Bus *event.Bus
}

type HTTP struct {
	router *router.Router
}

func NewHTTP(d Deps) (*HTTP, error) {
	if d.DB == nil {
		return nil, errors.New("kernel: database is required")
	}
	if d.Disk == nil {
		return nil, errors.New("kernel: storage disk is required")
	}

	addresses := repositories.NewAddressRepository(d.DB)
	menu := repositories.NewMenuRepository(d.DB)
	orders := repositories.NewOrderRepository(d.DB)
	keys := repositories.NewIdempotencyRepository(d.DB)
	profiles := repositories.NewProfileRepository(d.DB)
	verifications := repositories.NewVerificationRepository(d.DB)
	notes := repositories.NewNotificationRepository(d.DB)

	orderService := services.NewOrderService(addresses, menu, orders, keys, d.Policy)
	if d.Bus != nil {
		orderService.WithBus(d.Bus)
	}
	menuService := services.NewMenuService(menu, d.MenuTTL)

	schema, err := menugql.NewSchema(menuService)
	if err != nil {
		return nil, err
	}

	r := router.New()

	// Outermost first. The request id must exist before Logger runs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	if d.Limiter != nil {
		r.Use(d.Limiter.Middleware)
	}
	r.Use(middleware.Identify)

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", health(d.DB))

	var feed http.HandlerFunc
	if d.Hub != nil {
		feed = orderFeed(d.Hub, profiles)
	}

	routes.RegisterAPI(r, routes.Handlers{
		Orders:       controllers.NewOrderController(orderService),
		Addresses:    controllers.NewAddressController(services.NewAddressService(addresses)),
		Menu:         controllers.NewMenuController(menuService),
		Profile:      controllers.NewProfileController(services.NewProfileService(profiles, d.Disk)),
		Verification: controllers.NewVerificationController(services.NewVerificationService(profiles, verifications, notification.New(notes))),
		Admin:        controllers.NewAdminController(services.NewAdminService(notes)),
		GraphQL:      gqlserver.Handler(schema),
		OrderFeed:    feed,
	})

	return &HTTP{router: r}, nil
}

func (k *HTTP) Handler() http.Handler { return k.router.Handler() }

func (k *HTTP) Routes() []router.RouteInfo { return k.router.Routes() }

func health(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		response.JSON(w, http.StatusOK, response.Payload{"status": "ok"})
	}
}

// orderFeed joins a food maker's websocket to the room their new orders
// are published to.
func orderFeed(hub *ws.Hub, profiles *repositories.ProfileRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromCtx(r)
		if !ok {
			response.Unauthorized(w)
			return
		}
		maker, err := profiles.FoodMakerOf(r.Context(), userID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			logger.WithCtx(r.Context()).Error("order feed: food maker lookup failed", "error", err)
			response.Fail(w, "Failed to open order feed")
			return
		}
		if maker == nil {
			response.Forbidden(w)
			return
		}
		ws.Upgrade(w, r, hub, jobs.FoodMakerRoom(maker.ID))
	}
}
