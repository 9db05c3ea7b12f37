// README: HTTP route registration over the module services.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lani/internal/http/handlers"
	"lani/internal/http/middleware"
	"lani/internal/infra"
	"lani/internal/maps"
	"lani/internal/modules/matching"
	"lani/internal/modules/notification"
	"lani/internal/modules/order"
	"lani/internal/modules/pricing"
	"lani/internal/modules/user"
	"lani/internal/payments"
	"lani/internal/realtime"
)

type RouterDeps struct {
	Orders        *order.Service
	Users         *user.Service
	Matching      *matching.Service
	Pricing       *pricing.Service
	Notifications *notification.Service
	Geocoder      *maps.Geocoder
	Stripe        *payments.Stripe
	Previews      handlers.FilePreviewer
	Hub           *realtime.Hub
	Verifier      infra.TokenVerifier
	Log           *slog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log), middleware.Metrics())

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	orderHandler := handlers.NewOrderHandler(deps.Orders, deps.Users, deps.Previews)

	// Tracking lookup is public: the receiver follows the code from an SMS
	// without an account.
	r.GET("/api/track/:code", orderHandler.Track)

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	userHandler := handlers.NewUserHandler(deps.Users)
	api.POST("/users", userHandler.Register)
	api.GET("/users/me", userHandler.Me)
	api.PATCH("/users/me", userHandler.UpdateProfile)
	api.PUT("/users/me/city", userHandler.SetCity)
	api.PUT("/users/me/location", userHandler.PingLocation)

	api.POST("/orders", orderHandler.Create)
	api.GET("/orders", orderHandler.ListMine)
	api.GET("/orders/:id", orderHandler.Get)
	api.POST("/orders/:id/accept", orderHandler.Accept)
	api.POST("/orders/:id/complete", orderHandler.Complete)
	api.POST("/orders/:id/cancel", orderHandler.Cancel)
	api.PUT("/orders/:id/payment", orderHandler.UpdatePayment)

	riderHandler := handlers.NewRiderHandler(deps.Matching, deps.Users, deps.Previews)
	api.GET("/rider/orders", riderHandler.Candidates)
	api.GET("/rider/load", riderHandler.Load)

	notificationHandler := handlers.NewNotificationHandler(deps.Notifications)
	api.GET("/notifications", notificationHandler.List)
	api.GET("/notifications/unread", notificationHandler.UnreadCount)
	api.POST("/notifications/:id/read", notificationHandler.MarkRead)
	api.POST("/notifications/read-all", notificationHandler.MarkAllRead)

	geoHandler := handlers.NewGeoHandler(deps.Geocoder, deps.Pricing)
	api.GET("/geo/autocomplete", geoHandler.Autocomplete)
	api.GET("/geo/resolve", geoHandler.Resolve)
	api.POST("/pricing/quote", geoHandler.Quote)

	paymentHandler := handlers.NewPaymentHandler(deps.Stripe, deps.Orders, deps.Previews)
	api.POST("/orders/:id/payment/hold", paymentHandler.Hold)
	api.POST("/orders/:id/payment/capture", paymentHandler.Capture)
	api.POST("/orders/:id/payment/release", paymentHandler.Release)

	adminHandler := handlers.NewAdminHandler(deps.Orders, deps.Previews)
	api.GET("/admin/orders", adminHandler.ListOrders)
	api.GET("/admin/stats", adminHandler.Stats)

	if deps.Hub != nil {
		wsHandler := handlers.NewWSHandler(deps.Hub)
		api.GET("/ws", wsHandler.Subscribe)
	}

	return r
}
