// README: Entry point; loads config, wires module services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"lani/internal/config"
	httptransport "lani/internal/http"
	"lani/internal/infra"
	"lani/internal/ingest"
	"lani/internal/logging"
	"lani/internal/mail"
	"lani/internal/maps"
	"lani/internal/modules/matching"
	"lani/internal/modules/notification"
	"lani/internal/modules/order"
	"lani/internal/modules/pricing"
	"lani/internal/modules/user"
	"lani/internal/payments"
	"lani/internal/push"
	"lani/internal/realtime"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.NewLogger(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		log.Fatal("LANI_FIREBASE_PROJECT_ID is required")
	}
	fb, err := infra.NewFirebase(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile, cfg.Firebase.StorageBucket)
	if err != nil {
		log.Fatalf("firebase init: %v", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()
	if cfg.DB.AutoMigrate {
		if err := infra.Migrate(ctx, dbPool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	// Without Redis every instance falls back to a process-local bus; fine
	// for a single replica, required to be Redis when scaled out.
	var bus realtime.Bus = realtime.NewMemoryBus()
	if cfg.Redis.Addr != "" {
		bus = realtime.NewRedisBus(infra.NewRedis(cfg.Redis.Addr), logger)
	}

	pusher := push.NewOneSignal(cfg.Push.OneSignalAppID, cfg.Push.OneSignalKey)
	notificationSvc := notification.NewService(notification.NewPGStore(dbPool), bus, pusher, logger)

	mailer := mail.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From, cfg.SMTP.FromName, logger)

	var sink user.LocationSink
	if len(cfg.Kafka.Brokers) > 0 {
		producer := ingest.NewLocationProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		sink = producer
	}
	userSvc := user.NewService(user.NewPGStore(dbPool), notificationSvc, mailer, sink, logger)

	pricingSvc := pricing.NewService(pricing.NewPGStore(dbPool))

	orderStore := order.NewPGStore(dbPool)
	orderSvc := order.NewService(order.ServiceDeps{
		Store:     orderStore,
		Pricing:   pricingSvc,
		Files:     fb,
		Notifier:  notificationSvc,
		Mailer:    mailer,
		Locations: userSvc,
		Bus:       bus,
		MaxActive: cfg.Dispatch.MaxActiveOrders,
		Log:       logger,
	})

	matchingSvc := matching.NewService(orderStore, cfg.Dispatch.MaxActiveOrders)

	var geocoder *maps.Geocoder
	if cfg.Maps.APIKey != "" {
		geocoder, err = maps.NewGeocoder(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
	}

	hub, err := realtime.NewHub(bus, logger, realtime.TopicOrders, realtime.TopicNotifications)
	if err != nil {
		log.Fatalf("realtime hub: %v", err)
	}
	defer hub.Close()

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Orders:        orderSvc,
		Users:         userSvc,
		Matching:      matchingSvc,
		Pricing:       pricingSvc,
		Notifications: notificationSvc,
		Geocoder:      geocoder,
		Stripe:        payments.NewStripe(cfg.Stripe.APIKey),
		Previews:      fb,
		Hub:           hub,
		Verifier:      fb,
		Log:           logger,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, handler, logger)
	if err := server.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
