package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	appoutbox "github.com/Shreenikagenaiapps/nestmate-app/internal/app/outbox"
	authsvc "github.com/Shreenikagenaiapps/nestmate-app/internal/app/services/auth"
	catalogsvc "github.com/Shreenikagenaiapps/nestmate-app/internal/app/services/catalog"
	chatsvc "github.com/Shreenikagenaiapps/nestmate-app/internal/app/services/chat"
	domainapartment "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/apartment"
	domainauth "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/auth"
	domainbooking "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/booking"
	domainchat "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/chat"
	domainlistings "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
	domainuser "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/user"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/broker/kafka"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/config"
	mongodb "github.com/Shreenikagenaiapps/nestmate-app/internal/infra/db/mongo"
	ginserver "github.com/Shreenikagenaiapps/nestmate-app/internal/infra/http/gin"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/obs"
	infraoutbox "github.com/Shreenikagenaiapps/nestmate-app/internal/infra/outbox"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/security"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/storage/memory"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.SessionTTL = 24 * time.Hour
		cfg.OutboxPollInterval = 500 * time.Millisecond
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app := buildApplication(cfg, logger)
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.readiness,
	}, app.handlers)

	seedPath := getenv("APARTMENTS_SEED", defaultApartmentSeedPath())
	if err := seedApartments(ctx, app.apartments, seedPath, logger); err != nil {
		logger.Warn("apartment seed failed", "error", err, "path", seedPath)
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
		if app.producer != nil {
			if err := app.producer.Close(); err != nil {
				logger.Error("kafka producer close failed", "error", err)
			}
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	apartments domainapartment.Repository
	readiness  func() error
	worker     *infraoutbox.Worker
	producer   *kafka.Producer
}

func buildApplication(cfg config.Config, logger *slog.Logger) application {
	var (
		users      domainuser.Repository
		sessions   domainauth.SessionStore
		apartments domainapartment.Repository
		listings   domainlistings.Repository
		bookings   domainbooking.Repository
		chatStore  domainchat.Store
		box        appoutbox.Outbox
		boxStore   infraoutbox.Store
		readiness  = func() error { return nil }
	)

	if cfg.MongoURI != "" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Warn("mongo unavailable, using in-memory stores", "error", err)
		} else {
			users = mongodb.NewUserRepository(client.DB)
			sessions = mongodb.NewSessionStore(client.DB)
			apartments = mongodb.NewApartmentRepository(client.DB)
			listings = mongodb.NewListingRepository(client.DB)
			bookings = mongodb.NewBookingRepository(client.DB)
			chatStore = mongodb.NewChatStore(client.DB, logger)
			mongoBox := mongodb.NewOutboxStore(client.DB)
			box, boxStore = mongoBox, mongoBox
			readiness = func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return client.Ping(ctx)
			}
		}
	}
	if users == nil {
		memoryBox := memory.NewOutbox()
		users = memory.NewUserRepository()
		sessions = memory.NewSessionStore()
		apartments = memory.NewApartmentRepository()
		listings = memory.NewListingRepository()
		bookings = memory.NewBookingRepository()
		chatStore = memory.NewChatStore()
		box, boxStore = memoryBox, memoryBox
	}

	var uploader catalogsvc.Uploader = s3.NoopUploader{}
	if client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger); err != nil {
		logger.Warn("s3 uploader unavailable", "error", err)
	} else {
		uploader = client
	}

	var (
		worker   *infraoutbox.Worker
		producer *kafka.Producer
	)
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Warn("kafka unavailable, events stay in outbox", "error", err)
		} else {
			producer = p
			worker = &infraoutbox.Worker{
				Store:       boxStore,
				Producer:    p,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
		}
	}

	encoder := appoutbox.JSONEventEncoder{}
	authService := &authsvc.Service{
		Users:      users,
		Apartments: apartments,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	catalogService := &catalogsvc.Service{
		Listings: listings,
		Bookings: bookings,
		Users:    users,
		Uploader: uploader,
		Outbox:   box,
		Encoder:  encoder,
		Logger:   logger,
	}
	resolver := &chatsvc.Resolver{
		Listings: listings,
		Store:    chatStore,
		Outbox:   box,
		Encoder:  encoder,
		Logger:   logger,
	}
	sender := &chatsvc.Sender{
		Listings: listings,
		Store:    chatStore,
		Outbox:   box,
		Encoder:  encoder,
		Logger:   logger,
	}

	return application{
		handlers: ginserver.Handlers{
			Auth:      ginserver.AuthHandler{Service: authService, Logger: logger},
			Apartment: ginserver.ApartmentHandler{Apartments: apartments, Logger: logger},
			Listing:   ginserver.ListingHandler{Service: catalogService, Logger: logger},
			Booking:   ginserver.BookingHandler{Service: catalogService, Logger: logger},
			Chat: ginserver.ChatHandler{
				Resolver: resolver,
				Sender:   sender,
				Store:    chatStore,
				Logger:   logger,
			},
			AuthMiddleware: ginserver.AuthMiddleware{Service: authService, Logger: logger}.Handle,
		},
		apartments: apartments,
		readiness:  readiness,
		worker:     worker,
		producer:   producer,
	}
}

type apartmentSeed struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

func seedApartments(ctx context.Context, repo domainapartment.Repository, path string, logger *slog.Logger) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list apartments: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	seeds := []apartmentSeed{
		{ID: "sunrise-towers", Name: "Sunrise Towers", City: "Bengaluru"},
		{ID: "palm-meadows", Name: "Palm Meadows", City: "Bengaluru"},
		{ID: "lake-view-heights", Name: "Lake View Heights", City: "Hyderabad"},
	}
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		var fromFile []apartmentSeed
		if err := json.Unmarshal(data, &fromFile); err != nil {
			return fmt.Errorf("decode seed: %w", err)
		}
		if len(fromFile) > 0 {
			seeds = fromFile
		}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read seed: %w", err)
	}

	for _, seed := range seeds {
		apartment, err := domainapartment.New(domainapartment.ID(seed.ID), seed.Name, seed.City)
		if err != nil {
			logger.Error("apartment seed invalid", "id", seed.ID, "error", err)
			continue
		}
		if err := repo.Save(ctx, apartment); err != nil {
			logger.Error("cannot store seed apartment", "id", seed.ID, "error", err)
			continue
		}
		logger.Info("apartment seeded", "id", apartment.ID, "name", apartment.Name)
	}
	return nil
}

func defaultApartmentSeedPath() string {
	return filepath.Join("data", "apartments.json")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
