// Package server boots the HTTP service: configuration, storage, services,
// routes and background jobs, with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/zapdesk-io/zapdesk/internal/api"
	"github.com/zapdesk-io/zapdesk/internal/auth"
	"github.com/zapdesk-io/zapdesk/internal/config"
	"github.com/zapdesk-io/zapdesk/internal/database"
	"github.com/zapdesk-io/zapdesk/internal/events"
	"github.com/zapdesk-io/zapdesk/internal/lock"
	"github.com/zapdesk-io/zapdesk/internal/repository"
	"github.com/zapdesk-io/zapdesk/internal/runner"
	"github.com/zapdesk-io/zapdesk/internal/service"
)

// Run boots the service and blocks until SIGINT/SIGTERM.
func Run(configPath string) error {
	if err := config.Load(configPath); err != nil {
		return err
	}
	cfg := config.Get()

	db, err := database.Connect(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		defer redisClient.Close()
	}

	var locker lock.TicketLocker
	if cfg.Lock.Backend == "redis" && redisClient != nil {
		locker = lock.NewRedisLocker(redisClient, cfg.Lock.AcquireTimeout, cfg.Lock.HoldTTL)
	} else {
		locker = lock.NewKeyedMutex(cfg.Lock.AcquireTimeout)
	}

	contacts := repository.NewContactRepository(db)
	tickets := repository.NewTicketRepository(db)
	messages := repository.NewMessageRepository(db)
	tags := repository.NewTagRepository(db)
	queues := repository.NewQueueRepository(db)
	whatsapps := repository.NewWhatsappRepository(db)
	entryConfigs := repository.NewEntryConfigRepository(db)
	users := repository.NewUserRepository(db)

	bus := events.NewBus()
	hub := events.NewHub(bus)
	go hub.Run()

	identity := service.NewIdentityService(contacts)
	entryConfig := service.NewEntryConfigService(entryConfigs, queues, tags, whatsapps)
	ticketSvc := service.NewTicketService(tickets, locker)
	messageSvc := service.NewMessageService(messages, tickets, bus)
	welcome := service.NewWelcomeService(nil) // wired when a channel adapter registers
	accessSvc := service.NewAccessService(contacts, tickets)
	inbound := service.NewInboundService(identity, entryConfig, ticketSvc, messageSvc, welcome, contacts, whatsapps, bus)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)

	router := api.NewRouter(cfg, api.Deps{
		DB:          db,
		Hub:         hub,
		JWTManager:  jwtManager,
		Users:       users,
		Inbound:     inbound,
		Tickets:     ticketSvc,
		Messages:    messageSvc,
		Access:      accessSvc,
		EntryConfig: entryConfig,
	})

	autoCloser, err := runner.NewAutoCloser(tickets, &cfg.Ticket)
	if err != nil {
		return fmt.Errorf("auto-close job: %w", err)
	}
	autoCloser.Start()
	defer autoCloser.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("%s listening on %s", cfg.App.Name, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
