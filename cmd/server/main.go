package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/parking-lot-reservation/internal/config"
	"github.com/iliyamo/parking-lot-reservation/internal/database"
	"github.com/iliyamo/parking-lot-reservation/internal/handler"
	"github.com/iliyamo/parking-lot-reservation/internal/middleware"
	"github.com/iliyamo/parking-lot-reservation/internal/queue"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
	"github.com/iliyamo/parking-lot-reservation/internal/router"
	"github.com/iliyamo/parking-lot-reservation/internal/service"
)

func main() {
	// 1. config
	cfg := config.Load()

	// 2. database + schema
	dsn := cfg.DatabaseDSN
	if dsn == "" {
		dsn = database.MySQLDSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	db, dialect, err := database.Open(dsn)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db, dialect); err != nil {
		cancelMigrate()
		log.Fatalf("db: migrate: %v", err)
	}
	cancelMigrate()
	log.Printf("db: connected dialect=%s", dialect)

	// 3. repositories
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	lotRepo := repository.NewLotRepo(db)
	spotRepo := repository.NewSpotRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	reportRepo := repository.NewReportRepo(db)

	if cfg.AdminPassword != "" {
		seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := userRepo.EnsureAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost)
		cancelSeed()
		if err != nil {
			log.Fatalf("admin seed: %v", err)
		}
		if created {
			log.Printf("admin seed: created %s", cfg.AdminEmail)
		}
	}

	// 4. reservation events
	var wg sync.WaitGroup
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	var events service.EventPublisher
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.RabbitURL)
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.EventLogDir)
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("events: consumer started queue=%s", consumer.Queue)
			if err := consumer.Run(consumerCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("events: consumer stopped: %v", err)
			}
		}()
	} else {
		log.Println("events: disabled (EVENTS_ENABLED=false)")
	}

	// 5. services + handlers
	inventory := service.NewInventory(db, lotRepo, spotRepo)
	booking := service.NewBooking(db, lotRepo, spotRepo, reservationRepo, events)
	reports := service.NewReports(reportRepo, reservationRepo, userRepo)

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	stack := router.Stack{
		JWTSecret:  cfg.JWTSecret,
		RateLimit:  middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:      middleware.NewRedisCache(cacheCfg, rdb),
		Invalidate: middleware.InvalidateCache(cacheCfg, rdb),
	}

	// 6. http
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	router.RegisterRoutes(e, handler.Ready(db))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, tokenRepo), stack)
	router.RegisterPublic(e, handler.NewPublicHandler(inventory), stack)
	router.RegisterUser(e, handler.NewUserHandler(booking, inventory), stack)
	router.RegisterAdmin(e, handler.NewAdminHandler(inventory, reports), stack)

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	// 7. graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	cancelConsumer()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("http: shutdown: %v", err)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Println("events: consumer did not stop in time")
	}
	log.Println("bye")
}
