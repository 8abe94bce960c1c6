package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"                    // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // trailing slash and body limit

	"github.com/dholimara/homestay-api/internal/apperr"
	"github.com/dholimara/homestay-api/internal/config" // Internal config loader
	"github.com/dholimara/homestay-api/internal/database"
	"github.com/dholimara/homestay-api/internal/handler"
	"github.com/dholimara/homestay-api/internal/logger"
	"github.com/dholimara/homestay-api/internal/media"
	"github.com/dholimara/homestay-api/internal/middleware"
	"github.com/dholimara/homestay-api/internal/model"
	"github.com/dholimara/homestay-api/internal/queue"
	"github.com/dholimara/homestay-api/internal/repository"
	"github.com/dholimara/homestay-api/internal/router" // Internal router setup
	"github.com/dholimara/homestay-api/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config
	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "homestay-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
	})
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("database migration failed", "error", err)
	}

	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unreachable, rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		publisher = queue.NewAMQPPublisher(cfg.AMQPURL)
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.BookingLogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("booking consumer stopped", "error", err)
			}
		}()
	}

	// repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	homestays := repository.NewHomestayRepo(db, rooms)
	images := repository.NewImageRepo(db)
	bookings := repository.NewBookingRepo(db)
	reviews := repository.NewReviewRepo(db)

	storage := media.NewStorage(cfg.MediaRoot, cfg.MaxUploadBytes)
	resolver := media.NewResolver(cfg.MediaURL)
	bookingSvc := service.NewBookingService(bookings, rooms, publisher, log)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Validator = handler.NewValidator()

	e.Pre(echomw.AddTrailingSlashWithConfig(echomw.TrailingSlashConfig{
		// static media files keep their exact path
		Skipper: func(c echo.Context) bool {
			r := c.Request()
			return r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, cfg.MediaURL)
		},
	}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.BodyLimit(strconv.FormatInt(cfg.MaxUploadBytes+1<<20, 10)))
	e.Use(middleware.Authenticate(cfg.JWTSecret))
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb, log)) // keys on the authenticated user
	if strings.HasPrefix(cfg.MediaURL, "/") {
		e.Static(strings.TrimSuffix(cfg.MediaURL, "/"), cfg.MediaRoot)
	}

	router.RegisterRoutes(e, db) // Register application routes
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg, users, tokens, resolver, log),
		handler.NewUserHandler(users, storage, resolver, log))
	router.RegisterMedia(e, handler.NewUploadHandler(storage, resolver, log))
	router.RegisterHomestays(e,
		handler.NewHomestayHandler(homestays, resolver, log),
		handler.NewImageHandler(images, resolver),
		handler.NewRoomHandler(rooms, bookingSvc, resolver, log))
	router.RegisterBookings(e,
		handler.NewBookingHandler(bookingSvc),
		handler.NewReviewHandler(reviews, bookingSvc, log))
	router.RegisterVillage(e,
		handler.NewContentHandler[model.Category]("categories", repository.NewContentRepo(db, repository.CategoryTable()), resolver, log),
		villageSections(db, resolver, log))

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
