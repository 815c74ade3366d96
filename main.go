package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/moveos/scheduling-service/config"
	"github.com/moveos/scheduling-service/internal/handler"
	"github.com/moveos/scheduling-service/internal/middleware"
	"github.com/moveos/scheduling-service/internal/repository"
	"github.com/moveos/scheduling-service/internal/service"
	"github.com/moveos/scheduling-service/internal/tenant"
	"github.com/moveos/scheduling-service/pkg/cache"
	"github.com/moveos/scheduling-service/pkg/database"
	"github.com/moveos/scheduling-service/pkg/logger"
	"github.com/moveos/scheduling-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat, "scheduling-service")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db := database.NewPostgresDB(cfg.DSN())

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, zlog)
	if err != nil {
		// Movement events still persist without a broker; publishing resumes
		// on the next restart.
		zlog.Warn("rabbitmq unavailable, movement events will not be published", zap.Error(err))
	} else {
		defer publisher.Close()
	}

	listingCache := cache.New(cfg.RedisAddr, cfg.ListingCacheTTL, zlog)
	defer listingCache.Close()

	// Repositories
	tenantRepo := repository.NewTenantRepository(db)
	sessionTypeRepo := repository.NewSessionTypeRepository(db)
	locationRepo := repository.NewLocationRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	movementRepo := repository.NewMovementRepository(db)

	// Services
	var eventPublisher service.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}
	movementSvc := service.NewMovementService(movementRepo, eventPublisher, zlog)
	catalogSvc := service.NewCatalogService(sessionTypeRepo, locationRepo)
	waitlistSvc := service.NewWaitlistService(waitlistRepo, bookingRepo, sessionRepo, movementSvc, zlog)
	sessionSvc := service.NewSessionService(sessionRepo, bookingRepo, catalogSvc, waitlistSvc, movementSvc, listingCache, zlog)
	bookingSvc := service.NewBookingService(
		bookingRepo, sessionRepo, waitlistSvc, movementSvc,
		service.AllowAllGate(), cfg.CancelLead, cfg.CheckInGrace, zlog,
	)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler(zlog)
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			zlog.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	browse := tenant.PublicBrowsing("/health", "/api/v1/public")
	skip := func(c echo.Context) bool {
		if browse(c) {
			return true
		}
		// Provisioning runs before a tenant exists.
		return c.Request().Method == http.MethodPost && c.Request().URL.Path == "/api/v1/tenants"
	}
	e.Use(tenant.Middleware(tenantRepo, skip))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "scheduling-service"})
	})

	handler.NewTenantHandler(tenantRepo).RegisterRoutes(e)
	handler.NewCatalogHandler(catalogSvc).RegisterRoutes(e)
	handler.NewSessionHandler(sessionSvc).RegisterRoutes(e)
	handler.NewBookingHandler(bookingSvc, waitlistSvc, movementSvc).RegisterRoutes(e)

	zlog.Info("scheduling service starting", zap.String("port", cfg.ServerPort))
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
