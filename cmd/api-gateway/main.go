package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-procurement-api/api/swagger"
	"github.com/noah-isme/sma-procurement-api/internal/handler"
	"github.com/noah-isme/sma-procurement-api/internal/middleware"
	"github.com/noah-isme/sma-procurement-api/internal/models"
	"github.com/noah-isme/sma-procurement-api/internal/repository"
	"github.com/noah-isme/sma-procurement-api/internal/scheduler"
	"github.com/noah-isme/sma-procurement-api/internal/service"
	"github.com/noah-isme/sma-procurement-api/pkg/cache"
	"github.com/noah-isme/sma-procurement-api/pkg/config"
	"github.com/noah-isme/sma-procurement-api/pkg/database"
	"github.com/noah-isme/sma-procurement-api/pkg/logger"
	"github.com/noah-isme/sma-procurement-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/sma-procurement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-procurement-api/pkg/middleware/requestid"
)

// @title SMA Procurement API
// @version 1.0.0
// @description School procurement marketplace: bid requests, supplier offers, offer selection
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := database.RunMigrations(cfg.Database); err != nil {
		logr.Fatal("failed to run migrations", zap.Error(err))
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := cacheClient(cfg, logr)

	userRepo := repository.NewUserRepository(db)
	bidRepo := repository.NewBidRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()

	var mail mailer.Mailer
	if cfg.Notifications.Enabled && cfg.Notifications.SendgridAPIKey != "" {
		mail = mailer.NewSendgrid(cfg.Notifications)
	}
	notifSvc := service.NewNotificationService(mail, cfg.Notifications, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	bidSvc := service.NewBidService(bidRepo, offerRepo, userRepo, notifSvc, cacheRepo, cfg.Cache.ActiveBidsTTL, validate, logr)
	offerSvc := service.NewOfferService(offerRepo, bidRepo, userRepo, validate, logr)
	selectionSvc := service.NewSelectionService(offerRepo, bidRepo, userRepo, notifSvc, metricsSvc, logr)
	exportSvc := service.NewExportService(offerSvc, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	bidHandler := handler.NewBidHandler(bidSvc)
	offerHandler := handler.NewOfferHandler(offerSvc, selectionSvc, exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/suppliers/:id/verify", authHandler.VerifySupplier)

	bids := api.Group("/bid-requests", middleware.JWT(authSvc))
	bids.POST("", middleware.RequireRoles(models.RoleSchool), bidHandler.Create)
	bids.GET("/active", bidHandler.ListActive)
	bids.GET("/my-bids", middleware.RequireRoles(models.RoleSchool), bidHandler.ListMine)

	offers := api.Group("/supplier-offers", middleware.JWT(authSvc))
	offers.POST("", middleware.RequireRoles(models.RoleSupplier), offerHandler.Submit)
	offers.GET("/my-offers", middleware.RequireRoles(models.RoleSupplier), offerHandler.ListMine)
	offers.GET("/school-payments", middleware.RequireRoles(models.RoleSchool), offerHandler.SchoolPayments)
	offers.GET("/school-payments/export", middleware.RequireRoles(models.RoleSchool), offerHandler.ExportPayments)
	offers.POST("/select/:offerId", middleware.RequireRoles(models.RoleSchool), offerHandler.Select)
	offers.GET("/:bidItemId", offerHandler.ListByItem)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifSvc.Start(ctx)

	var sweep *scheduler.Scheduler
	if cfg.AutoAward.Enabled {
		sweep = scheduler.New(selectionSvc, scheduler.Config{
			Interval:     cfg.AutoAward.Interval,
			RunOnStartup: cfg.AutoAward.RunOnStartup,
		}, logr)
		sweep.Start(ctx)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}

	if sweep != nil {
		sweep.Stop()
	}
	notifSvc.Stop()

	if redisClient != nil {
		_ = redisClient.Close()
	}
}

func cacheClient(cfg *config.Config, logr *zap.Logger) *redis.Client {
	if !cfg.Cache.Enabled {
		return nil
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, listing cache disabled", zap.Error(err))
		return nil
	}
	return client
}
