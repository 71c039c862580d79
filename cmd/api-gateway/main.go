package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/osvita-dev/kids-registry-api/api/swagger"
	"github.com/osvita-dev/kids-registry-api/internal/handler"
	"github.com/osvita-dev/kids-registry-api/internal/middleware"
	"github.com/osvita-dev/kids-registry-api/internal/repository"
	"github.com/osvita-dev/kids-registry-api/internal/service"
	"github.com/osvita-dev/kids-registry-api/pkg/cache"
	"github.com/osvita-dev/kids-registry-api/pkg/config"
	"github.com/osvita-dev/kids-registry-api/pkg/database"
	"github.com/osvita-dev/kids-registry-api/pkg/logger"
	corsmiddleware "github.com/osvita-dev/kids-registry-api/pkg/middleware/cors"
	reqidmiddleware "github.com/osvita-dev/kids-registry-api/pkg/middleware/requestid"
)

// @title Kids Registry API
// @version 1.0.0
// @description Student-record registry for community operators
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()
	if err := service.RegisterNameValidation(validate); err != nil {
		logr.Sugar().Fatalw("failed to register validations", "error", err)
	}

	studentRepo := repository.NewStudentRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient)
	preferenceRepo := repository.NewPreferenceRepository(redisClient)

	metricsSvc := service.NewMetricsService()
	accessSvc := service.NewAccessService(sessionRepo, logr, service.AccessGateConfig{
		Key:           cfg.Access.Key,
		SessionSecret: cfg.Access.SessionSecret,
		SessionTTL:    cfg.Access.SessionTTL,
	})
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	exportSvc := service.NewExportService(studentRepo, cfg.Export.FilePrefix, cfg.Export.SheetName, logr)
	preferenceSvc := service.NewPreferenceService(preferenceRepo, logr)
	viewSvc := service.NewViewService(studentRepo, preferenceSvc, cfg.Listing.SearchDebounce, cfg.Listing.DefaultPerPage, logr)
	defer viewSvc.Close()

	authHandler := handler.NewAuthHandler(accessSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, viewSvc, cfg.Listing.DefaultPerPage)
	exportHandler := handler.NewExportHandler(exportSvc)
	preferenceHandler := handler.NewPreferenceHandler(preferenceSvc)
	viewHandler := handler.NewViewHandler(viewSvc)

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
		if err := db.Ping(); err != nil {
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
	api.POST("/auth/access-key", authHandler.SubmitKey)

	gated := api.Group("")
	gated.Use(middleware.AccessGate(accessSvc))
	gated.GET("/auth/session", authHandler.Session)
	gated.POST("/auth/logout", authHandler.Logout)
	gated.GET("/students", studentHandler.List)
	gated.POST("/students", studentHandler.Create)
	gated.PUT("/students/:id", studentHandler.Update)
	gated.DELETE("/students/:id", studentHandler.Delete)
	gated.GET("/students/export", exportHandler.Export)
	gated.GET("/students/view", viewHandler.Get)
	gated.PUT("/students/view", viewHandler.Put)
	gated.GET("/preferences/filters", preferenceHandler.Get)
	gated.PUT("/preferences/filters", preferenceHandler.Put)
	gated.DELETE("/preferences/filters", preferenceHandler.Delete)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
