package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "billing/api/swagger" // swagger docs
	"billing/internal/config"
	"billing/internal/handler"
	"billing/internal/logger"
	"billing/internal/middleware"
	"billing/internal/repository"
	"billing/internal/service"
	"billing/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Server owns the HTTP router, the event hub and the services behind them.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	hub    *websocket.Hub
}

// New wires repositories, services and handlers on top of db.
func New(cfg *config.Config, db *gorm.DB) *Server {
	gin.SetMode(cfg.GinMode)

	hub := websocket.NewHub()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	reportRepo := repository.NewReportRepository(db)

	customerService := service.NewCustomerService(customerRepo, invoiceRepo, txManager, hub)
	invoiceService := service.NewInvoiceService(
		invoiceRepo,
		productRepo,
		customerRepo,
		service.NewSequenceAllocator(settingsRepo),
		service.NewStockAdjuster(productRepo, txManager),
		customerService,
		txManager,
		hub,
	)
	productService := service.NewProductService(productRepo, txManager)
	categoryService := service.NewCategoryService(categoryRepo)
	settingsService := service.NewSettingsService(settingsRepo, txManager)
	reportService := service.NewReportService(reportRepo, invoiceRepo, productRepo, customerRepo)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "listeners": hub.ClientCount()})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(hub, c)
	})

	api := router.Group("")
	handler.NewInvoiceHandler(invoiceService).RegisterRoutes(api)
	handler.NewCustomerHandler(customerService).RegisterRoutes(api)
	handler.NewProductHandler(productService).RegisterRoutes(api)
	handler.NewCategoryHandler(categoryService).RegisterRoutes(api)
	handler.NewSettingsHandler(settingsService).RegisterRoutes(api)
	handler.NewReportHandler(reportService).RegisterRoutes(api)

	return &Server{cfg: cfg, router: router, hub: hub}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	log := logger.WithComponent("server")

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func corsConfig(origins []string) cors.Config {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	return corsConfig
}
