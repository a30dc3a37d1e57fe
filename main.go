package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/innkeep/enquiry/config"
	redisconfig "github.com/innkeep/enquiry/config/redis"
	"github.com/innkeep/enquiry/controllers/enquiry_controller"
	"github.com/innkeep/enquiry/dedup"
	"github.com/innkeep/enquiry/directory"
	"github.com/innkeep/enquiry/forward"
	"github.com/innkeep/enquiry/logger"
	"github.com/innkeep/enquiry/middlewares/cors"
	"github.com/innkeep/enquiry/models/property_models"
	"github.com/innkeep/enquiry/notify"
	"github.com/innkeep/enquiry/ratelimit"
	"github.com/innkeep/enquiry/routes"
	"github.com/innkeep/enquiry/store"
)

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	cfg := config.FromEnv()
	if cfg.SinkEndpoint == "" || cfg.SinkSecret == "" {
		logger.ErrorLogger.Error("SINK_ENDPOINT and SINK_SECRET must be set")
		os.Exit(1)
	}

	ctx := context.Background()
	rdb, err := redisconfig.GetRedisClient(ctx)
	if err != nil {
		logger.ErrorLogger.Errorf("Redis unavailable: %v", err)
		os.Exit(1)
	}
	defer redisconfig.CloseRedis()

	kv := store.NewRedisStore(rdb)

	dir := directory.New(kv)
	guard := dedup.New(kv, cfg.DedupTTL)
	limiter := ratelimit.New(kv, cfg.RateWindow)
	registry := forward.NewRegistry(kv, cfg.SinkEndpoint, cfg.DefaultPartition)
	forwarder := forward.New(registry, cfg.SinkSecret, cfg.SinkTimeout)

	providers := map[property_models.Channel]notify.Provider{
		property_models.ChannelEmail:    notify.NewEmailProvider(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom),
		property_models.ChannelWhatsApp: notify.NewWebhookProvider(property_models.ChannelWhatsApp, cfg.WhatsAppEndpoint, cfg.DispatchTimeout),
		property_models.ChannelSMS:      notify.NewWebhookProvider(property_models.ChannelSMS, cfg.SMSEndpoint, cfg.DispatchTimeout),
	}
	dispatcher := notify.NewDispatcher(providers, limiter, cfg.DispatchCeiling, cfg.DispatchTimeout)

	controller := enquiry_controller.NewEnquiryController(cfg, dir, guard, limiter, forwarder, dispatcher)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())

	routes.RegisterBookingRoutes(r, controller, rdb)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok from enquiry service"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(200)
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		fmt.Printf("Enquiry service listening on :%s\n", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorLogger.Errorf("Server failed to listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.InfoLogger.Info("Shutting down enquiry service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.InfoLogger.Info("Enquiry service exited gracefully")
}
