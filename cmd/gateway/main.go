package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/worldofdc/portal-gateway/config"
	"github.com/worldofdc/portal-gateway/internal/directory"
	"github.com/worldofdc/portal-gateway/internal/guard"
	"github.com/worldofdc/portal-gateway/internal/handlers"
	"github.com/worldofdc/portal-gateway/internal/middleware"
	"github.com/worldofdc/portal-gateway/internal/models"
	"github.com/worldofdc/portal-gateway/internal/otp"
	"github.com/worldofdc/portal-gateway/internal/upstream"
	"github.com/worldofdc/portal-gateway/pkg/logger"
	"github.com/worldofdc/portal-gateway/pkg/metrics"
	"github.com/worldofdc/portal-gateway/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerAuthRoutes wires the public authentication surface. The tight
// rate limiter sits on everything that costs an SMS or a password check.
func registerAuthRoutes(
	router *gin.Engine,
	authRateLimiter *middleware.RateLimiter,
	authHandler *handlers.AuthHandler,
) {
	auth := router.Group("/api/auth")
	auth.POST("/send-otp", authRateLimiter.Middleware(), authHandler.SendOTP)
	auth.POST("/verify-otp", authRateLimiter.Middleware(), authHandler.VerifyOTP)
	auth.POST("/resend-otp", authRateLimiter.Middleware(), authHandler.ResendOTP)
	auth.POST("/register", authRateLimiter.Middleware(), authHandler.RegisterCitizen)
	auth.POST("/officer/login", authRateLimiter.Middleware(), authHandler.OfficerLogin)
	auth.POST("/officer/signup", authRateLimiter.Middleware(), authHandler.OfficerSignup)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", authHandler.Me)
	auth.PUT("/profile", authHandler.UpdateProfile)
}

// registerProtectedRoutes wires the guarded route trees. Guards nest: the
// dashboard group admits any officer-tier role, and the approval routes
// add a stricter admin guard on top.
func registerProtectedRoutes(
	router *gin.Engine,
	officerHandler *handlers.OfficerHandler,
	meetingHandler *handlers.MeetingHandler,
	complaintHandler *handlers.ComplaintHandler,
) {
	citizen := router.Group("/api/citizen", guard.Require(guard.New(models.RoleCitizen)))
	citizen.GET("/complaints", complaintHandler.List)
	citizen.GET("/complaints/:id", complaintHandler.ByID)
	citizen.POST("/complaints", complaintHandler.Create)

	dashboard := router.Group("/api/dashboard", guard.Require(guard.New(models.OfficerRoles().List()...)))

	dashboard.GET("/complaints", complaintHandler.List)
	dashboard.GET("/complaints/:id", complaintHandler.ByID)
	dashboard.PUT("/complaints/:id", complaintHandler.Update)

	dashboard.GET("/meetings", meetingHandler.All)
	dashboard.GET("/meetings/my", meetingHandler.My)
	dashboard.GET("/meetings/upcoming", meetingHandler.Upcoming)
	dashboard.GET("/meetings/:id", meetingHandler.ByID)
	dashboard.POST("/meetings", meetingHandler.Create)

	dashboard.GET("/officers", officerHandler.Search)

	admin := dashboard.Group("/officers", guard.Require(guard.New(models.AdminRoles().List()...)))
	admin.GET("/pending", officerHandler.Pending)
	admin.POST("/:id/approve", officerHandler.Approve)
	admin.POST("/:id/reject", officerHandler.Reject)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting portal gateway",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
		zap.String("upstream", cfg.Upstream.BaseURL),
	)

	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	metrics.Init()

	// The upstream client is shared across all browser sessions; each
	// request carries its own token via the context.
	client := upstream.NewClient(cfg.Upstream, nil)
	challenges := otp.NewRegistry(client, time.Duration(cfg.Session.ChallengeTTLMinutes)*time.Minute)
	officerDirectory := directory.NewCached(client, time.Duration(cfg.Directory.CacheTTLSeconds)*time.Second)

	authHandler := handlers.NewAuthHandler(client, challenges)
	officerHandler := handlers.NewOfficerHandler(client, officerDirectory)
	meetingHandler := handlers.NewMeetingHandler(client)
	complaintHandler := handlers.NewComplaintHandler(client)
	healthHandler := handlers.NewHealthHandler(client.Healthy)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.RequestID())
	router.Use(middleware.Observability())
	router.Use(middleware.SecurityHeaders())
	router.Use(guard.Hydrate(cfg.Session))

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true, // session cookies
		MaxAge:           12 * time.Hour,
	}))

	generalRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.GeneralPerSecond), cfg.RateLimit.GeneralBurst)
	authRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.AuthPerSecond), cfg.RateLimit.AuthBurst)

	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	registerAuthRoutes(router, authRateLimiter, authHandler)
	registerProtectedRoutes(router, officerHandler, meetingHandler, complaintHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
