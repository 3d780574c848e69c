// Package http provides the HTTP server adapter for the application layer.
// This is a thin adapter layer that translates HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mbet-dev/fund-tracker/internal/application/service"
	"github.com/mbet-dev/fund-tracker/internal/export"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config             ServerConfig
	httpServer         *http.Server
	router             *gin.Engine
	authService        service.AuthService
	requestService     service.RequestService
	reportService      service.ReportService
	appointmentService service.AppointmentService
	exporter           *export.ReportExporter
	logger             Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	authService service.AuthService,
	requestService service.RequestService,
	reportService service.ReportService,
	appointmentService service.AppointmentService,
	exporter *export.ReportExporter,
	logger Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:             config,
		router:             router,
		authService:        authService,
		requestService:     requestService,
		reportService:      reportService,
		appointmentService: appointmentService,
		exporter:           exporter,
		logger:             logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", status,
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	handlers := NewHandlers(
		s.authService,
		s.requestService,
		s.reportService,
		s.appointmentService,
		s.exporter,
		s.logger,
	)

	// Health check
	s.router.GET("/health", handlers.HealthCheck)

	api := s.router.Group("/api/v1")

	// Session lifecycle
	auth := api.Group("/auth")
	{
		auth.POST("/signup", handlers.SignUp)
		auth.POST("/signin", handlers.SignIn)
	}
	authSession := api.Group("/auth", authMiddleware(s.authService))
	{
		authSession.GET("/session", handlers.GetSession)
		authSession.POST("/signout", handlers.SignOut)
	}

	// Fund requests
	requests := api.Group("/requests", authMiddleware(s.authService))
	{
		requests.POST("", handlers.SubmitRequest)
		requests.GET("", handlers.ListRequests)
	}
	adminRequests := api.Group("/requests", authMiddleware(s.authService), requireAdmin())
	{
		adminRequests.GET("/pending", handlers.ListPendingRequests)
		adminRequests.POST("/:id/approve", handlers.ApproveRequest)
		adminRequests.POST("/:id/partially-approve", handlers.PartiallyApproveRequest)
		adminRequests.POST("/:id/decline", handlers.DeclineRequest)
	}

	// Reports
	reports := api.Group("/reports", authMiddleware(s.authService), requireAdmin())
	{
		reports.GET("/chart", handlers.GetChartReport)
		reports.GET("/summary", handlers.GetSummaryReport)
		reports.GET("/users", handlers.ListReportUsers)
		reports.GET("/export", handlers.ExportReport)
	}

	// Appointments
	appointments := api.Group("/appointments", authMiddleware(s.authService))
	{
		appointments.GET("", handlers.ListAppointments)
		appointments.POST("", requireAdmin(), handlers.ScheduleAppointment)
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
