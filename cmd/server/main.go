package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/mbet-dev/fund-tracker/internal/application/service"
	"github.com/mbet-dev/fund-tracker/internal/config"
	"github.com/mbet-dev/fund-tracker/internal/export"
	"github.com/mbet-dev/fund-tracker/internal/infrastructure/persistence/repository"
	"github.com/mbet-dev/fund-tracker/internal/infrastructure/persistence/sqlite"
	apihttp "github.com/mbet-dev/fund-tracker/internal/interfaces/http"
	"github.com/mbet-dev/fund-tracker/pkg/auth"
	"github.com/mbet-dev/fund-tracker/pkg/database"
	"github.com/mbet-dev/fund-tracker/pkg/utils"
)

func main() {
	// Load .env if present; real environment variables win.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting fund request tracker",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories and transaction manager
	txManager := sqlite.NewDB(db.DB, logger)
	requestRepo := repository.NewRequestRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	sessionRepo := repository.NewSessionRepository(db.DB, logger)
	appointmentRepo := repository.NewAppointmentRepository(db.DB, logger)

	// Initialize application services
	kvLogger := utils.NewKVLogger(logger)
	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.TokenLifetime)

	authService := service.NewAuthService(userRepo, sessionRepo, txManager, tokens, kvLogger)
	requestService := service.NewRequestService(requestRepo, kvLogger)
	reportService := service.NewReportService(requestRepo, userRepo, kvLogger)
	appointmentService := service.NewAppointmentService(appointmentRepo, kvLogger)
	exporter := export.NewReportExporter(logger)

	// Initialize HTTP server
	server := apihttp.NewServer(
		apihttp.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		authService,
		requestService,
		reportService,
		appointmentService,
		exporter,
		kvLogger,
	)

	// Stop the server when an interrupt arrives.
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
