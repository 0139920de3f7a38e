package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/auth-service/internal"
	"github.com/frahmantamala/auth-service/internal/auditlog"
	auditlogPostgres "github.com/frahmantamala/auth-service/internal/auditlog/postgres"
	"github.com/frahmantamala/auth-service/internal/auth"
	authPostgres "github.com/frahmantamala/auth-service/internal/auth/postgres"
	"github.com/frahmantamala/auth-service/internal/core/events"
	"github.com/frahmantamala/auth-service/internal/directory"
	"github.com/frahmantamala/auth-service/internal/role"
	rolePostgres "github.com/frahmantamala/auth-service/internal/role/postgres"
	"github.com/frahmantamala/auth-service/internal/transport"
	"github.com/frahmantamala/auth-service/internal/transport/rest"
	"github.com/frahmantamala/auth-service/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const openAPISpecPath = "./api/openapi.yml"

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config      *internal.Config
	DB          *sqlx.DB
	GormDB      *gorm.DB
	Router      *chi.Mux
	AuditWriter *auditlog.Writer
	Logger      *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	// surface a broken API description at startup instead of leaving it
	// to the first swagger consumer
	if _, err := rest.LoadOpenAPISpec(context.Background(), openAPISpecPath); err != nil {
		deps.Logger.Warn("openapi spec validation failed, swagger UI may be broken", "error", err)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		deps.AuditWriter.Shutdown()
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Format, config.Logging.Level)
	appLogger := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(appLogger)
	baseHandler := transport.NewBaseHandler(appLogger)

	// audit trail
	auditRepo := auditlogPostgres.NewRepository(gormDB)
	auditWriter := auditlog.NewWriter(auditRepo, auditlog.WriterConfig{}, appLogger)
	auditService := auditlog.NewService(auditRepo, auditWriter, appLogger)
	auditService.RegisterSubscriptions(eventBus)
	auditHandler := auditlog.NewHandler(baseHandler, auditService)

	// roles and permissions
	roleRepo := rolePostgres.NewRepository(gormDB)
	roleService := role.NewService(roleRepo, appLogger)
	roleHandler := role.NewHandler(baseHandler, roleService)

	// credentials and tokens
	authRepo := authPostgres.NewRepository(gormDB)
	hasher := auth.NewHasher(config.Security.PasswordScheme, config.Security.BcryptCost)
	tokenIssuer := auth.NewJWTIssuer(config.Security)
	directoryClient := directory.NewClient(config.Directory, appLogger)
	authService := auth.NewService(authRepo, hasher, tokenIssuer, directoryClient, eventBus, appLogger)
	authHandler := auth.NewHandler(baseHandler, authService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, authHandler, roleHandler, auditHandler, config.Server.AllowedOrigins, appLogger)

	return &Dependencies{
		Config:      config,
		Logger:      appLogger,
		DB:          db,
		GormDB:      gormDB,
		Router:      router,
		AuditWriter: auditWriter,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the already-open connection. TranslateError is required
// so unique violations surface as gorm.ErrDuplicatedKey.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}
	return gormDB, nil
}
