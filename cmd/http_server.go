package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/auth"
	"github.com/aura-baza/aura-hr/internal/core/events"
	"github.com/aura-baza/aura-hr/internal/metrics"
	"github.com/aura-baza/aura-hr/internal/role"
	"github.com/aura-baza/aura-hr/internal/transport/rest"
	"github.com/aura-baza/aura-hr/internal/user"
	"github.com/aura-baza/aura-hr/pkg/logger"
)

var nodeID int64

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().Int64Var(&nodeID, "node-id", 1, "snowflake node id for user ids (0-1023)")
}

type Dependencies struct {
	Config *internal.Config
	Store  *storeHandle
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
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
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := internal.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	// let audit handlers finish before the store goes away
	deps.Bus.Drain()
	if err := deps.Store.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := setupLogger(config); err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	lg := logger.LoggerWrapper()

	handle, err := openStore(ctx, config.Database, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if config.Database.Seed {
		n, err := user.Seed(ctx, handle.Store)
		if err != nil {
			_ = handle.Close()
			return nil, fmt.Errorf("failed to seed users: %w", err)
		}
		lg.Info("seeded demo users", "inserted", n)
	}

	ids, err := user.NewSnowflakeIDs(nodeID)
	if err != nil {
		_ = handle.Close()
		return nil, err
	}

	hasher := user.NewBcryptHasher(config.Security.BCryptCost)
	adminHash, err := hasher.Hash(config.Security.AdminPassword)
	if err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	bus := events.NewEventBus(lg)
	events.SubscribeAudit(bus, lg)

	collectors := metrics.New()
	catalog := role.DefaultCatalog()

	users := user.NewService(
		handle.Store,
		user.NewMutator(handle.Store, catalog, ids, hasher),
		lg,
		user.WithPublisher(bus),
		user.WithObserver(collectors),
		user.WithPaging(user.Paging{
			DefaultLimit: config.Pagination.DefaultLimit,
			MaxLimit:     config.Pagination.MaxLimit,
		}),
	)

	tokens := auth.NewJWTTokenGenerator(
		config.Security.JWTSecret,
		config.Security.JWTRefreshSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(users, tokens, hasher, lg, auth.WithAdmin(auth.Admin{
		ID:           auth.AdminID,
		Username:     config.Security.AdminUsername,
		Email:        config.Security.AdminEmail,
		PasswordHash: adminHash,
	}))

	health := rest.NewHealthHandler(handle.Checks)
	for name, details := range handle.Static {
		health.Static(name, details)
	}

	routes := rest.Routes{
		Auth: auth.NewHandler(authService),
		Users: user.NewHandler(users, user.Meta{
			Departments:     config.Directory.Departments,
			Statuses:        user.Statuses,
			PageSizes:       config.Pagination.PageSizes,
			DefaultPageSize: config.Pagination.DefaultLimit,
		}),
		Roles:          role.NewHandler(catalog),
		Health:         health,
		AllowedOrigins: config.Server.AllowedOrigins,
	}
	if config.Observability.Metrics.Enabled {
		routes.Metrics = collectors.Handler()
		routes.MetricsPath = config.Observability.Metrics.Path
		routes.HTTPObserver = collectors
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, routes, lg)

	return &Dependencies{
		Config: config,
		Store:  handle,
		Bus:    bus,
		Router: router,
		Logger: lg,
	}, nil
}
