package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicdesk/frontdesk/internal/config"
	"github.com/clinicdesk/frontdesk/internal/domain/account"
	"github.com/clinicdesk/frontdesk/internal/domain/asset"
	"github.com/clinicdesk/frontdesk/internal/domain/dashboard"
	"github.com/clinicdesk/frontdesk/internal/domain/handover"
	"github.com/clinicdesk/frontdesk/internal/domain/patient"
	"github.com/clinicdesk/frontdesk/internal/domain/shift"
	"github.com/clinicdesk/frontdesk/internal/platform/auth"
	"github.com/clinicdesk/frontdesk/internal/platform/blobstore"
	"github.com/clinicdesk/frontdesk/internal/platform/db"
	"github.com/clinicdesk/frontdesk/internal/platform/events"
	"github.com/clinicdesk/frontdesk/internal/platform/middleware"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "frontdesk-server",
		Short: "Clinic front-desk API server",
	}
	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(adminCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the front-desk API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// loadConfig loads and validates configuration for every subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir := migrationsDir(cmd, cfg)

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir := migrationsDir(cmd, cfg)

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			writeMigrationStatus(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func migrationsDir(cmd *cobra.Command, cfg *config.Config) string {
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		return dir
	}
	return cfg.MigrationsDir
}

func writeMigrationStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(w, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := account.NewService(account.NewRepoPG(pool), auth.NewBcryptHasher(),
				auth.NewTokenIssuer([]byte(cfg.JWTSecret)), cfg.AccessTokenTTL())
			created, err := svc.EnsureAdmin(ctx, username, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Administrator %q created.\n", username)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Account %q already exists.\n", username)
			}
			return nil
		},
	}
	createCmd.Flags().String("username", "", "Administrator username")
	createCmd.Flags().String("password", "", "Administrator password")

	cmd.AddCommand(createCmd)
	return cmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newLimiter prefers the shared redis limiter and falls back to the
// in-process one when redis is not configured or unreachable.
func newLimiter(ctx context.Context, cfg *config.Config, logger zerolog.Logger) middleware.Limiter {
	rl := middleware.RateLimitConfig{RequestsPerSecond: cfg.RateLimitRPS, BurstSize: cfg.RateLimitBurst}
	if rl.RequestsPerSecond <= 0 {
		rl = middleware.DefaultRateLimitConfig()
	}
	if cfg.RedisURL != "" {
		client, err := middleware.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			logger.Info().Msg("rate limiting through redis")
			return middleware.NewRedisLimiter(client, int(rl.RequestsPerSecond))
		}
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory rate limiter")
	}
	return middleware.NewMemoryLimiter(rl)
}

func newPublisher(cfg *config.Config, logger zerolog.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NopPublisher{}
	}
	logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaHandoverTopic).Msg("publishing handover events to kafka")
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaHandoverTopic)
}

// newArchive returns nil when no bucket is configured; clearing handovers
// then skips the archive step.
func newArchive(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	if cfg.ExportArchiveBucket == "" {
		return nil, nil
	}
	return blobstore.NewS3Store(ctx, cfg.ExportArchiveBucket)
}

func indexHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Clinic Registry API is running"})
}

func healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version,
	})
}

// services bundles the domain services wired by the composition root.
type services struct {
	accounts  *account.Service
	patients  *patient.Service
	shifts    *shift.Service
	assets    *asset.Service
	handovers *handover.Service
	dashboard *dashboard.Service
}

// newEcho builds the HTTP server: middleware chain, public routes and the
// /api group.
func newEcho(cfg *config.Config, logger zerolog.Logger, svc services, tokens *auth.TokenIssuer, limiter middleware.Limiter) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(echomw.RemoveTrailingSlash())

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.Audit(logger))
	e.Use(auth.BearerMiddleware(tokens, svc.accounts, auth.AuthSkipper))

	e.GET("/", indexHandler)
	e.GET("/health", healthHandler)

	root := e.Group("")
	api := e.Group("/api")
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = middleware.DefaultRateLimitConfig().RequestsPerSecond
	}
	api.Use(middleware.RateLimit(limiter, rps, logger))

	account.NewHandler(svc.accounts).RegisterRoutes(root, api)
	patient.NewHandler(svc.patients).RegisterRoutes(api)
	shift.NewHandler(svc.shifts).RegisterRoutes(api)
	asset.NewHandler(svc.assets).RegisterRoutes(api)
	handover.NewHandler(svc.handovers, logger).RegisterRoutes(api)
	dashboard.NewHandler(svc.dashboard).RegisterRoutes(api)

	return e
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	tx := db.NewTransactor(pool)
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret))

	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	archive, err := newArchive(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure export archive")
	}

	// Domain services
	accountSvc := account.NewService(account.NewRepoPG(pool), auth.NewBcryptHasher(), tokens, cfg.AccessTokenTTL())
	patientSvc := patient.NewService(patient.NewRepoPG(pool), loc)
	shiftSvc := shift.NewService(shift.NewRepoPG(pool), accountSvc, patientSvc, tx)
	assetSvc := asset.NewService(asset.NewRepoPG(pool))
	handoverSvc := handover.NewService(handover.NewRepoPG(pool), handover.NewLogRepoPG(pool), shiftSvc, tx, logger,
		handover.Options{
			SeedPlaceholder: cfg.ExportSeedPlaceholder,
			Location:        loc,
			Archive:         archive,
			Publisher:       publisher,
		})
	dashboardSvc := dashboard.NewService(patientSvc, accountSvc, assetSvc, shiftSvc, loc)

	if cfg.BootstrapAdminUser != "" {
		created, err := accountSvc.EnsureAdmin(ctx, cfg.BootstrapAdminUser, cfg.BootstrapAdminPass)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to bootstrap administrator")
		}
		if created {
			logger.Info().Str("username", cfg.BootstrapAdminUser).Msg("bootstrap administrator created")
		}
	}

	e := newEcho(cfg, logger, services{
		accounts:  accountSvc,
		patients:  patientSvc,
		shifts:    shiftSvc,
		assets:    assetSvc,
		handovers: handoverSvc,
		dashboard: dashboardSvc,
	}, tokens, newLimiter(ctx, cfg, logger))

	// DB health check endpoint
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
