package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/healthtech/hms/internal/config"
	"github.com/healthtech/hms/internal/domain/appointment"
	"github.com/healthtech/hms/internal/domain/audit"
	"github.com/healthtech/hms/internal/domain/clinicalrecord"
	"github.com/healthtech/hms/internal/domain/identity"
	"github.com/healthtech/hms/internal/domain/laborder"
	"github.com/healthtech/hms/internal/domain/medicalfile"
	"github.com/healthtech/hms/internal/domain/medication"
	"github.com/healthtech/hms/internal/domain/patient"
	"github.com/healthtech/hms/internal/domain/pharmacyorder"
	"github.com/healthtech/hms/internal/platform/auth"
	"github.com/healthtech/hms/internal/platform/blobstore"
	"github.com/healthtech/hms/internal/platform/db"
	"github.com/healthtech/hms/internal/platform/middleware"
	"github.com/healthtech/hms/internal/platform/policy"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital Management System API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	createAdminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a superuser account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			email, _ := cmd.Flags().GetString("email")
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := identity.NewService(identity.NewUserRepoPG(pool))
			u := &identity.User{
				Username:    username,
				Email:       email,
				Role:        policy.RoleAdmin,
				IsSuperuser: true,
			}
			if err := svc.CreateUser(ctx, u, password); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			fmt.Printf("Created admin user %s (%s)\n", u.Username, u.ID)
			return nil
		},
	}
	createAdminCmd.Flags().String("username", "", "Username for the new account")
	createAdminCmd.Flags().String("password", "", "Password for the new account")
	createAdminCmd.Flags().String("email", "", "Email for the new account")
	cmd.AddCommand(createAdminCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Audit trail, wired in before the middleware chain so every
	// authenticated mutation lands in the audit_log table.
	auditSvc := audit.NewService(audit.NewAuditLogRepoPG(pool))

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M", "25M"))
	e.Use(auth.JWTMiddleware([]byte(cfg.SecretKey), auth.Skipper))
	e.Use(middleware.Audit(logger, auditSvc))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	// Auth and accounts
	refreshStore := auth.NewRefreshStorePG(pool)
	tokens := auth.NewTokenService([]byte(cfg.SecretKey), cfg.AccessTokenTTL, cfg.RefreshTokenTTL, refreshStore)
	identitySvc := identity.NewService(identity.NewUserRepoPG(pool))
	identity.NewHandler(identitySvc, tokens).RegisterRoutes(apiV1)

	// Audit log queries
	audit.NewHandler(auditSvc).RegisterRoutes(apiV1)

	// Clinical domains
	apptSvc := appointment.NewService(appointment.NewAppointmentRepoPG(pool))
	appointment.NewHandler(apptSvc).RegisterRoutes(apiV1)

	blobs := blobstore.NewDiskStore(cfg.MediaRoot)
	fileSvc := medicalfile.NewService(medicalfile.NewMedicalFileRepoPG(pool), blobs, logger)
	medicalfile.NewHandler(fileSvc).RegisterRoutes(apiV1)

	recordSvc := clinicalrecord.NewService(clinicalrecord.NewClinicalRecordRepoPG(pool), fileSvc)
	clinicalrecord.NewHandler(recordSvc).RegisterRoutes(apiV1)

	labSvc := laborder.NewService(laborder.NewLabOrderRepoPG(pool))
	laborder.NewHandler(labSvc).RegisterRoutes(apiV1)

	medSvc := medication.NewService(medication.NewMedicationRepoPG(pool))
	medication.NewHandler(medSvc).RegisterRoutes(apiV1)

	pharmSvc := pharmacyorder.NewService(pharmacyorder.NewPharmacyOrderRepoPG(pool))
	pharmacyorder.NewHandler(pharmSvc).RegisterRoutes(apiV1)

	patientSvc := patient.NewService(patient.NewPatientRepoPG(pool), patient.ProfileSources{
		Appointments:   apptSvc,
		Records:        recordSvc,
		LabOrders:      labSvc,
		Files:          fileSvc,
		PharmacyOrders: pharmSvc,
	})
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
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
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
