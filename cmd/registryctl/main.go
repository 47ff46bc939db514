package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"eie-registry/internal/app"
	"eie-registry/internal/config"
	"eie-registry/internal/events"
	"eie-registry/internal/repository"
	"eie-registry/internal/seed"
	"eie-registry/internal/service"
	"eie-registry/pkg/database"
	"eie-registry/pkg/jwt"
	applog "eie-registry/pkg/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "registryctl: %v\n", err)
		os.Exit(1)
	}
}

// env is resolved lazily so --help works without a database.
type env struct {
	cfg *config.Config
	log zerolog.Logger
	db  *gorm.DB
}

func connect() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := applog.New(cfg.LogLevel, true)
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registryctl",
		Short: "EIE registry administration CLI",
		Long: `registryctl runs one-off maintenance tasks against the registry database:
schema migration, seeding, account management and re-processing of stuck product files.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newCreateUserCmd(),
		newResetPasswordCmd(),
		newProcessCmd(),
	)
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the registry tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			if err := seed.Migrate(e.db); err != nil {
				return err
			}
			e.log.Info().Msg("migration complete")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var adminEmail, adminPassword string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed privileges, roles, the Invitalia institution and an L2 administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			if err := seed.Migrate(e.db); err != nil {
				return err
			}
			opts := seed.Options{AdminEmail: e.cfg.AdminEmail, AdminPassword: e.cfg.AdminPassword}
			if adminEmail != "" {
				opts.AdminEmail = adminEmail
			}
			if adminPassword != "" {
				opts.AdminPassword = adminPassword
			}
			return seed.Run(e.db, opts, e.log)
		},
	}
	cmd.Flags().StringVar(&adminEmail, "admin-email", "", "Administrator email (defaults to SEED_ADMIN_EMAIL)")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "Administrator password (defaults to SEED_ADMIN_PASSWORD)")
	return cmd
}

func newCreateUserCmd() *cobra.Command {
	var req service.CreateUserRequest
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a producer or Invitalia account",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			users := service.NewUserService(
				repository.NewUserRepo(e.db),
				repository.NewRoleRepo(e.db),
				repository.NewInstitutionRepo(e.db),
			)
			user, err := users.CreateUser(&req, "registryctl")
			if err != nil {
				return err
			}
			e.log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Str("role", user.RoleCode()).Msg("user created")
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "Login email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Initial password")
	cmd.Flags().StringVar(&req.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&req.RoleCode, "role", "", "Role code: operatore, invitalia or invitalia_admin")
	cmd.Flags().StringVar(&req.OrganizationID, "organization-id", "", "Producer institution ID (producers only)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newResetPasswordCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Set a new password and end every open session of the user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect()
			if err != nil {
				return err
			}
			auth := service.NewAuthService(repository.NewUserRepo(e.db), jwt.NewSigner(e.cfg.Secret(), e.cfg.JWTTTL), e.log)
			if err := auth.SetPassword(args[0], password); err != nil {
				return err
			}
			e.log.Info().Str("email", args[0]).Msg("password reset")
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "New password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <product-file-id>",
		Short: "Load a product file synchronously, bypassing the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid product file id: %w", err)
			}
			e, err := connect()
			if err != nil {
				return err
			}
			store, err := app.NewStore(cmd.Context(), e.cfg, e.log)
			if err != nil {
				return err
			}
			notifier := events.NewOutboxNotifier(e.db, repository.NewOutboxRepo(e.db), e.log)
			processor := app.NewUploadProcessor(e.db, store, app.NewLookup(e.cfg, e.log), notifier, e.log)
			// an operator run is not retried
			return processor.Process(service.LastAttempt(cmd.Context()), id)
		},
	}
}
