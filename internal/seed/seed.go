// Package seed prepares a registry database: schema, privileges, roles,
// the Invitalia institution and a first L2 administrator.
package seed

import (
	"errors"
	"fmt"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Options struct {
	AdminEmail string
	// AdminPassword left empty skips the administrator.
	AdminPassword string
}

// Migrate creates or updates every registry table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Run seeds default data. Every step is idempotent.
func Run(db *gorm.DB, opts Options, logger zerolog.Logger) error {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	institutionRepo := repository.NewInstitutionRepo(db)
	userRepo := repository.NewUserRepo(db)

	// 1. Privileges first, roles reference them
	if err := privilegeRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	// 2. Invitalia owns every reviewer account
	invitalia, err := institutionRepo.FindByFiscalCode(model.InvitaliaFiscalCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		invitalia = &model.Institution{
			Name:       "Invitalia",
			FiscalCode: model.InvitaliaFiscalCode,
			Status:     "ACTIVE",
		}
		invitalia.CreatedBy = "system"
		if err := institutionRepo.Create(invitalia); err != nil {
			return fmt.Errorf("create invitalia institution: %w", err)
		}
		logger.Info().Msg("invitalia institution created")
	} else if err != nil {
		return fmt.Errorf("find invitalia institution: %w", err)
	}

	// 3. Default L2 administrator
	if opts.AdminPassword == "" || opts.AdminEmail == "" {
		logger.Debug().Msg("no admin password configured, skipping admin user")
		return nil
	}
	if existing, _ := userRepo.FindByEmail(opts.AdminEmail); existing != nil {
		return nil
	}

	role, err := roleRepo.FindByCode(model.RoleInvitaliaL2)
	if err != nil {
		return fmt.Errorf("find role %s: %w", model.RoleInvitaliaL2, err)
	}
	admin := &model.User{
		Email:          opts.AdminEmail,
		FullName:       "Amministratore Invitalia",
		OrganizationID: &invitalia.ID,
		RoleID:         &role.ID,
		IsActive:       true,
		Privileges:     role.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(opts.AdminPassword); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := userRepo.Create(admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	logger.Info().Str("email", admin.Email).Str("role", role.Code).Msg("admin user created")
	return nil
}
