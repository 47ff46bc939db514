// Package testutil builds throwaway registry databases for tests.
package testutil

import (
	"strings"
	"testing"
	"time"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with every table migrated
// and the default privileges and roles seeded. A single connection keeps
// all goroutines on the same in-memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := repository.NewPrivilegeRepo(db).SeedDefaults(); err != nil {
		t.Fatalf("seed privileges: %v", err)
	}
	if err := repository.NewRoleRepo(db).SeedDefaults(); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	return db
}

func CreateInstitution(t testing.TB, db *gorm.DB, name string) *model.Institution {
	t.Helper()
	inst := &model.Institution{
		Name:       name,
		FiscalCode: strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16]),
		Status:     "ACTIVE",
	}
	if err := db.Create(inst).Error; err != nil {
		t.Fatalf("create institution: %v", err)
	}
	return inst
}

// CreateUser adds an active user with the given role inside org.
func CreateUser(t testing.TB, db *gorm.DB, email, roleCode string, org *model.Institution) *model.User {
	t.Helper()
	role, err := repository.NewRoleRepo(db).FindByCode(roleCode)
	if err != nil {
		t.Fatalf("role %s: %v", roleCode, err)
	}
	user := &model.User{
		Email:      email,
		FullName:   email,
		RoleID:     &role.ID,
		IsActive:   true,
		Privileges: role.Privileges,
	}
	if org != nil {
		user.OrganizationID = &org.ID
	}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	loaded, err := repository.NewUserRepo(db).FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return loaded
}

// CreateProduct stores a product of org in status.
func CreateProduct(t testing.TB, db *gorm.DB, gtin string, status model.ProductStatus, org *model.Institution) *model.Product {
	t.Helper()
	p := &model.Product{
		GtinCode:            gtin,
		EprelCode:           "100" + gtin[len(gtin)-3:],
		ProductCode:         "P-" + gtin,
		Category:            model.CategoryWashingMachines,
		CountryOfProduction: "IT",
		Brand:               "Acme",
		Model:               "M-" + gtin,
		EnergyClass:         "A",
		Status:              status,
		OrganizationID:      org.ID,
		OrganizationName:    org.Name,
		ProductFileID:       uuid.New(),
		RegistrationDate:    time.Now(),
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

// GTINs are valid EAN-13 codes for fixtures.
var GTINs = []string{
	"4006381333931",
	"5901234123457",
	"4012345678901",
	"8001234567897",
	"0012345678905",
	"9780201379624",
}
