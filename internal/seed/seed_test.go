package seed

import (
	"testing"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestRunIsIdempotent(t *testing.T) {
	db := openDB(t)
	require.NoError(t, Migrate(db))

	opts := Options{AdminEmail: "admin@invitalia.it", AdminPassword: "changeme"}
	require.NoError(t, Run(db, opts, zerolog.Nop()))
	require.NoError(t, Run(db, opts, zerolog.Nop()))

	var institutions int64
	require.NoError(t, db.Model(&model.Institution{}).Where("fiscal_code = ?", model.InvitaliaFiscalCode).Count(&institutions).Error)
	assert.Equal(t, int64(1), institutions)

	admin, err := repository.NewUserRepo(db).FindByEmail("admin@invitalia.it")
	require.NoError(t, err)
	assert.Equal(t, model.RoleInvitaliaL2, admin.RoleCode())
	assert.True(t, admin.CheckPassword("changeme"))
	assert.True(t, admin.HasPrivilege(model.PrivProductApprove))
}

func TestRunWithoutAdminPassword(t *testing.T) {
	db := openDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Run(db, Options{AdminEmail: "admin@invitalia.it"}, zerolog.Nop()))

	_, err := repository.NewUserRepo(db).FindByEmail("admin@invitalia.it")
	assert.Error(t, err)

	roles, err := repository.NewRoleRepo(db).FindAll()
	require.NoError(t, err)
	assert.Len(t, roles, 3)
}
