package service

import (
	"testing"
	"time"

	"eie-registry/internal/model"
	"eie-registry/internal/repository"
	"eie-registry/internal/testutil"
	"eie-registry/pkg/jwt"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (AuthService, repository.UserRepository, *model.User) {
	t.Helper()
	db := testutil.NewDB(t)
	org := testutil.CreateInstitution(t, db, "Elettro Spa")
	user := testutil.CreateUser(t, db, "op@elettro.it", model.RoleProducer, org)
	repo := repository.NewUserRepo(db)
	return NewAuthService(repo, jwt.NewSigner([]byte("test-secret"), time.Hour), zerolog.Nop()), repo, user
}

func TestLogin_IssuesSessionToken(t *testing.T) {
	svc, _, user := newAuthService(t)

	resp, err := svc.Login("OP@elettro.it", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, model.RoleProducer, resp.User.OrgRole)
	assert.ElementsMatch(t, model.DefaultPrivilegeCodes(model.RoleProducer), resp.Privileges)

	authed, err := svc.Authenticate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
	assert.NotNil(t, authed.LastLoginAt)

	claims, err := jwt.NewSigner([]byte("test-secret"), time.Hour).Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleProducer, claims.OrgRole)
	assert.Equal(t, "Elettro Spa", claims.OrgName)
	assert.Equal(t, user.OrgID(), claims.OrgID)
}

func TestLogin_SecondLoginEndsFirstSession(t *testing.T) {
	svc, _, _ := newAuthService(t)

	first, err := svc.Login("op@elettro.it", "password123")
	require.NoError(t, err)
	second, err := svc.Login("op@elettro.it", "password123")
	require.NoError(t, err)

	_, err = svc.Authenticate(first.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)
	_, err = svc.ValidateToken(second.Token)
	assert.NoError(t, err)
}

func TestLogin_Failures(t *testing.T) {
	svc, repo, user := newAuthService(t)

	_, err := svc.Login("op@elettro.it", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login("nobody@elettro.it", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user.IsActive = false
	require.NoError(t, repo.Update(user))
	_, err = svc.Login("op@elettro.it", "password123")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestLogout_InvalidatesToken(t *testing.T) {
	svc, _, user := newAuthService(t)

	resp, err := svc.Login("op@elettro.it", "password123")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(user.ID))

	_, err = svc.Authenticate(resp.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = svc.Authenticate("garbage")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestPasswordChanges(t *testing.T) {
	svc, _, _ := newAuthService(t)

	assert.ErrorIs(t, svc.ChangePassword("op@elettro.it", "nope", "secret99"), ErrWrongPassword)
	assert.ErrorIs(t, svc.SetPassword("op@elettro.it", "123"), ErrValidation)
	assert.ErrorIs(t, svc.SetPassword("ghost@elettro.it", "secret99"), ErrUserNotFound)

	require.NoError(t, svc.ChangePassword("op@elettro.it", "password123", "secret99"))
	_, err := svc.Login("op@elettro.it", "secret99")
	assert.NoError(t, err)

	require.NoError(t, svc.SetPassword("op@elettro.it", "another1"))
	_, err = svc.Login("op@elettro.it", "secret99")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
