package service

import (
	"testing"

	"eie-registry/internal/repository"
	"eie-registry/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsent_AcceptCurrentVersion(t *testing.T) {
	db := testutil.NewDB(t)
	userID := uuid.New()
	v1 := NewConsentService(repository.NewConsentRepo(db), 1)

	st, err := v1.Status(userID)
	require.NoError(t, err)
	assert.False(t, st.Accepted)
	assert.Equal(t, 1, st.Version)

	st, err = v1.Accept(userID)
	require.NoError(t, err)
	assert.True(t, st.Accepted)
	require.NotNil(t, st.AcceptedAt)

	// a new terms version asks again
	v2 := NewConsentService(repository.NewConsentRepo(db), 2)
	st, err = v2.Status(userID)
	require.NoError(t, err)
	assert.False(t, st.Accepted)
	assert.Equal(t, 2, v2.Version())
}
