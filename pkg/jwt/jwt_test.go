package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	s := NewSigner([]byte("secret"), time.Hour)
	id := uuid.New()

	token, err := s.Generate(Claims{
		UserID:       id,
		Email:        "a@b.it",
		OrgID:        "org-1",
		OrgRole:      "operatore",
		Privileges:   []string{"product:view"},
		TokenVersion: "v1",
	})
	require.NoError(t, err)

	claims, err := s.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "operatore", claims.OrgRole)
	assert.Equal(t, "v1", claims.TokenVersion)
	assert.Equal(t, id.String(), claims.Subject)
}

func TestSigner_RejectsExpired(t *testing.T) {
	s := NewSigner([]byte("secret"), time.Minute)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := s.Generate(Claims{UserID: uuid.New()})
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_RejectsWrongSecret(t *testing.T) {
	token, err := NewSigner([]byte("one"), time.Hour).Generate(Claims{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = NewSigner([]byte("two"), time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{UserID: uuid.New()}
	claims.Issuer = issuer
	claims.ExpiresAt = gojwt.NewNumericDate(time.Now().Add(time.Hour))
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewSigner([]byte("secret"), time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_MissingToken(t *testing.T) {
	_, err := NewSigner([]byte("secret"), time.Hour).Validate("")
	assert.ErrorIs(t, err, ErrMissingToken)
}
