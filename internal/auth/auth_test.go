package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTCodec_RoundTrip(t *testing.T) {
	codec := NewJWTCodec("secret")
	userID := uuid.New()

	token, expiresAt, err := codec.Issue(userID, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	got, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTCodec_Expired(t *testing.T) {
	codec := NewJWTCodec("secret")
	codec.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := codec.Issue(uuid.New(), time.Hour)
	require.NoError(t, err)

	codec.now = time.Now
	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTCodec_WrongSecret(t *testing.T) {
	token, _, err := NewJWTCodec("secret").Issue(uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = NewJWTCodec("other").Decode(token)
	assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
}

func TestJWTCodec_RejectsNonUUIDSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTCodec("secret").Decode(token)
	assert.ErrorContains(t, err, "invalid subject")
}

func TestJWTCodec_Garbage(t *testing.T) {
	_, err := NewJWTCodec("secret").Decode("not-a-token")
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	digest, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", digest)

	other, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, digest, other, "salted digests differ")

	assert.True(t, hasher.Verify("s3cret", digest))
	assert.False(t, hasher.Verify("wrong", digest))
	assert.False(t, hasher.Verify("s3cret", "not-a-digest"))
}

func TestNewBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
}
