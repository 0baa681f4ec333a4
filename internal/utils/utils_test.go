package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/projectdesk/internal/model"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, VerifyPassword(hash, "secret1"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "secret1"))

	// Same input, different salt.
	again, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	id := model.Identity{UserID: 7, Handle: "ana", RoleID: 2}
	tok, err := NewAccessToken("s3cret", id, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	claims, err := ParseAccessToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Identity())
	assert.Equal(t, "7", claims.Subject)
}

func TestParseAccessTokenRejects(t *testing.T) {
	id := model.Identity{UserID: 7, Handle: "ana", RoleID: 2}
	good, err := NewAccessToken("s3cret", id, time.Hour)
	require.NoError(t, err)
	expired, err := NewAccessToken("s3cret", id, -time.Minute)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7, Handle: "ana"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]struct{ secret, raw string }{
		"wrong secret": {"other", good.Token},
		"expired":      {"s3cret", expired.Token},
		"garbage":      {"s3cret", "a.b.c"},
		"empty":        {"s3cret", ""},
		"alg none":     {"s3cret", unsigned},
		"no secret":    {"", good.Token},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseAccessToken(tc.secret, tc.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewAccessTokenRequiresSecret(t *testing.T) {
	_, err := NewAccessToken("", model.Identity{Handle: "ana"}, time.Hour)
	assert.Error(t, err)
}
