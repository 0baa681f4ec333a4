package utils // package utils provides helpers for token signing and password hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/projectdesk/internal/model"
)

// ErrInvalidToken covers every reason a token is rejected: bad signature,
// unexpected algorithm, malformed claims or expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of an identity token.  The subject carries the user
// id as a decimal string; handle and role id travel as private claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID uint64 `json:"uid"`
	Handle string `json:"handle"`
	RoleID uint64 `json:"rid"`
}

// Identity returns the caller identity encoded in the claims.
func (c *Claims) Identity() model.Identity {
	return model.Identity{UserID: c.UserID, Handle: c.Handle, RoleID: c.RoleID}
}

// AccessToken is a signed token together with its expiry.
type AccessToken struct {
	Token string    // serialized JWT
	Exp   time.Time // UTC expiry
}

// NewAccessToken signs an HS256 token for id that expires after ttl.
func NewAccessToken(secret string, id model.Identity, ttl time.Duration) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, errors.New("jwt secret is required")
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: id.UserID,
		Handle: id.Handle,
		RoleID: id.RoleID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies raw against secret and returns its claims.  Any
// failure is reported as ErrInvalidToken.
func ParseAccessToken(secret, raw string) (*Claims, error) {
	if secret == "" || raw == "" {
		return nil, ErrInvalidToken
	}
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC tokens are ours; anything else is a forgery attempt.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || claims.Handle == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
