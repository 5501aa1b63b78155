package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"oyna-console/internal/model"
)

// ErrInvalidDescriptor means the cookie is missing, forged or expired.
var ErrInvalidDescriptor = errors.New("session: invalid user descriptor")

// Descriptor is the user summary the admin route guard reads from a cookie.
type Descriptor struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// DescriptorFromProfile builds a descriptor for p.
func DescriptorFromProfile(p model.Profile) Descriptor {
	return Descriptor{UserID: p.UserID, Username: p.Username, Role: p.Role}
}

type descriptorClaims struct {
	jwt.RegisteredClaims
	Descriptor
}

// DescriptorCodec signs and verifies descriptor cookies as HS256 JWTs.
type DescriptorCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewDescriptorCodec creates a codec. ttl bounds how long a cookie is accepted.
func NewDescriptorCodec(secret string, ttl time.Duration) *DescriptorCodec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DescriptorCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the lifetime given to new descriptors.
func (c *DescriptorCodec) TTL() time.Duration {
	return c.ttl
}

// Encode signs d.
func (c *DescriptorCodec) Encode(d Descriptor) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, descriptorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(d.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Descriptor: d,
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign descriptor: %w", err)
	}
	return signed, nil
}

// Decode verifies s and returns its descriptor. Any failure yields
// ErrInvalidDescriptor.
func (c *DescriptorCodec) Decode(s string) (Descriptor, error) {
	if s == "" {
		return Descriptor{}, ErrInvalidDescriptor
	}

	claims := &descriptorClaims{}
	token, err := jwt.ParseWithClaims(s, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil || !token.Valid {
		return Descriptor{}, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	return claims.Descriptor, nil
}
