package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorCodec_RoundTrip(t *testing.T) {
	codec := NewDescriptorCodec("super-secret", time.Hour)
	want := Descriptor{UserID: 42, Username: "root", Role: "superadmin"}

	signed, err := codec.Encode(want)
	require.NoError(t, err)

	got, err := codec.Decode(signed)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDescriptorCodec_Rejects(t *testing.T) {
	codec := NewDescriptorCodec("super-secret", time.Hour)
	other := NewDescriptorCodec("other-secret", time.Hour)

	forged, err := other.Encode(Descriptor{UserID: 1, Role: "admin"})
	require.NoError(t, err)

	expiredCodec := NewDescriptorCodec("super-secret", time.Minute)
	expiredCodec.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredCodec.Encode(Descriptor{UserID: 1, Role: "admin"})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"role": "admin"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, cookie := range map[string]string{
		"empty":    "",
		"garbage":  "not-a-jwt",
		"forged":   forged,
		"expired":  expired,
		"alg none": unsigned,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decode(cookie)
			assert.ErrorIs(t, err, ErrInvalidDescriptor)
		})
	}
}
