package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func issueToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return signed
}

func TestDecodeRoundTrip(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed := issueToken(t, jwt.MapClaims{
		"iss":       "retriever-essentials",
		"sub":       "admin@pantry.edu",
		"role":      "ROLE_ADMIN",
		"appUserId": 7,
		"exp":       exp.Unix(),
	})

	claims, err := Decode(signed)
	require.NoError(t, err)
	require.Equal(t, "admin@pantry.edu", claims.Subject)
	require.Equal(t, RoleAdmin, claims.Role)
	require.EqualValues(t, 7, claims.AppUserID)
	require.True(t, claims.ExpiresAt.Equal(exp))
}

func TestDecodeIgnoresSignature(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	signed := issueToken(t, jwt.MapClaims{
		"sub":       "authority@pantry.edu",
		"role":      "ROLE_AUTHORITY",
		"appUserId": 3,
		"exp":       exp.Unix(),
	})

	// Corrupt the signature segment only; the payload must still decode.
	claims, err := Decode(signed[:len(signed)-4] + "AAAA")
	require.NoError(t, err)
	require.Equal(t, RoleAuthority, claims.Role)
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"two segments": "abc.def",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw)
			require.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestDecodeRejectsIncompleteClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	cases := map[string]jwt.MapClaims{
		"missing subject": {"role": "ROLE_ADMIN", "appUserId": 1, "exp": exp},
		"missing role":    {"sub": "a@b.c", "appUserId": 1, "exp": exp},
		"unknown role":    {"sub": "a@b.c", "role": "ROLE_STUDENT", "appUserId": 1, "exp": exp},
		"missing user id": {"sub": "a@b.c", "role": "ROLE_ADMIN", "exp": exp},
		"missing expiry":  {"sub": "a@b.c", "role": "ROLE_ADMIN", "appUserId": 1},
	}
	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(issueToken(t, claims))
			require.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()
	require.True(t, Claims{ExpiresAt: now.Add(-time.Second)}.Expired(now))
	require.True(t, Claims{ExpiresAt: now}.Expired(now))
	require.False(t, Claims{ExpiresAt: now.Add(time.Second)}.Expired(now))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("ROLE_ADMIN")
	require.True(t, ok)
	require.Equal(t, RoleAdmin, role)

	role, ok = ParseRole("AUTHORITY")
	require.True(t, ok)
	require.Equal(t, RoleAuthority, role)

	_, ok = ParseRole("ROLE_STUDENT")
	require.False(t, ok)

	require.Equal(t, "ROLE_ADMIN", RoleAdmin.Wire())
}
