// Package token decodes pantry session tokens without verifying signatures.
// Signature validation is the backend's responsibility; this side only
// inspects the claim payload for identity and expiry.
package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrDecode indicates a malformed or incomplete session token.
var ErrDecode = errors.New("token: decode failed")

// wireClaims mirrors the claim names used by the issuing backend.
type wireClaims struct {
	AppUserID int64  `json:"appUserId"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Decode parses the claim payload of a compact token string. It never
// evaluates the signature and never panics on malformed input.
func Decode(tokenString string) (Claims, error) {
	var wire wireClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, &wire); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if wire.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrDecode)
	}
	role, ok := ParseRole(wire.Role)
	if !ok {
		return Claims{}, fmt.Errorf("%w: unrecognized role %q", ErrDecode, wire.Role)
	}
	if wire.AppUserID <= 0 {
		return Claims{}, fmt.Errorf("%w: missing appUserId", ErrDecode)
	}
	if wire.ExpiresAt == nil {
		return Claims{}, fmt.Errorf("%w: missing expiry", ErrDecode)
	}
	return Claims{
		Subject:   wire.Subject,
		Role:      role,
		AppUserID: wire.AppUserID,
		ExpiresAt: wire.ExpiresAt.Time,
	}, nil
}
