// Copyright (c) 2026 InternPulse. All rights reserved.

package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Well-known purposes for link tokens. Purposes partition the token space: a
// token minted for one flow is useless in every other flow.
const (
	PurposePasswordReset     = "pwd"
	PurposeEmailVerification = "vyf"
)

// Typed decode failures. Handlers map these to 400/401 at the boundary.
var (
	// ErrInvalidSignature means the token was forged, altered, or malformed.
	ErrInvalidSignature = errors.New("sec: invalid token signature")

	// ErrTokenExpired means the caller's max age elapsed since issuance.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrPurposeMismatch means the token was presented to the wrong flow.
	ErrPurposeMismatch = errors.New("sec: token purpose mismatch")
)

// purposeClaims is the wire shape of a purpose-scoped link token.
type purposeClaims struct {
	jwt.RegisteredClaims

	Purpose string            `json:"pps"`
	Payload map[string]string `json:"pld,omitempty"`
}

// PurposeCodec signs and verifies compact, stateless, purpose-scoped tokens
// (password-reset links, email-verification links).
//
// # Statelessness
//
// Validity is purely a function of the token bytes, the shared secret, and
// the clock — no store is consulted, which makes the codec safe for
// horizontally scaled deployments. Expiry is decided by the CALLER's maxAge
// against the embedded issued-at, not by an exp claim baked into the token.
type PurposeCodec struct {
	secret []byte

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewPurposeCodec creates a codec around the shared HMAC signing secret.
func NewPurposeCodec(secret string) *PurposeCodec {
	return &PurposeCodec{secret: []byte(secret), now: time.Now}
}

// Encode signs the payload under the given purpose tag.
func (codec *PurposeCodec) Encode(payload map[string]string, purpose string) (string, error) {
	claims := purposeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(codec.now()),
		},
		Purpose: purpose,
		Payload: payload,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(codec.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign purpose token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature, then the purpose, then the age.
//
// # Failure Order
//
// Signature first: an attacker must not learn anything about a forged
// token's purpose or age. Purpose next, age last.
func (codec *PurposeCodec) Decode(tokenString, expectedPurpose string, maxAge time.Duration) (map[string]string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &purposeClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return codec.secret, nil
		},
		jwt.WithTimeFunc(codec.now),
	)
	if err != nil {
		// All parse failures (bad base64, truncation, wrong key) collapse to
		// one signal so error text never leaks structural details.
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	claims, ok := token.Claims.(*purposeClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidSignature
	}

	if claims.Purpose != expectedPurpose {
		return nil, ErrPurposeMismatch
	}

	if claims.IssuedAt == nil {
		return nil, ErrInvalidSignature
	}
	if codec.now().Sub(claims.IssuedAt.Time) > maxAge {
		return nil, ErrTokenExpired
	}

	payload := claims.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	return payload, nil
}
