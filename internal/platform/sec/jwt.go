// Copyright (c) 2026 InternPulse. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, JWT
// signing, purpose-scoped link tokens, TOTP) from the domain logic. It acts
// as an Infrastructure service injected into the Application layer via small
// interfaces ([TokenManager] methods, Notifier-style contracts).
package sec

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type discriminators carried in the "typ" claim. A refresh token must
// never be accepted where an access token is required and vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AuthClaims represents the payload embedded inside a session JWT.
//
// # Why custom claims?
//
// By embedding the user ID and role directly inside the JWT, the
// authentication middleware can reconstruct the active user context WITHOUT
// querying the database on every single API request. Only the blacklist is
// consulted server-side.
//
// The subject is the Snowflake user ID rendered as a decimal string: JSON
// numbers travel as float64 and would silently corrupt IDs above 2^53.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	Role      string `json:"rol"`
	TokenType string `json:"typ"`
}

// UserID parses the subject claim back into a Snowflake ID.
func (claims *AuthClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("sec: malformed subject claim: %w", err)
	}
	return id, nil
}

// TokenManager handles generation and verification of HS256 session JWTs.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewTokenManager creates a TokenManager signing with the shared HMAC secret.
func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL reports the configured access-token lifetime.
func (manager *TokenManager) AccessTTL() time.Duration { return manager.accessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (manager *TokenManager) RefreshTTL() time.Duration { return manager.refreshTTL }

// GenerateAccessToken creates a short-lived access JWT for a user.
// The returned jti uniquely identifies this token instance.
func (manager *TokenManager) GenerateAccessToken(userID int64, role Role) (token string, jti string, err error) {
	return manager.generate(userID, string(role), TokenTypeAccess, manager.accessTTL)
}

// GenerateRefreshToken creates a long-lived refresh JWT for a user.
// Refresh tokens are single-use: the jti is marked consumed on rotation.
func (manager *TokenManager) GenerateRefreshToken(userID int64, role Role) (token string, jti string, err error) {
	return manager.generate(userID, string(role), TokenTypeRefresh, manager.refreshTTL)
}

func (manager *TokenManager) generate(userID int64, role, tokenType string, ttl time.Duration) (string, string, error) {
	currentTime := manager.now()
	jti := uuid.NewString()

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    manager.issuer,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(ttl)),
		},
		Role:      role,
		TokenType: tokenType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(manager.secret)
	if err != nil {
		return "", "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signed, jti, nil
}

// VerifyAccessToken checks signature, expiry, issuer, and token type of an
// access JWT.
func (manager *TokenManager) VerifyAccessToken(tokenString string) (*AuthClaims, error) {
	return manager.verify(tokenString, TokenTypeAccess)
}

// VerifyRefreshToken checks signature, expiry, issuer, and token type of a
// refresh JWT.
func (manager *TokenManager) VerifyRefreshToken(tokenString string) (*AuthClaims, error) {
	return manager.verify(tokenString, TokenTypeRefresh)
}

func (manager *TokenManager) verify(tokenString, expectedType string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
			}
			return manager.secret, nil
		},
		jwt.WithIssuer(manager.issuer),
		jwt.WithTimeFunc(manager.now),
	)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("sec: token type %q where %q required", claims.TokenType, expectedType)
	}

	return claims, nil
}
