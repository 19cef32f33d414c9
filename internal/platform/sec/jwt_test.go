// Copyright (c) 2026 InternPulse. All rights reserved.

package sec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager("test-signing-secret", "internpulse", time.Hour, 240*time.Hour)
}

/*
TestTokenManager_AccessRoundTrip generates an access token and verifies the
claims survive the trip.
*/
func TestTokenManager_AccessRoundTrip(t *testing.T) {
	manager := newTestTokenManager()

	token, jti, err := manager.GenerateAccessToken(7239561412345856001, RoleIntern)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := manager.VerifyAccessToken(token)
	require.NoError(t, err)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(7239561412345856001), userID)
	assert.Equal(t, string(RoleIntern), claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "internpulse", claims.Issuer)
}

/*
TestTokenManager_TypeConfusion feeds each token type to the other verifier.
*/
func TestTokenManager_TypeConfusion(t *testing.T) {
	manager := newTestTokenManager()

	access, _, err := manager.GenerateAccessToken(1, RoleAdmin)
	require.NoError(t, err)
	refresh, _, err := manager.GenerateRefreshToken(1, RoleAdmin)
	require.NoError(t, err)

	_, err = manager.VerifyRefreshToken(access)
	require.Error(t, err)

	_, err = manager.VerifyAccessToken(refresh)
	require.Error(t, err)
}

/*
TestTokenManager_Expiry advances the manager's clock past each TTL.
*/
func TestTokenManager_Expiry(t *testing.T) {
	manager := newTestTokenManager()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issued }

	access, _, err := manager.GenerateAccessToken(1, RoleIntern)
	require.NoError(t, err)

	manager.now = func() time.Time { return issued.Add(time.Hour + time.Minute) }
	_, err = manager.VerifyAccessToken(access)
	require.Error(t, err)

	// The refresh token outlives the access token.
	manager.now = func() time.Time { return issued }
	refresh, _, err := manager.GenerateRefreshToken(1, RoleIntern)
	require.NoError(t, err)

	manager.now = func() time.Time { return issued.Add(239 * time.Hour) }
	_, err = manager.VerifyRefreshToken(refresh)
	require.NoError(t, err)

	manager.now = func() time.Time { return issued.Add(241 * time.Hour) }
	_, err = manager.VerifyRefreshToken(refresh)
	require.Error(t, err)
}

/*
TestTokenManager_WrongSecret verifies tokens signed under a different key
are rejected.
*/
func TestTokenManager_WrongSecret(t *testing.T) {
	manager := newTestTokenManager()
	imposter := NewTokenManager("other-secret", "internpulse", time.Hour, 240*time.Hour)

	token, _, err := imposter.GenerateAccessToken(1, RoleIntern)
	require.NoError(t, err)

	_, err = manager.VerifyAccessToken(token)
	require.Error(t, err)
}

/*
TestTokenManager_WrongIssuer verifies tokens from a different issuer are
rejected even with the shared secret.
*/
func TestTokenManager_WrongIssuer(t *testing.T) {
	manager := newTestTokenManager()
	other := NewTokenManager("test-signing-secret", "someone-else", time.Hour, 240*time.Hour)

	token, _, err := other.GenerateAccessToken(1, RoleIntern)
	require.NoError(t, err)

	_, err = manager.VerifyAccessToken(token)
	require.Error(t, err)
}

/*
TestTokenManager_UniqueJTI confirms every mint gets its own token ID.
*/
func TestTokenManager_UniqueJTI(t *testing.T) {
	manager := newTestTokenManager()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		_, jti, err := manager.GenerateRefreshToken(1, RoleIntern)
		require.NoError(t, err)
		_, duplicate := seen[jti]
		require.False(t, duplicate)
		seen[jti] = struct{}{}
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw     string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"intern", RoleIntern, false},
		{"Admin", "", true},
		{"superuser", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		role, err := ParseRole(tt.raw)
		if tt.wantErr {
			require.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, role)
	}
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleIntern))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleIntern.AtLeast(RoleIntern))
	assert.False(t, RoleIntern.AtLeast(RoleAdmin))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cretpass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpass", hash)

	assert.True(t, CheckPasswordHash("s3cretpass", hash))
	assert.False(t, CheckPasswordHash("wrongpass1", hash))
	assert.False(t, CheckPasswordHash("s3cretpass", "not-a-hash"))
}
