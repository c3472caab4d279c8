package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

var guest = Principal{UserID: 42, Role: RoleGuest}

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("mySecurePassword123")
	require.NoError(t, err)
	assert.NotEqual(t, "mySecurePassword123", hashed)

	other, _ := HashPassword("mySecurePassword123")
	assert.NotEqual(t, hashed, other)

	assert.True(t, CheckPassword(hashed, "mySecurePassword123"))
	assert.False(t, CheckPassword(hashed, "wrong"))
	assert.False(t, CheckPassword(hashed, ""))
}

func TestGenerateAccessToken_Claims(t *testing.T) {
	token, err := GenerateAccessToken(guest, "guest@example.com", testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "guest@example.com", claims.Email)
	assert.Equal(t, RoleGuest, claims.Role)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
	assert.Equal(t, jwtIssuer, claims.Issuer)
	assert.Contains(t, claims.Audience, jwtAudience)

	diff := claims.ExpiresAt.Time.Sub(time.Now().Add(AccessTokenTTL)).Abs()
	assert.Less(t, diff, 2*time.Second)
}

func TestGenerateAccessToken_EmptySecret(t *testing.T) {
	token, err := GenerateAccessToken(guest, "guest@example.com", "")
	assert.Equal(t, ErrEmptyJWTSecret, err)
	assert.Empty(t, token)
}

func TestValidateToken_Failures(t *testing.T) {
	token, _ := GenerateAccessToken(guest, "guest@example.com", testSecret)

	t.Run("wrong secret", func(t *testing.T) {
		claims, err := ValidateToken(token, "wrong-secret")
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("garbage", func(t *testing.T) {
		claims, err := ValidateToken("invalid.token.format", testSecret)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("expired", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
			UserID:    42,
			Role:      RoleGuest,
			TokenType: tokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    jwtIssuer,
				Audience:  []string{jwtAudience},
				ExpiresAt: jwt.NewNumericDate(past),
				IssuedAt:  jwt.NewNumericDate(past.Add(-15 * time.Minute)),
			},
		})
		s, _ := expired.SignedString([]byte(testSecret))

		claims, err := ValidateToken(s, testSecret)
		assert.Equal(t, ErrTokenExpired, err)
		assert.Nil(t, claims)
	})
}

func TestRefreshAccessToken(t *testing.T) {
	access, refresh, err := GenerateTokens(guest, "guest@example.com", testSecret)
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	newAccess, claims, err := RefreshAccessToken(refresh, testSecret)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)

	accessClaims, err := ValidateToken(newAccess, testSecret)
	require.NoError(t, err)
	assert.Equal(t, tokenTypeAccess, accessClaims.TokenType)

	_, _, err = RefreshAccessToken(access, testSecret)
	assert.Equal(t, ErrInvalidTokenType, err)
}
