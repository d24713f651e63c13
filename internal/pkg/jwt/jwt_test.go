package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "skillx-test-secret"

func signed(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func claimsFor(userID int64, exp time.Time) Claims {
	return Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
}

func TestGenerateToken_Payload(t *testing.T) {
	token, err := GenerateToken(42, testSecret, 168)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "HS256", parsed.Header["alg"])

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(42), claims["userId"])
	assert.NotContains(t, claims, "user_id")
	assert.NotContains(t, claims, "sub")

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	iat, err := claims.GetIssuedAt()
	require.NoError(t, err)
	assert.Equal(t, 168*time.Hour, exp.Sub(iat.Time))
}

func TestParseToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken(7, testSecret, 1)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseToken_OnlyHS256(t *testing.T) {
	exp := time.Now().Add(time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"HS512 with same secret", signed(t, jwt.SigningMethodHS512, []byte(testSecret), claimsFor(1, exp))},
		{"HS384 with same secret", signed(t, jwt.SigningMethodHS384, []byte(testSecret), claimsFor(1, exp))},
		{"unsigned", signed(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claimsFor(1, exp))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.token, testSecret)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}

	// 同样的载荷用 HS256 签名则通过
	claims, err := ParseToken(signed(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(1, exp)), testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
}

func TestParseToken_Expired(t *testing.T) {
	token := signed(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor(3, time.Now().Add(-time.Minute)))

	claims, err := ParseToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.NotErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestParseToken_Rejected(t *testing.T) {
	valid, err := GenerateToken(5, testSecret, 24)
	require.NoError(t, err)
	other, err := GenerateToken(6, testSecret, 24)
	require.NoError(t, err)
	v, o := strings.Split(valid, "."), strings.Split(other, ".")
	swapped := strings.Join([]string{v[0], o[1], v[2]}, ".")

	notYet := claimsFor(5, time.Now().Add(2*time.Hour))
	notYet.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "another-secret"},
		{"not yet valid", signed(t, jwt.SigningMethodHS256, []byte(testSecret), notYet), testSecret},
		{"payload swapped", swapped, testSecret},
		{"garbage", "not-a-jwt", testSecret},
		{"empty", "", testSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}
