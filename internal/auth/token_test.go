// ABOUTME: Tests for JWT validation: signature, algorithm, lifetime, claims
// ABOUTME: Covers audience and issuer enforcement and failure classification

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-that-is-long-enough-0")

func signClaims(t *testing.T, secret []byte, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func defaultClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":  "user-123",
		"role": "User",
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}
}

func TestValidate_ValidToken(t *testing.T) {
	v := NewValidator(testSecret, "", "", nil)
	raw := signClaims(t, testSecret, jwt.SigningMethodHS256, defaultClaims())

	id, err := v.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id.UserID)
	assert.Equal(t, RoleUser, id.Role)
}

func TestValidate_MintRoundTrip(t *testing.T) {
	v := NewValidator(testSecret, "tax-clients", "tax-gateway", nil)

	raw, err := v.Mint("another-user", RoleReadOnly, time.Hour)
	require.NoError(t, err)

	id, err := v.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "another-user", id.UserID)
	assert.Equal(t, RoleReadOnly, id.Role)
}

func TestValidate_WrongSecret(t *testing.T) {
	v := NewValidator(testSecret, "", "", nil)
	raw := signClaims(t, []byte("some-other-secret-entirely-here-1"), jwt.SigningMethodHS256, defaultClaims())

	_, err := v.Validate(raw)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestValidate_WrongAlgorithm(t *testing.T) {
	v := NewValidator(testSecret, "", "", nil)
	raw := signClaims(t, testSecret, jwt.SigningMethodHS512, defaultClaims())

	_, err := v.Validate(raw)
	assert.Error(t, err, "HS512 tokens must be rejected")
}

func TestValidate_Expired(t *testing.T) {
	v := NewValidator(testSecret, "", "", nil)
	claims := defaultClaims()
	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	raw := signClaims(t, testSecret, jwt.SigningMethodHS256, claims)

	_, err := v.Validate(raw)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestValidate_NotYetValid(t *testing.T) {
	v := NewValidator(testSecret, "", "", nil)
	claims := defaultClaims()
	claims["nbf"] = time.Now().Add(time.Hour).Unix()
	raw := signClaims(t, testSecret, jwt.SigningMethodHS256, claims)

	_, err := v.Validate(raw)
	assert.ErrorIs(t, err, ErrNotYetValid)
}

func TestValidate_MissingSubject(t *testing.T) {
	v := NewValidator(testSecret, "", "", nil)
	claims := defaultClaims()
	delete(claims, "sub")
	raw := signClaims(t, testSecret, jwt.SigningMethodHS256, claims)

	_, err := v.Validate(raw)
	assert.ErrorIs(t, err, ErrMissingClaims)
}

func TestValidate_MissingRole(t *testing.T) {
	v := NewValidator(testSecret, "", "", nil)
	claims := defaultClaims()
	delete(claims, "role")
	raw := signClaims(t, testSecret, jwt.SigningMethodHS256, claims)

	_, err := v.Validate(raw)
	assert.ErrorIs(t, err, ErrMissingClaims)
}

func TestValidate_UnknownRole(t *testing.T) {
	v := NewValidator(testSecret, "", "", nil)
	claims := defaultClaims()
	claims["role"] = "Superuser"
	raw := signClaims(t, testSecret, jwt.SigningMethodHS256, claims)

	_, err := v.Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestValidate_AudienceEnforcedOnlyWhenConfigured(t *testing.T) {
	claims := defaultClaims()
	claims["aud"] = "someone-else"
	raw := signClaims(t, testSecret, jwt.SigningMethodHS256, claims)

	relaxed := NewValidator(testSecret, "", "", nil)
	_, err := relaxed.Validate(raw)
	assert.NoError(t, err)

	strict := NewValidator(testSecret, "tax-clients", "", nil)
	_, err = strict.Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidAudience)
}

func TestValidate_IssuerEnforcedOnlyWhenConfigured(t *testing.T) {
	claims := defaultClaims()
	claims["iss"] = "somewhere-else"
	raw := signClaims(t, testSecret, jwt.SigningMethodHS256, claims)

	relaxed := NewValidator(testSecret, "", "", nil)
	_, err := relaxed.Validate(raw)
	assert.NoError(t, err)

	strict := NewValidator(testSecret, "", "tax-gateway", nil)
	_, err = strict.Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidIssuer)
}

func TestValidate_Garbage(t *testing.T) {
	v := NewValidator(testSecret, "", "", nil)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := v.Validate(raw)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"standard", "Bearer abc123", "abc123", nil},
		{"lowercase scheme", "bearer abc123", "abc123", nil},
		{"extra whitespace", "Bearer   abc123  ", "abc123", nil},
		{"missing header", "", "", ErrMissingCredentials},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "", ErrMalformedToken},
		{"scheme only", "Bearer ", "", ErrMalformedToken},
		{"no scheme", "abc123", "", ErrMalformedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = ParseRole("READONLY")
	require.NoError(t, err)
	assert.Equal(t, RoleReadOnly, role)

	_, err = ParseRole("wizard")
	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.Contains(t, err.Error(), "valid options are")
}

func TestIdentityFromContext(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: "user-123", Role: RoleUser})

	id, err := IdentityFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id.UserID)

	_, err = IdentityFromContext(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
