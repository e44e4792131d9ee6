// ABOUTME: JWT bearer token validation for MCP requests
// ABOUTME: HS256 only with optional audience/issuer checks and typed failures

package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Validation errors. Each maps to one failure class surfaced to callers.
var (
	ErrMalformedToken  = errors.New("malformed token")
	ErrBadSignature    = errors.New("bad token signature")
	ErrExpired         = errors.New("token expired")
	ErrNotYetValid     = errors.New("token not yet valid")
	ErrInvalidAudience = errors.New("invalid token audience")
	ErrInvalidIssuer   = errors.New("invalid token issuer")
	ErrMissingClaims   = errors.New("missing required claim")
	ErrInvalidRole     = errors.New("invalid role claim")
)

// TokenValidator verifies a raw bearer token into an Identity.
type TokenValidator interface {
	Validate(raw string) (Identity, error)
}

// Validator implements TokenValidator for HS256-signed JWTs.
// Audience and issuer are enforced only when configured non-empty.
// No clock skew tolerance: expiry and not-before compare exactly.
type Validator struct {
	secret   []byte
	audience string
	issuer   string
	logger   *slog.Logger
}

// NewValidator creates a validator with the given signing secret and policy.
func NewValidator(secret []byte, audience, issuer string, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		secret:   secret,
		audience: audience,
		issuer:   issuer,
		logger:   logger.With("component", "auth"),
	}
}

// Validate verifies signature, algorithm, timestamps, and configured
// audience/issuer, then extracts the sub and role claims.
func (v *Validator) Validate(raw string) (Identity, error) {
	id, err := v.validate(raw)
	if err != nil {
		v.logger.Warn("token validation failed", "error", err)
		return Identity{}, err
	}
	v.logger.Debug("token validated", "user_id", id.UserID, "role", id.Role)
	return id, nil
}

func (v *Validator) validate(raw string) (Identity, error) {
	opts := []jwt.ParserOption{
		// Reject any declared algorithm other than HS256, including "none".
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, classifyJWTError(err)
	}
	if !token.Valid {
		return Identity{}, ErrMalformedToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrMalformedToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, fmt.Errorf("%w: sub", ErrMissingClaims)
	}

	roleClaim, ok := claims["role"].(string)
	if !ok || roleClaim == "" {
		return Identity{}, fmt.Errorf("%w: role", ErrMissingClaims)
	}
	role, err := ParseRole(roleClaim)
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: sub, Role: role}, nil
}

// classifyJWTError maps golang-jwt parse failures to our sentinel errors.
func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrInvalidAudience
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrInvalidIssuer
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrBadSignature
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}

// Mint creates a signed token for the given user. Token issuance is not part
// of the server's surface; this exists for the dev CLI and tests.
func (v *Validator) Mint(userID string, role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if v.audience != "" {
		claims["aud"] = v.audience
	}
	if v.issuer != "" {
		claims["iss"] = v.issuer
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
