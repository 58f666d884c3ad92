// Package auth provides the acting-member identity collaborator: JWT bearer
// tokens for attribution and bcrypt-backed step-up PIN verification for
// high-value confirmations.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
)

// JWTManager handles token generation and validation.
type JWTManager struct {
	secretKey      []byte
	tokenDuration  time.Duration
	stepUpDuration time.Duration
}

// Claims are the custom JWT claims for a member session. StepUp marks a
// short-lived token minted after step-up verification; presenting one counts
// as verified for settlement confirmation.
type Claims struct {
	MemberID string `json:"member_id"`
	StepUp   bool   `json:"step_up,omitempty"`
	jwt.RegisteredClaims
}

// NewJWTManager creates a JWT manager. secretKey should be a strong random
// string (e.g., 32 bytes). tokenDuration covers session tokens;
// stepUpDuration covers the short-lived verified tokens.
func NewJWTManager(secretKey string, tokenDuration, stepUpDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:      []byte(secretKey),
		tokenDuration:  tokenDuration,
		stepUpDuration: stepUpDuration,
	}
}

// Generate creates a session token for the given member.
func (m *JWTManager) Generate(memberID string) (string, error) {
	return m.sign(memberID, false, m.tokenDuration)
}

// GenerateStepUp creates a short-lived token carrying the step-up claim,
// minted only after the member passed PIN verification.
func (m *JWTManager) GenerateStepUp(memberID string) (string, error) {
	return m.sign(memberID, true, m.stepUpDuration)
}

func (m *JWTManager) sign(memberID string, stepUp bool, duration time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		MemberID: memberID,
		StepUp:   stepUp,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses and validates a token, returning the claims if valid.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
