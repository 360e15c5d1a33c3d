// Package auth issues and verifies the signed tokens that identify a user to the
// API, and carries the authenticated owner id through request contexts.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/LipeSan/worklog-web-app/internal/apperrors"
)

const (
	// TokenTypeSession marks tokens issued at login.
	TokenTypeSession = "session"
	// TokenTypePasswordReset marks tokens embedded in reset links.
	TokenTypePasswordReset = "password_reset"

	resetSecretSuffix = "-reset"
)

// Claims is the payload of every token.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// TokenManager signs session and password reset tokens with HS256. Reset tokens use
// a derived secret so a session token can never pass as a reset token.
type TokenManager struct {
	secret      []byte
	resetSecret []byte
	tokenTTL    time.Duration
	rememberTTL time.Duration
	resetTTL    time.Duration
	now         func() time.Time
}

func NewTokenManager(secret string, tokenTTL, rememberTTL, resetTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:      []byte(secret),
		resetSecret: []byte(secret + resetSecretSuffix),
		tokenTTL:    tokenTTL,
		rememberTTL: rememberTTL,
		resetTTL:    resetTTL,
		now:         time.Now,
	}
}

// Issue creates a session token. remember selects the long-lived TTL.
func (m *TokenManager) Issue(userID int64, email string, remember bool) (string, time.Time, error) {
	ttl := m.tokenTTL
	if remember {
		ttl = m.rememberTTL
	}
	return m.sign(m.secret, userID, email, TokenTypeSession, ttl)
}

// Verify parses a session token.
func (m *TokenManager) Verify(token string) (*Claims, error) {
	return m.parse(m.secret, token, TokenTypeSession)
}

// IssueReset creates a password reset token.
func (m *TokenManager) IssueReset(userID int64, email string) (string, time.Time, error) {
	return m.sign(m.resetSecret, userID, email, TokenTypePasswordReset, m.resetTTL)
}

// VerifyReset parses a password reset token.
func (m *TokenManager) VerifyReset(token string) (*Claims, error) {
	return m.parse(m.resetSecret, token, TokenTypePasswordReset)
}

func (m *TokenManager) sign(secret []byte, userID int64, email, tokenType string, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID: userID,
		Email:  email,
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (m *TokenManager) parse(secret []byte, token, tokenType string) (*Claims, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apperrors.NewUnauthorizedError("token expired")
	}
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("invalid token")
	}
	if claims.Type != tokenType || claims.UserID <= 0 {
		return nil, apperrors.NewUnauthorizedError("invalid token")
	}
	return claims, nil
}
