package session

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/mahimurrahman/a1-swiftcarte-commerce/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// signingKeyInfo labels the HKDF expansion; bump it to invalidate every
// outstanding session cookie.
const signingKeyInfo = "swiftcart session token v1"

// signingKey stretches the configured secret into a 32 byte HMAC key so the
// raw secret never signs anything directly.
func signingKey(secret string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(signingKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive session key: %w", err)
	}
	return key, nil
}

// Claims identify one anonymous shopper. The session id scopes the cart and
// the newsletter rate limit.
type Claims struct {
	SessionID uuid.UUID `json:"sid"`
	jwt.RegisteredClaims
}

// Mint issues a signed session token for sessionID.
func Mint(cfg config.SessionConfig, now time.Time, sessionID uuid.UUID) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("session secret is required")
	}
	if cfg.TTL <= 0 {
		return "", fmt.Errorf("session ttl must be positive")
	}
	if sessionID == uuid.Nil {
		return "", fmt.Errorf("session id is required")
	}

	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
			ID:        uuid.NewString(),
		},
	}

	key, err := signingKey(cfg.Secret)
	if err != nil {
		return "", err
	}
	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Parse validates a session token and returns its claims.
func Parse(cfg config.SessionConfig, tokenString string) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	key, err := signingKey(cfg.Secret)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwtSigningMethod.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtSigningMethod {
			return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
		}
		return key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.SessionID == uuid.Nil {
		return nil, fmt.Errorf("session token carries no session id")
	}
	return claims, nil
}
