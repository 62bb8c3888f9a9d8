package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"notify_hub/internal/config"
	"notify_hub/internal/domain"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Subject is the identity a valid credential resolves to.
type Subject struct {
	UserID   string
	Username string
}

// TokenValidator verifies a bearer credential. Every failure wraps
// domain.ErrAuthentication.
type TokenValidator interface {
	Validate(token string) (Subject, error)
}

// Claims mirrors the payload issued by the accounts service: the user id
// travels in "id" and the username in "sub".
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

type JWTValidator struct {
	secret []byte
	method string
}

func NewJWTValidator(cfg *config.Config) TokenValidator {
	return &JWTValidator{secret: []byte(cfg.JWTSecret), method: cfg.JWTAlgorithm}
}

func (v *JWTValidator) Validate(token string) (Subject, error) {
	if token == "" {
		return Subject{}, fmt.Errorf("%w: %w", domain.ErrAuthentication, ErrMissingToken)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{v.method}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Subject{}, fmt.Errorf("%w: %w", domain.ErrAuthentication, errors.Join(ErrInvalidToken, err))
	}
	if claims.UserID == "" {
		return Subject{}, fmt.Errorf("%w: %w: missing id claim", domain.ErrAuthentication, ErrInvalidToken)
	}
	return Subject{UserID: claims.UserID, Username: claims.Subject}, nil
}

// IssueToken signs a token in the format Validate accepts. Used by tests and
// local tooling; production tokens come from the accounts service.
func IssueToken(secret, userID, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
