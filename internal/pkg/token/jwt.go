package token

import (
	"errors"
	"fmt"
	"time"

	"notes-versioning-be/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TypeBearer = "bearer"

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	jwt.RegisteredClaims
}

// Manager issues and validates bearer tokens. Subject is the account email.
type Manager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(cfg config.JWTConfig) (*Manager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt secret key is empty")
	}

	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", cfg.Algorithm)
	}

	return &Manager{
		secret: []byte(cfg.SecretKey),
		method: method,
		ttl:    cfg.AccessTokenExpires,
		now:    time.Now,
	}, nil
}

func (m *Manager) Issue(subject string) (string, *Claims, error) {
	issuedAt := m.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
