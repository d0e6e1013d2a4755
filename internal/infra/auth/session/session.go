package session

import (
	"errors"
	"strings"
	"time"

	"officine/internal/config"
	"officine/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "officine"

// Manager mints and verifies HS256 session tokens. Every failure path of
// Verify collapses into domain.ErrUnauthenticated so a malformed credential
// can never surface as anything but an authentication failure.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(cfg config.Config) (*Manager, error) {
	secret := strings.TrimSpace(cfg.SessionSecret)
	if secret == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    cfg.SessionTTL(),
		now:    time.Now,
	}, nil
}

// NewManagerWithClock is for tests.
func NewManagerWithClock(secret string, ttl time.Duration, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: now}
}

func (m *Manager) Issue(subjectID string) (string, error) {
	if subjectID == "" {
		return "", errors.New("subject id is required")
	}
	now := m.now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subjectID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Verify(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", domain.ErrUnauthenticated
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return m.secret, nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", domain.ErrUnauthenticated
	}
	return claims.Subject, nil
}

var _ domain.SessionVerifier = (*Manager)(nil)
