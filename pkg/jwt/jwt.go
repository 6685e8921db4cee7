package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrRevokedToken = errors.New("token has been revoked")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Type     string   `json:"type"`
	IssuedNs int64    `json:"iat_ns"`
}

// Config holds token settings.
type Config struct {
	// Secret selects HS256 when set; otherwise an RSA key pair is generated
	// at startup and tokens are signed with RS256.
	Secret          string        `mapstructure:"secret"`
	Issuer          string        `mapstructure:"issuer"`
	Audience        string        `mapstructure:"audience"`
	AccessDuration  time.Duration `mapstructure:"access_duration"`
	RefreshDuration time.Duration `mapstructure:"refresh_duration"`
}

// TokenPair is the result of issuing tokens.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  int64
	RefreshExpiresAt int64
}

// Manager handles JWT operations.
type Manager struct {
	method  jwt.SigningMethod
	signKey interface{}
	verKey  interface{}
	cfg     Config
	now     func() time.Time

	// userID -> tokens issued at or before this instant are rejected
	revokedBefore map[string]time.Time
	mu            sync.RWMutex
}

// NewManager creates a new JWT manager.
func NewManager(cfg Config) (*Manager, error) {
	m := &Manager{
		cfg:           cfg,
		now:           time.Now,
		revokedBefore: make(map[string]time.Time),
	}

	if cfg.Secret != "" {
		m.method = jwt.SigningMethodHS256
		m.signKey = []byte(cfg.Secret)
		m.verKey = []byte(cfg.Secret)
		return m, nil
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	m.method = jwt.SigningMethodRS256
	m.signKey = privateKey
	m.verKey = &privateKey.PublicKey
	return m, nil
}

// GenerateTokenPair creates access and refresh tokens.
func (m *Manager) GenerateTokenPair(userID, email, username string, roles []string) (*TokenPair, error) {
	now := m.now()

	access, err := m.sign(&Claims{
		RegisteredClaims: m.registered(userID, now, m.cfg.AccessDuration),
		UserID:           userID,
		Email:            email,
		Username:         username,
		Roles:            roles,
		Type:             TokenTypeAccess,
		IssuedNs:         now.UnixNano(),
	})
	if err != nil {
		return nil, err
	}

	refresh, err := m.sign(&Claims{
		RegisteredClaims: m.registered(userID, now, m.cfg.RefreshDuration),
		UserID:           userID,
		Email:            email,
		Username:         username,
		Roles:            roles,
		Type:             TokenTypeRefresh,
		IssuedNs:         now.UnixNano(),
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  now.Add(m.cfg.AccessDuration).Unix(),
		RefreshExpiresAt: now.Add(m.cfg.RefreshDuration).Unix(),
	}, nil
}

// ValidateToken validates a token and returns claims.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.cfg.Issuer))
	}
	if m.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(m.cfg.Audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return m.verKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	if m.isRevoked(claims) {
		return nil, ErrRevokedToken
	}

	return claims, nil
}

// ValidateAccessToken validates a token and requires it to be an access token.
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshTokens creates a new token pair from a valid refresh token.
func (m *Manager) RefreshTokens(refreshToken string) (*TokenPair, *Claims, error) {
	claims, err := m.ValidateToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	if claims.Type != TokenTypeRefresh {
		return nil, nil, ErrInvalidToken
	}

	pair, err := m.GenerateTokenPair(claims.UserID, claims.Email, claims.Username, claims.Roles)
	if err != nil {
		return nil, nil, err
	}
	return pair, claims, nil
}

// RevokeUserTokens revokes every token issued to the user up to now.
func (m *Manager) RevokeUserTokens(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revokedBefore[userID] = m.now()
}

// CleanupExpiredRevocations drops revocations older than the refresh lifetime;
// every token they covered has expired by then.
func (m *Manager) CleanupExpiredRevocations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-m.cfg.RefreshDuration)
	for userID, at := range m.revokedBefore {
		if at.Before(cutoff) {
			delete(m.revokedBefore, userID)
		}
	}
}

func (m *Manager) isRevoked(claims *Claims) bool {
	m.mu.RLock()
	at, ok := m.revokedBefore[claims.UserID]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	return claims.IssuedNs <= at.UnixNano()
}

func (m *Manager) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	rc := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    m.cfg.Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if m.cfg.Audience != "" {
		rc.Audience = jwt.ClaimStrings{m.cfg.Audience}
	}
	return rc
}

func (m *Manager) sign(claims *Claims) (string, error) {
	return jwt.NewWithClaims(m.method, claims).SignedString(m.signKey)
}
