package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleType set member role
type RoleType string

const (
	// RoleAdmin is the admin role
	RoleAdmin RoleType = "admin"
	// RoleUser is the user role
	RoleUser RoleType = "user"
)

var (
	// ErrMissingToken no credential presented
	ErrMissingToken = errors.New("no token provided")
	// ErrInvalidToken credential failed verification
	ErrInvalidToken = errors.New("invalid token")
)

// Claims structure for custom claims in JWT
type Claims struct {
	MemberID string `json:"userId"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Parser verify a bearer credential
type Parser interface {
	ParseJWT(tokenStr string) (*Claims, error)
}

// Manager sign and verify HS256 tokens
type Manager struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

// NewManager create a token manager, expiration defaults to 24h
func NewManager(secret, issuer string, expiration time.Duration) *Manager {
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), issuer: issuer, expiration: expiration}
}

// GenerateJWT generates a JWT token
func (m *Manager) GenerateJWT(memberID, username, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		MemberID: memberID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// ParseJWT parses a JWT and extracts the Claims
func (m *Manager) ParseJWT(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}

	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || claims.MemberID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearer strip the "Bearer " prefix from an Authorization header
func ExtractBearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
