// Package token issues and verifies the HS256 access tokens used by the API.
package token

import (
	"strings"
	"time"

	authdomain "github.com/alphaedge/backend/internal/auth/domain"
	"github.com/alphaedge/backend/internal/clock"
	userdomain "github.com/alphaedge/backend/internal/user/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
)

const accessTokenTTL = 24 * time.Hour

type Manager struct {
	secret []byte
	clock  clock.Clock
}

func NewManager(secret string, clk clock.Clock) *Manager {
	return &Manager{secret: []byte(secret), clock: clk}
}

// Issue signs a 24h access token carrying the user's id, email and name.
func (m *Manager) Issue(user *userdomain.User) (string, error) {
	if len(m.secret) == 0 {
		return "", authdomain.ErrInvalidToken
	}
	now := m.clock.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"name":  user.Name,
		"iat":   now.Unix(),
		"exp":   now.Add(accessTokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses a token string and returns its claims. Expired, malformed and
// wrongly signed tokens all come back as ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (*authdomain.Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, authdomain.ErrInvalidToken
	}

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, authdomain.ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time {
		return m.clock.Now().UTC()
	}))
	if err != nil || !parsed.Valid {
		return nil, authdomain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, authdomain.ErrInvalidToken
	}
	subject, _ := claims["sub"].(string)
	userID, err := snowflake.ParseString(subject)
	if err != nil {
		return nil, authdomain.ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return &authdomain.Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
	}, nil
}
