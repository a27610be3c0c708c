// Package google validates Google ID tokens for the social login flow.
package google

import (
	"context"
	"strings"

	authdomain "github.com/alphaedge/backend/internal/auth/domain"
	"google.golang.org/api/idtoken"
)

// Identity is the subset of a verified Google ID token the service needs.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

type Verifier interface {
	VerifyIDToken(ctx context.Context, rawToken string) (*Identity, error)
}

type verifier struct {
	clientID string
}

func NewVerifier(clientID string) Verifier {
	return &verifier{clientID: strings.TrimSpace(clientID)}
}

func (v *verifier) VerifyIDToken(ctx context.Context, rawToken string) (*Identity, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" || v.clientID == "" {
		return nil, authdomain.ErrGoogleTokenInvalid
	}

	payload, err := idtoken.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, authdomain.ErrGoogleTokenInvalid
	}

	identity := &Identity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = strings.ToLower(strings.TrimSpace(email))
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.Name = strings.TrimSpace(name)
	}
	if identity.Subject == "" || identity.Email == "" {
		return nil, authdomain.ErrGoogleTokenInvalid
	}
	return identity, nil
}
