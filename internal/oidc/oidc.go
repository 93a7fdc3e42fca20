package oidc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/middleware"
)

// Verifier wraps the OIDC provider and token verifier
type Verifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// IssuerURL builds the Keycloak realm issuer. A URL that already names a realm is used as is.
func IssuerURL(kc config.KeycloakConfig) string {
	base := strings.TrimRight(kc.URL, "/")
	if kc.Realm == "" || strings.Contains(base, "/realms/") {
		return base
	}
	return base + "/realms/" + kc.Realm
}

// NewVerifier discovers the provider for the configured realm.
func NewVerifier(ctx context.Context, kc config.KeycloakConfig) (*Verifier, error) {
	if kc.URL == "" {
		return nil, errors.New("keycloak url is not configured")
	}
	provider, err := oidc.NewProvider(ctx, IssuerURL(kc))
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: kc.ClientID})
	return &Verifier{provider: provider, verifier: verifier}, nil
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}
