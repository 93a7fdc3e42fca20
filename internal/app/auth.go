package app

import (
	"context"
	"errors"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/oidc"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/tokens"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/middleware"
)

// ErrNoVerifier is returned when no authentication method is configured.
var ErrNoVerifier = errors.New("no token verifier configured: set KEYCLOAK_URL, JWT_SECRET or ALLOW_INSECURE_TOKEN")

// NewVerifier picks Keycloak OIDC, then the shared-secret JWT verifier, then
// the insecure verifier when explicitly allowed.
func NewVerifier(ctx context.Context, cfg *config.Config) (middleware.Verifier, string, error) {
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Keycloak)
		if err == nil {
			return ver, "oidc", nil
		}
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
	}
	if cfg.JWT.Secret != "" {
		return tokens.NewHMACVerifier(cfg.JWT.Secret), "jwt", nil
	}
	if cfg.Auth.AllowInsecureToken {
		logger.Warn("enabling insecure token verifier (integration mode)")
		return oidc.NewInsecureVerifier(), "insecure", nil
	}
	return nil, "", ErrNoVerifier
}
