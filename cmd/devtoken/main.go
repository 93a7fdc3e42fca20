// Command devtoken prints an HS256 access token signed with JWT_SECRET, for
// calling the API locally without Keycloak.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/tokens"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
)

func main() {
	sub := flag.String("sub", "dev-user", "user id placed in the sub claim")
	name := flag.String("name", "Developer", "display name claim")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	raw, err := tokens.GenerateAccessToken(cfg.JWT.Secret, *sub, *name, cfg.JWT.AccessTokenTTL)
	if err != nil {
		logger.Fatalf("failed to sign token: %v", err)
	}
	fmt.Fprintln(os.Stdout, raw)
}
