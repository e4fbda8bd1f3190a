// Command token-generator mints an API access token for a user, signed with
// the server's configured JWT secret.
//
//	PKGWATCH_AUTH_JWT_SECRET=... token-generator -user 6f1c...
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/phrazzld/pkgwatch/internal/config"
	"github.com/phrazzld/pkgwatch/internal/service/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("token-generator: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token-generator", flag.ContinueOnError)
	user := fs.String("user", "", "ID of the user the token is issued for")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userID, err := uuid.Parse(*user)
	if err != nil || userID == uuid.Nil {
		return fmt.Errorf("-user must be a non-nil UUID, got %q", *user)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	return writeToken(cfg.Auth, userID, out)
}

func writeToken(cfg config.AuthConfig, userID uuid.UUID, out io.Writer) error {
	tokens, err := auth.NewTokenService(cfg)
	if err != nil {
		return err
	}
	token, err := tokens.GenerateToken(context.Background(), userID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
