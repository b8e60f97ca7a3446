// Package cli implements the headless subcommands. They run a single
// request flow and exit; the interactive surface lives in internal/ui.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/wrenchat/wren/internal/api"
	"github.com/wrenchat/wren/internal/config"
	"github.com/wrenchat/wren/internal/session"
	"github.com/wrenchat/wren/pkg/logger"
)

// staticTokens is a throwaway token source for the one-shot commands. The
// login flow itself runs unauthenticated, so there is never a token to stamp
// and nothing to clear on a 401.
type staticTokens struct{ token string }

func (s *staticTokens) Token() string { return s.token }
func (s *staticTokens) Clear()        { s.token = "" }

// LoginCommand prompts for credentials, obtains an access token and saves it
// for later runs. An unknown nickname is registered first, then logged in.
func LoginCommand(cfg *config.Config) error {
	nickname, password, err := promptCredentials()
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.ServerURL, &staticTokens{})
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warnf("closing api client: %v", err)
		}
	}()

	ctx := context.Background()
	token, err := client.RequestToken(ctx, nickname, password)
	if errors.Is(err, api.ErrCredentialRejected) {
		// Unknown nickname or wrong password. Try registering; an existing
		// nickname rejects the registration and we report bad credentials.
		if _, err := client.CreateUser(ctx, nickname, password); err != nil {
			if errors.Is(err, api.ErrCredentialRejected) {
				return fmt.Errorf("invalid credentials for %q", nickname)
			}
			return err
		}
		token, err = client.RequestToken(ctx, nickname, password)
		if err != nil {
			return err
		}
		fmt.Printf("Registered new user %q\n", nickname)
	} else if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.WrenHome, 0755); err != nil {
		return fmt.Errorf("failed to create home directory: %w", err)
	}
	if err := session.SaveToken(cfg.AccessKey, token); err != nil {
		return err
	}

	fmt.Printf("Logged in as %q\n", nickname)
	fmt.Printf("Token saved to: %s\n", cfg.AccessKey)
	return nil
}

// LogoutCommand removes the saved access token.
func LogoutCommand(cfg *config.Config) error {
	if err := session.RemoveToken(cfg.AccessKey); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func promptCredentials() (string, string, error) {
	fmt.Print("Nickname: ")
	reader := bufio.NewReader(os.Stdin)
	nickname, err := reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("failed to read nickname: %w", err)
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return "", "", fmt.Errorf("nickname must not be empty")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	password := string(raw)
	if password == "" {
		return "", "", fmt.Errorf("password must not be empty")
	}

	return nickname, password, nil
}
