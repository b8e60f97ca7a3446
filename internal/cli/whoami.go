package cli

import (
	"fmt"
	"time"

	"github.com/wrenchat/wren/internal/config"
	"github.com/wrenchat/wren/internal/session"
)

// WhoamiCommand reports the saved session state without contacting the
// server.
func WhoamiCommand(cfg *config.Config) error {
	token, err := session.LoadToken(cfg.AccessKey)
	if err != nil {
		return err
	}
	if token == "" {
		fmt.Println("Not logged in. Run `wren login` first.")
		return nil
	}

	fmt.Printf("Token file: %s\n", cfg.AccessKey)
	if sub, ok := session.TokenSubject(token); ok {
		fmt.Printf("Subject: %s\n", sub)
	}
	if exp, ok := session.TokenExpiry(token); ok {
		if session.TokenExpired(token, time.Now()) {
			fmt.Printf("Token expired at %s\n", exp.Format(time.RFC3339))
		} else {
			fmt.Printf("Token valid until %s\n", exp.Format(time.RFC3339))
		}
	} else {
		fmt.Println("Token carries no expiry hint; the server has the last word.")
	}
	return nil
}
