package session

import (
	"fmt"
	"os"
	"strings"
)

// SaveToken writes the access token to disk so later runs can reuse it.
func SaveToken(path, token string) error {
	if err := os.WriteFile(path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	return nil
}

// LoadToken reads a previously saved access token. A missing file is not an
// error; it simply means no session is saved.
func LoadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read access token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// RemoveToken deletes the saved access token, if any.
func RemoveToken(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove access token: %w", err)
	}
	return nil
}
