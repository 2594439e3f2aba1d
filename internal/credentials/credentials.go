// Package credentials stores the CLI's login between invocations in a TOML
// file under the user's config directory.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"task-tracker.com/task-tracker/internal/client"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

const DefaultAPIURL = "http://127.0.0.1:8080"

type File struct {
	APIURL    string         `toml:"api_url"`
	Token     string         `toml:"token,omitempty"`
	UserID    uint           `toml:"user_id,omitempty"`
	Username  string         `toml:"username,omitempty"`
	Role      constants.Role `toml:"role,omitempty"`
	ExpiresAt time.Time      `toml:"expires_at,omitempty"`
}

func (f *File) Credential() client.Credential {
	return client.Credential{Token: f.Token}
}

func (f *File) User() model.User {
	return model.User{ID: f.UserID, Username: f.Username, Role: f.Role}
}

// LoggedIn reports whether the file holds a token that has not expired.
func (f *File) LoggedIn(now time.Time) bool {
	if f.Token == "" {
		return false
	}
	return f.ExpiresAt.IsZero() || now.Before(f.ExpiresAt)
}

// Clear forgets the session but keeps the server address.
func (f *File) Clear() {
	*f = File{APIURL: f.APIURL}
}

// DefaultPath returns ~/.config/task-tracker/credentials.toml, honoring
// XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "task-tracker", "credentials.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "task-tracker", "credentials.toml"), nil
}

// Load reads the file at path. A missing file yields an empty File pointing
// at the default API address.
func Load(path string) (*File, error) {
	f := &File{APIURL: DefaultAPIURL}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), f); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	if f.APIURL == "" {
		f.APIURL = DefaultAPIURL
	}
	return f, nil
}

// Save writes f to path with owner-only permissions.
func Save(path string, f *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return os.Rename(tmp, path)
}
