package credentials

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"task-tracker.com/task-tracker/pkg/constants"
)

func TestLoad_MissingFileDefaults(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.APIURL != DefaultAPIURL || f.Token != "" {
		t.Errorf("unexpected defaults %+v", f)
	}
	if f.LoggedIn(time.Now()) {
		t.Error("empty file must not count as logged in")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task-tracker", "credentials.toml")
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	in := &File{
		APIURL:    "http://tasks.internal:9000",
		Token:     "abc.def.ghi",
		UserID:    2,
		Username:  "leader1",
		Role:      constants.RoleLeader,
		ExpiresAt: expires,
	}
	if err := Save(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected 0600, got %o", perm)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Token != in.Token || out.User() != in.User() || out.APIURL != in.APIURL {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if !out.ExpiresAt.Equal(expires) {
		t.Errorf("expected expiry %v, got %v", expires, out.ExpiresAt)
	}
	if !out.LoggedIn(time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected session to be valid before expiry")
	}
	if out.LoggedIn(expires.Add(time.Second)) {
		t.Error("expected session to be invalid after expiry")
	}

	out.Clear()
	if out.Token != "" || out.APIURL != in.APIURL {
		t.Errorf("clear should keep only the api url, got %+v", out)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.toml")
	if err := os.WriteFile(path, []byte("api_url = [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
