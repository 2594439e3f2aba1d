package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rogpeppe/go-internal/testscript"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	config "task-tracker.com/task-tracker/internal/configs"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	httpapi "task-tracker.com/task-tracker/internal/http"
	"task-tracker.com/task-tracker/internal/sessions"
)

const scriptPassword = "password123"

// cobra commands and their flags are package globals, so scripts take turns.
var cliMu sync.Mutex

func TestCLIScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata/script",
		Setup: setupBackend,
		Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
			"task-tracker": runCLI,
		},
	})
}

// setupBackend starts a seeded API server for one script and exposes its
// address and a token per seeded user.
func setupBackend(env *testscript.Env) error {
	db, err := config.OpenDatabase(filepath.Join(env.WorkDir, "tasks.db"))
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	env.Defer(func() { _ = sqlDB.Close() })

	cfg := config.Config{
		JWTSecret:           "0123456789abcdef",
		JWTTTLHours:         1,
		UpcomingHorizonDays: 7,
		RateLimit:           1000,
	}
	taskService, authService := newServices(cfg, db, sessions.NewMemoryRevoker())

	ctx := context.Background()
	if _, err := authService.SeedUsers(ctx, scriptPassword); err != nil {
		return err
	}

	e := echo.New()
	httpapi.Register(e, httpapi.NewHandler(taskService, authService), authService, cfg.RateLimit)
	srv := httptest.NewServer(e)
	env.Defer(srv.Close)
	env.Setenv("API_URL", srv.URL)

	tokens := map[string]string{
		"EXECUTOR_TOKEN": "pelaksana1",
		"LEADER_TOKEN":   "leader1",
		"MANAGER_TOKEN":  "manager1",
	}
	for key, username := range tokens {
		session, err := authService.Login(ctx, username, scriptPassword)
		if err != nil {
			return fmt.Errorf("login %s: %w", username, err)
		}
		env.Setenv(key, session.Token)
	}
	return nil
}

// runCLI executes the root command in-process. Errors are printed the way
// Execute prints them so scripts can match on stderr.
func runCLI(ts *testscript.TestScript, neg bool, args []string) {
	cliMu.Lock()
	defer cliMu.Unlock()
	defer resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(&stderr, "error:", apperrors.Message(err))
	}
	_, _ = ts.Stdout().Write(stdout.Bytes())
	_, _ = ts.Stderr().Write(stderr.Bytes())

	switch {
	case neg && err == nil:
		ts.Fatalf("task-tracker %v: unexpected success", args)
	case !neg && err != nil:
		ts.Fatalf("task-tracker %v: %v", args, err)
	}
}

func resetFlags(c *cobra.Command) {
	for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestResetFlags(t *testing.T) {
	cliMu.Lock()
	defer cliMu.Unlock()

	if err := taskCreateCmd.Flags().Set("title", "leftover"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := rootCmd.PersistentFlags().Set("token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}

	resetFlags(rootCmd)

	if taskTitle != "" || tokenFlag != "" {
		t.Errorf("flags survived reset: title=%q token=%q", taskTitle, tokenFlag)
	}
	if taskCreateCmd.Flags().Changed("title") {
		t.Error("expected title to be marked unchanged")
	}
}
