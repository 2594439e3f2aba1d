package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"task-tracker.com/task-tracker/internal/client"
	"task-tracker.com/task-tracker/internal/credentials"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/pkg/constants"
)

var (
	apiURLFlag      string
	tokenFlag       string
	credentialsPath string
)

var rootCmd = &cobra.Command{
	Use:           "task-tracker",
	Short:         "Role-based task tracking service and client",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", apperrors.Message(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "task API base URL (overrides the credentials file)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "bearer token (overrides the credentials file)")
	rootCmd.PersistentFlags().StringVar(&credentialsPath, "credentials", "", "credentials file path")
}

func resolveCredentialsPath() (string, error) {
	if credentialsPath != "" {
		return credentialsPath, nil
	}
	return credentials.DefaultPath()
}

// session is what a client command runs with: the stored login, overridden
// by flags, and a client pointed at the right server.
type session struct {
	path   string
	file   *credentials.File
	client *client.Client
}

func loadSession() (*session, error) {
	path, err := resolveCredentialsPath()
	if err != nil {
		return nil, err
	}
	file, err := credentials.Load(path)
	if err != nil {
		return nil, err
	}

	if apiURLFlag != "" {
		file.APIURL = apiURLFlag
	}
	if tokenFlag != "" {
		file.Token = tokenFlag
		file.ExpiresAt = time.Time{}
	}

	return &session{path: path, file: file, client: client.New(file.APIURL)}, nil
}

// requireLogin is loadSession for commands that need a signed-in user. A
// token given with --token names nobody locally, so its owner is looked up
// on the server instead of read from the credentials file.
func requireLogin(ctx context.Context) (*session, error) {
	s, err := loadSession()
	if err != nil {
		return nil, err
	}
	if !s.file.LoggedIn(time.Now()) {
		return nil, apperrors.Auth("not logged in, run `task-tracker login` first")
	}

	if tokenFlag != "" || !s.file.Role.IsValid() {
		if err := s.identify(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// identify replaces the stored identity with the token's owner. The file on
// disk is left alone.
func (s *session) identify(ctx context.Context) error {
	me, err := s.client.Me(ctx, s.credential())
	if err != nil {
		return err
	}
	role, ok := constants.ParseRole(me.Role)
	if !ok {
		return apperrors.Auth(fmt.Sprintf("token carries unknown role %q", me.Role))
	}

	s.file.UserID = me.UserID
	s.file.Username = me.Username
	s.file.Role = role
	s.file.ExpiresAt = me.ExpiresAt
	return nil
}

func (s *session) credential() client.Credential {
	return s.file.Credential()
}
