package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"task-tracker.com/task-tracker/internal/credentials"
	"task-tracker.com/task-tracker/pkg/constants"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession()
		if err != nil {
			return err
		}

		password := loginPassword
		if password == "" {
			password = os.Getenv("TASK_TRACKER_PASSWORD")
		}

		resp, err := s.client.Login(cmd.Context(), loginUsername, password)
		if err != nil {
			return err
		}

		role, _ := constants.ParseRole(resp.Role)
		s.file.Token = resp.Token
		s.file.UserID = resp.UserID
		s.file.Username = resp.Username
		s.file.Role = role
		s.file.ExpiresAt = resp.ExpiresAt

		if err := credentials.Save(s.path, s.file); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", resp.Username, role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession()
		if err != nil {
			return err
		}

		if s.file.Token != "" {
			if err := s.client.Logout(cmd.Context(), s.credential()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "server logout failed: %v\n", err)
			}
		}

		s.file.Clear()
		if err := credentials.Save(s.path, s.file); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (or TASK_TRACKER_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
