package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"task-tracker.com/task-tracker/internal/dashboard"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/internal/render"
	"task-tracker.com/task-tracker/pkg/constants"
)

var (
	dashboardScope   string
	dashboardHorizon int
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ls"},
	Short:   "Show your tasks, the actions available on each, and KPIs",
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := openDashboard(cmd.Context())
		if err != nil {
			return err
		}

		view, err := board.Load(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), render.Dashboard(view))
		return nil
	},
}

func init() {
	dashboardCmd.PersistentFlags().StringVar(&dashboardScope, "scope", "", "all, pending or approved (defaults to your role's view)")
	dashboardCmd.PersistentFlags().IntVar(&dashboardHorizon, "horizon", 7, "days ahead that count as an upcoming deadline")
	rootCmd.AddCommand(dashboardCmd)
}

func openDashboard(ctx context.Context) (*dashboard.Dashboard, error) {
	s, err := requireLogin(ctx)
	if err != nil {
		return nil, err
	}

	opts := []dashboard.Option{dashboard.WithHorizonDays(dashboardHorizon)}
	if dashboardScope != "" {
		scope := constants.TaskScope(dashboardScope)
		if !scope.IsValid() {
			return nil, apperrors.Validation(fmt.Sprintf("unknown scope %q", dashboardScope))
		}
		opts = append(opts, dashboard.WithScope(scope))
	}

	return dashboard.New(s.client, s.credential(), s.file.User(), opts...), nil
}

// runAction performs one dashboard action and prints the refreshed view.
func runAction(cmd *cobra.Command, act func(ctx context.Context, d *dashboard.Dashboard) (*dashboard.View, error)) error {
	board, err := openDashboard(cmd.Context())
	if err != nil {
		return err
	}

	view, err := act(cmd.Context(), board)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), render.Dashboard(view))
	return nil
}
