package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"task-tracker.com/task-tracker/internal/client"
	"task-tracker.com/task-tracker/internal/dashboard"
	apperrors "task-tracker.com/task-tracker/internal/errors"
	"task-tracker.com/task-tracker/internal/render"
	"task-tracker.com/task-tracker/pkg/constants"
	model "task-tracker.com/task-tracker/pkg/models"
)

var (
	taskTitle       string
	taskDescription string
	taskLeader      string
	taskDue         string
	taskStartNow    bool
	taskNote        string
	usersRole       string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Work with individual tasks",
}

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task and its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		s, err := requireLogin(cmd.Context())
		if err != nil {
			return err
		}

		task, err := s.client.GetTask(cmd.Context(), s.credential(), id)
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), render.TaskDetail(task))
		return nil
	},
}

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task and send it to a leader",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireLogin(cmd.Context())
		if err != nil {
			return err
		}

		in, err := taskInput(cmd.Context(), s)
		if err != nil {
			return err
		}

		id, err := s.client.CreateTask(cmd.Context(), s.credential(), in)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created task %d\n", id)
		return nil
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task in revision and resubmit it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		s, err := requireLogin(cmd.Context())
		if err != nil {
			return err
		}
		in, err := taskInput(cmd.Context(), s)
		if err != nil {
			return err
		}

		return runAction(cmd, func(ctx context.Context, d *dashboard.Dashboard) (*dashboard.View, error) {
			return d.Resubmit(ctx, id, in)
		})
	},
}

var taskProgressCmd = &cobra.Command{
	Use:   "progress <id> <percent>",
	Short: "Report progress (leaders override it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		progress, err := strconv.Atoi(args[1])
		if err != nil {
			return apperrors.Validation(fmt.Sprintf("progress must be a number, got %q", args[1]))
		}

		return runAction(cmd, func(ctx context.Context, d *dashboard.Dashboard) (*dashboard.View, error) {
			return d.UpdateProgress(ctx, id, progress, taskNote)
		})
	},
}

var taskSubmitCmd = idAction("submit <id>", "Submit an in-progress task for review",
	func(ctx context.Context, d *dashboard.Dashboard, id uint) (*dashboard.View, error) {
		return d.Submit(ctx, id)
	})

var taskApproveCmd = idAction("approve <id>", "Approve a submitted task",
	func(ctx context.Context, d *dashboard.Dashboard, id uint) (*dashboard.View, error) {
		return d.Approve(ctx, id)
	})

var taskReviseCmd = idAction("revise <id>", "Send a submitted task back for revision",
	func(ctx context.Context, d *dashboard.Dashboard, id uint) (*dashboard.View, error) {
		return d.Revise(ctx, id, taskNote)
	})

var taskDeleteCmd = idAction("delete <id>", "Delete a task that is submitted or in revision",
	func(ctx context.Context, d *dashboard.Dashboard, id uint) (*dashboard.View, error) {
		return d.Delete(ctx, id)
	})

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users, e.g. the leaders a task can be assigned to",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireLogin(cmd.Context())
		if err != nil {
			return err
		}

		var role constants.Role
		if usersRole != "" {
			parsed, ok := constants.ParseRole(usersRole)
			if !ok {
				return apperrors.Validation(fmt.Sprintf("unknown role %q", usersRole))
			}
			role = parsed
		}

		users, err := s.client.FetchUsers(cmd.Context(), s.credential(), role)
		if err != nil {
			return err
		}

		for _, u := range users {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", u.ID, u.Username, u.Role)
		}
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print KPI figures computed by the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireLogin(cmd.Context())
		if err != nil {
			return err
		}

		summary, err := s.client.Summary(cmd.Context(), s.credential(), constants.TaskScope(dashboardScope))
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), render.Summary(summary))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{taskCreateCmd, taskEditCmd} {
		c.Flags().StringVar(&taskTitle, "title", "", "task title")
		c.Flags().StringVar(&taskDescription, "description", "", "task description")
		c.Flags().StringVar(&taskLeader, "leader", "", "assigned leader (username or id)")
		c.Flags().StringVar(&taskDue, "due", "", "deadline, YYYY-MM-DD or RFC 3339")
		_ = c.MarkFlagRequired("title")
		_ = c.MarkFlagRequired("leader")
		_ = c.MarkFlagRequired("due")
	}
	taskCreateCmd.Flags().BoolVar(&taskStartNow, "start", false, "start work immediately instead of submitting for review")

	taskProgressCmd.Flags().StringVar(&taskNote, "note", "", "note recorded in the history")
	taskReviseCmd.Flags().StringVar(&taskNote, "note", "", "what needs to change (required)")
	_ = taskReviseCmd.MarkFlagRequired("note")

	usersCmd.Flags().StringVar(&usersRole, "role", "", "only list users with this role")

	taskCmd.AddCommand(
		taskShowCmd,
		taskCreateCmd,
		taskEditCmd,
		taskProgressCmd,
		taskSubmitCmd,
		taskApproveCmd,
		taskReviseCmd,
		taskDeleteCmd,
	)

	// task actions print the refreshed dashboard
	taskCmd.PersistentFlags().StringVar(&dashboardScope, "scope", "", "dashboard view printed after an action")
	taskCmd.PersistentFlags().IntVar(&dashboardHorizon, "horizon", 7, "days ahead that count as an upcoming deadline")
	summaryCmd.Flags().StringVar(&dashboardScope, "scope", "", "all, pending or approved (defaults to your role's view)")

	rootCmd.AddCommand(taskCmd, summaryCmd, usersCmd)
}

func idAction(use, short string, act func(ctx context.Context, d *dashboard.Dashboard, id uint) (*dashboard.View, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runAction(cmd, func(ctx context.Context, d *dashboard.Dashboard) (*dashboard.View, error) {
				return act(ctx, d, id)
			})
		},
	}
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrInvalidTaskID
	}
	return uint(id), nil
}

// taskInput builds the create/edit payload from flags. The leader may be
// given by id or by username.
func taskInput(ctx context.Context, s *session) (client.TaskInput, error) {
	deadline, err := model.ParseDeadline(taskDue)
	if err != nil {
		return client.TaskInput{}, apperrors.Validation("due date must be YYYY-MM-DD or an RFC 3339 timestamp")
	}

	leaderID, err := resolveLeader(ctx, s, taskLeader)
	if err != nil {
		return client.TaskInput{}, err
	}

	return client.TaskInput{
		Title:            taskTitle,
		Description:      taskDescription,
		AssignedLeaderID: leaderID,
		Deadline:         deadline,
		StartNow:         taskStartNow,
	}, nil
}

func resolveLeader(ctx context.Context, s *session, ref string) (uint, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return uint(id), nil
	}

	leaders, err := s.client.FetchUsers(ctx, s.credential(), constants.RoleLeader)
	if err != nil {
		return 0, err
	}
	for _, u := range leaders {
		if u.Username == ref {
			return u.ID, nil
		}
	}
	return 0, apperrors.NotFound(fmt.Sprintf("no leader named %q", ref))
}
