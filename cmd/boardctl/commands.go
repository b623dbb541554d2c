package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"taskboard/domain/dto"
	"taskboard/pkg/boardclient"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printTask(t dto.TaskResponse) {
	parent := "-"
	if t.ParentTaskID != nil {
		parent = t.ParentTaskID.String()[:8]
	}
	fmt.Printf("%s  %-12s %-7s %s  parent=%s  %s\n",
		t.ID, t.Status, t.Priority, t.Deadline.Format("2006-01-02"), parent, t.Title)
}

func printBoard(m *boardclient.Mirror) {
	tasks := m.Tasks()
	fmt.Printf("── board: %d tasks ──\n", len(tasks))
	for _, t := range tasks {
		printTask(t)
	}
}

// watchCmd keeps a mirror in sync and prints every change
func watchCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Mirror the board and print live events",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			var client *boardclient.Client
			client, err := newClient(func(ev *dto.TaskEvent) {
				fmt.Printf("%s  %-18s task=%s actor=%s", ev.OccurredAt.Format(time.TimeOnly), ev.Type, ev.TaskID, ev.Actor.ID)
				if ev.Type == dto.EventStatusChanged {
					fmt.Printf("  %s -> %s", ev.OldStatus, ev.NewStatus)
				}
				fmt.Println()
				if !quiet {
					printBoard(client.Mirror())
				}
			}, nil)
			if err != nil {
				return err
			}
			defer client.Close()

			client.OnResync = func(n int, err error) {
				if err != nil {
					fmt.Fprintf(os.Stderr, "resync failed: %v\n", err)
					return
				}
				fmt.Printf("resynced %d tasks\n", n)
				if !quiet {
					printBoard(client.Mirror())
				}
			}

			if err := client.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print events only, not the board")
	return cmd
}

// moveCmd sends one or more guarded status changes for a task.
// Several statuses collapse into the last one through the debounce.
func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <status> [status...]",
		Short: "Change task status through the debounce guard",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}

			var sendErr error
			client, err := newClient(nil, func(_ uuid.UUID, err error) {
				sendErr = err
			})
			if err != nil {
				return err
			}
			defer client.Close()

			for _, status := range args[1:] {
				if err := client.MoveTask(taskID, status); err != nil {
					if boardclient.IsDropped(err) {
						fmt.Fprintf(os.Stderr, "dropped %s: request in flight\n", status)
						continue
					}
					return err
				}
			}
			client.Flush()

			if sendErr != nil {
				return fmt.Errorf("status change failed: %w", sendErr)
			}
			if t, ok := client.Mirror().Get(taskID); ok {
				printTask(t)
			}
			return nil
		},
	}
}

// parseSubtask reads "title@deadline", deadline as YYYY-MM-DD or RFC3339
func parseSubtask(raw string) (dto.SubtaskSpec, error) {
	i := strings.LastIndex(raw, "@")
	if i <= 0 || i == len(raw)-1 {
		return dto.SubtaskSpec{}, fmt.Errorf("subtask %q: want title@deadline", raw)
	}
	title, when := strings.TrimSpace(raw[:i]), strings.TrimSpace(raw[i+1:])

	deadline, err := time.Parse(time.RFC3339, when)
	if err != nil {
		deadline, err = time.Parse(time.DateOnly, when)
	}
	if err != nil {
		return dto.SubtaskSpec{}, fmt.Errorf("subtask %q: bad deadline %q", raw, when)
	}
	return dto.SubtaskSpec{Title: title, Deadline: &deadline}, nil
}

func splitCmd() *cobra.Command {
	var (
		subtasks []string
		priority string
	)

	cmd := &cobra.Command{
		Use:   "split <parent-id> --sub 'title@2026-01-31' [--sub ...]",
		Short: "Split a task into subtasks in one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := parseID(args[0], "parent")
			if err != nil {
				return err
			}
			if len(subtasks) == 0 {
				return fmt.Errorf("at least one --sub is required")
			}

			specs := make([]dto.SubtaskSpec, 0, len(subtasks))
			for _, raw := range subtasks {
				spec, err := parseSubtask(raw)
				if err != nil {
					return err
				}
				spec.Priority = priority
				specs = append(specs, spec)
			}

			client, err := newClient(nil, nil)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := signalContext()
			defer cancel()

			ids, err := client.Split(ctx, parentID, specs)
			if err != nil {
				return err
			}
			for i, id := range ids {
				fmt.Printf("%s  %s\n", id, specs[i].Title)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&subtasks, "sub", "s", nil, "Subtask as title@deadline (repeatable)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority for every subtask (low, medium, high)")
	return cmd
}

// logCmd records effort, then optionally moves the task
func logCmd() *cobra.Command {
	var (
		hours   float64
		comment string
		status  string
	)

	cmd := &cobra.Command{
		Use:   "log <task-id> --hours N [--status S]",
		Short: "Log effort on a task, then optionally change its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseID(args[0], "task")
			if err != nil {
				return err
			}

			client, err := newClient(nil, nil)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := signalContext()
			defer cancel()

			res, err := client.LogEffort(ctx, taskID, &dto.LogEffortRequest{
				Hours:   hours,
				Comment: comment,
				Status:  status,
			})
			if err != nil {
				return err
			}
			fmt.Printf("logged %.2fh on %s\n", res.EffortLog.HoursSpent, taskID)
			if res.Task != nil {
				printTask(*res.Task)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&hours, "hours", 0, "Hours spent (0 < h <= 100)")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Comment")
	cmd.Flags().StringVar(&status, "status", "", "Status to move to after logging")
	_ = cmd.MarkFlagRequired("hours")
	return cmd
}
