package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nxy7/viban/internal/output"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage and inspect tasks",
	}
	cmd.AddCommand(newTaskCreateCmd(), newTaskShowCmd(), newTaskMoveCmd(), newTaskHistoryCmd(), newTaskQueueCmd())
	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	var description string

	c := &cobra.Command{
		Use:   "create <column-id> <title>",
		Short: "Create a task in a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			t, err := l.CreateTask(args[0], args[1], description)
			if err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(t)
		},
	}
	c.Flags().StringVar(&description, "description", "", "Task description")
	return c
}

func newTaskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			t, err := l.GetTask(args[0])
			if err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(t)
		},
	}
}

func newTaskMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <column-id>",
		Short: "Move a task to a different column",
		Long: "Moves a task by updating its column_id directly. The task-update event " +
			"goes only to this command's own in-process event bus, so a running " +
			"daemon's BoardActor picks the move up on its next periodic reconcile " +
			"pass and hands it to the task's TaskActor, which runs the destination " +
			"column's entry hooks; this command does not run any hooks itself.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			t, err := l.GetTask(args[0])
			if err != nil {
				return reportAndWrap(err)
			}
			t.ColumnID = args[1]
			if err := l.SaveTask(t); err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(t)
		},
	}
}

func newTaskHistoryCmd() *cobra.Command {
	var limit int
	var before string

	c := &cobra.Command{
		Use:   "history <task-id>",
		Short: "Show a task's hook execution history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			var cursor time.Time
			if before != "" {
				cursor, err = time.Parse(time.RFC3339, before)
				if err != nil {
					return reportAndWrap(fmt.Errorf("parse --before: %w", err))
				}
			}

			rows, err := l.HookExecutions().HistoryForTask(args[0], limit, cursor)
			if err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(rows)
		},
	}
	c.Flags().IntVar(&limit, "limit", 0, "Maximum rows to return (0 means no limit)")
	c.Flags().StringVar(&before, "before", "", "Only return rows queued before this RFC3339 timestamp")
	return c
}

func newTaskQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue <task-id>",
		Short: "Show a task's pending/running hook queue snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			entries, err := l.HookExecutions().QueueSnapshot(args[0])
			if err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(entries)
		},
	}
}
