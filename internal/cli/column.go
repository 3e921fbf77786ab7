package cli

import (
	"github.com/spf13/cobra"

	"github.com/nxy7/viban/internal/models"
	"github.com/nxy7/viban/internal/output"
)

func newColumnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Manage board columns",
	}
	cmd.AddCommand(newColumnCreateCmd(), newColumnListCmd(), newColumnSettingsCmd())
	return cmd
}

func newColumnCreateCmd() *cobra.Command {
	var position int
	var maxConcurrent int
	var unlimited bool

	c := &cobra.Command{
		Use:   "create <board-id> <name>",
		Short: "Create a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			settings := models.ColumnSettings{HooksEnabled: true}
			if !unlimited {
				settings.MaxConcurrentTasks = &maxConcurrent
			}

			col, err := l.CreateColumn(args[0], args[1], position, settings)
			if err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(col)
		},
	}
	c.Flags().IntVar(&position, "position", 0, "Column position, left to right")
	c.Flags().IntVar(&maxConcurrent, "max-concurrent", 1, "Max tasks running in this column at once")
	c.Flags().BoolVar(&unlimited, "unlimited", false, "No concurrency cap for this column")
	return c
}

func newColumnListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <board-id>",
		Short: "List a board's columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			cols, err := l.ListColumnsForBoard(args[0])
			if err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(cols)
		},
	}
}

func newColumnSettingsCmd() *cobra.Command {
	var hooksEnabled bool
	var maxConcurrent int
	var unlimited bool

	c := &cobra.Command{
		Use:   "settings <column-id>",
		Short: "Update a column's hook and concurrency settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			settings := models.ColumnSettings{HooksEnabled: hooksEnabled}
			if !unlimited {
				settings.MaxConcurrentTasks = &maxConcurrent
			}
			if err := l.UpdateColumnSettings(args[0], settings); err != nil {
				return reportAndWrap(err)
			}
			col, err := l.GetColumn(args[0])
			if err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(col)
		},
	}
	c.Flags().BoolVar(&hooksEnabled, "hooks-enabled", true, "Whether hooks run for tasks entering this column")
	c.Flags().IntVar(&maxConcurrent, "max-concurrent", 1, "Max tasks running in this column at once")
	c.Flags().BoolVar(&unlimited, "unlimited", false, "No concurrency cap for this column")
	return c
}
