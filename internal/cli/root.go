// Package cli implements vibanctl, the inspection and administration
// surface for the boards, columns, hooks, and tasks that the viband daemon
// drives. Every subcommand opens the database directly and prints a single
// output.Response; it never talks to a running daemon process.
package cli

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nxy7/viban/internal/app"
	"github.com/nxy7/viban/internal/output"
)

// printedError marks an error already reported via output.PrintError, so
// Execute's top-level handler doesn't log it a second time.
type printedError struct{ err error }

func (p printedError) Error() string { return p.err.Error() }
func (p printedError) Unwrap() error { return p.err }

func reportAndWrap(err error) error {
	if err == nil {
		return nil
	}
	if perr := output.PrintError(err); perr != nil {
		return perr
	}
	return printedError{err: err}
}

// Execute runs the vibanctl CLI.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	root := &cobra.Command{
		Use:           "vibanctl",
		Short:         "Inspect and administer viban boards, columns, hooks, and tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				return output.PrintSuccess(struct {
					Version string `json:"version"`
				}{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureConfigDir(); err != nil {
				return err
			}
			if dbPath, err := cmd.Flags().GetString("db-path"); err == nil && dbPath != "" {
				app.SetDBPathOverride(dbPath)
			}
			return nil
		},
	}

	root.PersistentFlags().String("db-path", "", "Override database path")
	root.Flags().BoolP("version", "v", false, "version for vibanctl")

	root.AddCommand(newBoardCmd())
	root.AddCommand(newColumnCmd())
	root.AddCommand(newHookCmd())
	root.AddCommand(newTaskCmd())

	err := root.Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			slog.Default().Error("command failed", "error", err.Error())
		}
	}
	return err
}
