package cli

import (
	"github.com/spf13/cobra"

	"github.com/nxy7/viban/internal/output"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage boards",
	}
	cmd.AddCommand(newBoardCreateCmd(), newBoardListCmd(), newBoardDeleteCmd())
	return cmd
}

func newBoardCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			b, err := l.CreateBoard(args[0])
			if err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(b)
		},
	}
}

func newBoardListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			boards, err := l.ListBoards()
			if err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(boards)
		},
	}
}

func newBoardDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board-id>",
		Short: "Delete a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			if err := l.DeleteBoard(args[0]); err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(struct {
				Deleted string `json:"deleted"`
			}{Deleted: args[0]})
		},
	}
}
