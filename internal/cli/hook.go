package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nxy7/viban/internal/models"
	"github.com/nxy7/viban/internal/output"
)

func newHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Manage hook definitions and column attachments",
	}
	cmd.AddCommand(newHookCreateCmd(), newHookListCmd(), newHookAttachCmd(), newHookDetachCmd())
	return cmd
}

func newHookCreateCmd() *cobra.Command {
	var kind, command, agentPrompt, agentExecutor string
	var executeOnce, transparent bool

	c := &cobra.Command{
		Use:   "create <board-id> <name>",
		Short: "Create a reusable hook definition",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			k := models.HookKind(kind)
			switch k {
			case models.HookKindScript, models.HookKindAgent, models.HookKindSystem:
			default:
				return reportAndWrap(fmt.Errorf("unknown hook kind %q", kind))
			}

			h, err := l.CreateHook(models.Hook{
				BoardID:            args[0],
				Name:               args[1],
				Kind:               k,
				Command:            command,
				AgentPrompt:        agentPrompt,
				AgentExecutor:      agentExecutor,
				DefaultExecuteOnce: executeOnce,
				DefaultTransparent: transparent,
			})
			if err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(h)
		},
	}
	c.Flags().StringVar(&kind, "kind", string(models.HookKindScript), "Hook kind: script, agent, or system")
	c.Flags().StringVar(&command, "command", "", "Shell command for script hooks")
	c.Flags().StringVar(&agentPrompt, "agent-prompt", "", "Prompt template for agent hooks")
	c.Flags().StringVar(&agentExecutor, "agent-executor", "", "Executor binary for agent hooks")
	c.Flags().BoolVar(&executeOnce, "execute-once", false, "Default execute_once for attachments of this hook")
	c.Flags().BoolVar(&transparent, "transparent", false, "Default transparent for attachments of this hook")
	return c
}

func newHookListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <board-id>",
		Short: "List a board's hook definitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			hooks, err := l.ListHooksForBoard(args[0])
			if err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(hooks)
		},
	}
}

func newHookAttachCmd() *cobra.Command {
	var position int
	var executeOnce, transparent, removable bool

	c := &cobra.Command{
		Use:   "attach <column-id> <hook-id>",
		Short: "Attach a hook to a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			ch, err := l.AttachHook(models.ColumnHook{
				ColumnID:    args[0],
				HookID:      args[1],
				Position:    position,
				ExecuteOnce: executeOnce,
				Transparent: transparent,
				Removable:   removable,
			})
			if err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(ch)
		},
	}
	c.Flags().IntVar(&position, "position", 0, "Run order among the column's hooks")
	c.Flags().BoolVar(&executeOnce, "execute-once", false, "Run at most once per task for this attachment")
	c.Flags().BoolVar(&transparent, "transparent", false, "Failures don't move the task to review")
	c.Flags().BoolVar(&removable, "removable", true, "Whether this attachment can be detached later")
	return c
}

func newHookDetachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detach <column-hook-id>",
		Short: "Detach a hook from a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, db, err := openStore()
			if err != nil {
				return reportAndWrap(err)
			}
			defer db.Close()

			if err := l.DetachHook(args[0]); err != nil {
				return reportAndWrap(err)
			}
			return output.PrintSuccess(struct {
				Detached string `json:"detached"`
			}{Detached: args[0]})
		},
	}
}
