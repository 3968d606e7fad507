package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/cli"
	"github.com/calyxdb/calyx/internal/command"
	"github.com/calyxdb/calyx/internal/plan"
	"github.com/calyxdb/calyx/internal/planfile"
)

// changesCmd shows the ordered primitive changes each schema edit in the
// plan file implies.
func changesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Show the primitive table changes the plan implies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			commands, err := planfile.Load(cfg.PlanFile)
			if err != nil {
				fmt.Fprint(os.Stderr, cli.FormatError(err))
				os.Exit(1)
			}

			count := 0
			for _, c := range commands {
				alter, ok := c.(command.AlterCommand)
				if !ok {
					continue
				}
				count++

				target := "?"
				if rel, ok := alter.AlterTarget().(plan.UnresolvedRelation); ok {
					target = rel.Ident.String()
				}

				table := cli.NewTable("#", "change", "detail")
				for i, ch := range alter.Changes() {
					table.AddRow(fmt.Sprintf("%d", i+1), ch.Kind().String(), describeChange(ch))
				}
				fmt.Println(cli.Section(target, table.String()))
			}

			if count == 0 {
				fmt.Print(cli.FormatNote("plan contains no schema edits"))
			}
			return nil
		},
	}
	return cmd
}

// describeChange renders the payload of one primitive change.
func describeChange(c change.TableChange) string {
	switch c := c.(type) {
	case change.AddColumn:
		detail := c.Path.String() + " " + c.Type.String()
		if !c.Nullable {
			detail += " not null"
		}
		if c.Position != nil {
			detail += " (" + c.Position.String() + ")"
		}
		return detail
	case change.UpdateColumnType:
		return c.Path.String() + " -> " + c.Type.String()
	case change.UpdateColumnNullability:
		if c.Nullable {
			return c.Path.String() + " -> nullable"
		}
		return c.Path.String() + " -> not null"
	case change.UpdateColumnComment:
		return c.Path.String() + " -> " + fmt.Sprintf("%q", c.Comment)
	case change.UpdateColumnPosition:
		return c.Path.String() + " -> " + c.Position.String()
	case change.RenameColumn:
		return c.Path.String() + " -> " + c.NewName
	case change.DeleteColumn:
		return c.Path.String()
	case change.SetProperty:
		return c.Key + " = " + fmt.Sprintf("%q", c.Value)
	case change.RemoveProperty:
		return c.Key
	default:
		return ""
	}
}
