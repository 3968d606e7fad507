package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/cli"
	"github.com/calyxdb/calyx/internal/command"
	"github.com/calyxdb/calyx/internal/plan"
	"github.com/calyxdb/calyx/internal/planfile"
)

// checkCmd validates the plan file.
func checkCmd() *cobra.Command {
	var jsonOutput bool
	var watch bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the plan file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if !watch {
				if ok := runCheck(cfg.PlanFile, jsonOutput); !ok {
					os.Exit(1)
				}
				return nil
			}
			return watchPlanFile(cfg.PlanFile, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-validate whenever the plan file changes")

	return cmd
}

// runCheck validates one plan file and prints the outcome. Returns true
// when the plan is valid.
func runCheck(path string, jsonOutput bool) bool {
	commands, err := planfile.Load(path)
	if err != nil {
		if jsonOutput {
			outputJSON(map[string]any{"valid": false, "error": err.Error()})
		} else {
			fmt.Fprint(os.Stderr, cli.FormatError(err))
		}
		return false
	}

	var problems []string
	for i, cmd := range commands {
		if alter, ok := cmd.(command.AlterCommand); ok {
			if err := change.ValidateAll(alter.Changes()); err != nil {
				problems = append(problems, fmt.Sprintf("command %d: %v", i, err))
			}
		}
	}

	if jsonOutput {
		outputJSON(map[string]any{
			"valid":    len(problems) == 0,
			"commands": len(commands),
			"problems": problems,
		})
		return len(problems) == 0
	}

	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprint(os.Stderr, cli.FormatError(fmt.Errorf("%s", p)))
		}
		return false
	}

	list := cli.NewList()
	for _, cmd := range commands {
		list.AddSuccess(describeCommand(cmd))
	}
	fmt.Print(list.String())
	fmt.Print(cli.FormatSuccess(fmt.Sprintf("plan is valid (%s)",
		cli.FormatCount(len(commands), "command", "commands"))))
	return true
}

// watchPlanFile re-runs validation whenever the plan file is written.
// Watches the directory rather than the file so editors that replace the
// file on save keep being tracked.
func watchPlanFile(path string, jsonOutput bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	runCheck(path, jsonOutput)
	fmt.Fprintln(os.Stderr, cli.FormatNote("watching "+path+" (ctrl-c to stop)"))

	target := filepath.Clean(path)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fmt.Println()
			runCheck(path, jsonOutput)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprint(os.Stderr, cli.FormatError(err))
		}
	}
}

// outputJSON writes a JSON object to stdout.
func outputJSON(data map[string]any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

// describeCommand renders a one-line summary of a command.
func describeCommand(cmd plan.LogicalPlan) string {
	switch c := cmd.(type) {
	case command.CreateTable:
		return "create-table " + c.Ident.String()
	case command.CreateTableAsSelect:
		return "create-table " + c.Ident.String() + " (as select)"
	case command.ReplaceTable:
		return "replace-table " + c.Ident.String()
	case command.ReplaceTableAsSelect:
		return "replace-table " + c.Ident.String() + " (as select)"
	case command.DropTable:
		return "drop-table " + c.Ident.String()
	case command.RenameTable:
		return "rename-table " + c.Ident.String() + " -> " + c.NewName
	case command.AlterCommand:
		target := "?"
		if rel, ok := c.AlterTarget().(plan.UnresolvedRelation); ok {
			target = rel.Ident.String()
		}
		return fmt.Sprintf("alter-table %s (%s)", target,
			cli.FormatCount(len(c.Changes()), "change", "changes"))
	case command.DeleteFromTable:
		return "delete-from " + relationName(c.Table)
	case command.UpdateTable:
		return "update " + relationName(c.Table)
	case command.CreateNamespace:
		return "create-namespace " + c.Namespace.String()
	case command.DropNamespace:
		return "drop-namespace " + c.Namespace.String()
	case command.AlterNamespaceSetProperties:
		return "set-namespace-properties " + c.Namespace.String()
	case command.CommentOnTable:
		return "comment-on-table " + c.Ident.String()
	case command.CommentOnNamespace:
		return "comment-on-namespace " + c.Namespace.String()
	default:
		return "command"
	}
}

func relationName(rel plan.LogicalPlan) string {
	if named, ok := rel.(plan.NamedRelation); ok {
		return named.Name()
	}
	return "?"
}
