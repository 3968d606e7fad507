package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calyxdb/calyx/internal/catalog"
	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/cli"
	"github.com/calyxdb/calyx/internal/command"
	"github.com/calyxdb/calyx/internal/dialect"
	"github.com/calyxdb/calyx/internal/plan"
	"github.com/calyxdb/calyx/internal/planfile"
)

// sqlCmd renders the plan file as SQL without touching a database.
func sqlCmd() *cobra.Command {
	var dialectName string

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Render the plan as SQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dialectName == "" {
				dialectName = cfg.Dialect
			}
			if dialectName == "" {
				dialectName = "postgres"
			}
			d, err := dialect.Get(dialectName)
			if err != nil {
				fmt.Fprint(os.Stderr, cli.FormatError(err))
				os.Exit(1)
			}

			commands, err := planfile.Load(cfg.PlanFile)
			if err != nil {
				fmt.Fprint(os.Stderr, cli.FormatError(err))
				os.Exit(1)
			}

			for _, c := range commands {
				statements, skip, err := renderSQL(d, c)
				if err != nil {
					fmt.Fprint(os.Stderr, cli.FormatError(err))
					os.Exit(1)
				}
				if skip != "" {
					fmt.Printf("-- skipped: %s\n\n", skip)
					continue
				}
				fmt.Printf("-- %s\n", describeCommand(c))
				for _, stmt := range statements {
					fmt.Printf("%s;\n", stmt)
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dialectName, "dialect", "", "Target dialect (postgres, sqlite)")

	return cmd
}

// renderSQL renders one command. Commands with no SQL shape at this
// layer (queries, row mutations, namespace admin) return a skip reason.
func renderSQL(d dialect.Dialect, c plan.LogicalPlan) (statements []string, skip string, err error) {
	switch c := c.(type) {
	case command.CreateTable:
		stmt, err := d.CreateTableSQL(catalog.PhysicalName(c.Ident), c.Schema, c.IfNotExists)
		if err != nil {
			return nil, "", err
		}
		return []string{stmt}, "", nil

	case command.ReplaceTable:
		name := catalog.PhysicalName(c.Ident)
		create, err := d.CreateTableSQL(name, c.Schema, false)
		if err != nil {
			return nil, "", err
		}
		return []string{d.DropTableSQL(name, true), create}, "", nil

	case command.DropTable:
		return []string{d.DropTableSQL(catalog.PhysicalName(c.Ident), c.IfExists)}, "", nil

	case command.RenameTable:
		oldName := catalog.PhysicalName(c.Ident)
		newIdent := append(append(plan.Identifier{}, c.Ident.Namespace()...), c.NewName)
		return []string{d.RenameTableSQL(oldName, catalog.PhysicalName(newIdent))}, "", nil

	case command.AlterCommand:
		rel, ok := c.AlterTarget().(plan.UnresolvedRelation)
		if !ok {
			return nil, describeCommand(c) + " (no identifier)", nil
		}
		// Property changes live in the catalog metadata store, not DDL.
		var renderable []change.TableChange
		for _, ch := range c.Changes() {
			switch ch.(type) {
			case change.SetProperty, change.RemoveProperty:
			default:
				renderable = append(renderable, ch)
			}
		}
		if len(renderable) == 0 {
			return nil, describeCommand(c) + " (metadata only)", nil
		}
		statements, err := dialect.BuildChangesSQL(d, catalog.PhysicalName(rel.Ident), renderable)
		if err != nil {
			return nil, "", err
		}
		return statements, "", nil

	default:
		return nil, describeCommand(c), nil
	}
}
