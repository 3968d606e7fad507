package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calyxdb/calyx/internal/catalog"
	"github.com/calyxdb/calyx/internal/cli"
	"github.com/calyxdb/calyx/internal/exec"
	"github.com/calyxdb/calyx/internal/planfile"
)

// applyCmd applies the plan file to the configured database.
func applyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the plan to the database",
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

			db, d, err := openDatabase(cfg)
			if err != nil {
				fmt.Fprint(os.Stderr, cli.FormatError(err))
				os.Exit(1)
			}
			defer db.Close()

			ctx := context.Background()
			cat := catalog.NewSQL(db, d)
			if err := cat.EnsureMetadata(ctx); err != nil {
				fmt.Fprint(os.Stderr, cli.FormatError(err))
				os.Exit(1)
			}

			results, err := exec.New(cat).ExecuteAll(ctx, commands)

			list := cli.NewList()
			for _, res := range results {
				line := res.Command + " " + res.Target
				if res.Changes > 0 {
					line += fmt.Sprintf(" (%s)", cli.FormatCount(res.Changes, "change", "changes"))
				}
				list.AddSuccess(line)
			}
			fmt.Print(list.String())

			if err != nil {
				fmt.Fprint(os.Stderr, cli.FormatError(err))
				os.Exit(1)
			}

			fmt.Print(cli.FormatSuccess(fmt.Sprintf("applied %s",
				cli.FormatCount(len(results), "command", "commands"))))
			return nil
		},
	}
	return cmd
}
