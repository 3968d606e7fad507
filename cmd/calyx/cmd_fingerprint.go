package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/calyxdb/calyx/internal/catalog"
	"github.com/calyxdb/calyx/internal/cli"
	"github.com/calyxdb/calyx/internal/drift"
)

// fingerprintCmd computes the merkle fingerprint of the catalog state.
func fingerprintCmd() *cobra.Command {
	var jsonOutput bool
	var verify string

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Merkle fingerprint of the catalog state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
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

			idents, err := cat.ListTables(ctx, nil)
			if err != nil {
				fmt.Fprint(os.Stderr, cli.FormatError(err))
				os.Exit(1)
			}

			tables := make([]*catalog.TableInfo, 0, len(idents))
			for _, ident := range idents {
				info, err := cat.LoadTable(ctx, ident)
				if err != nil {
					fmt.Fprint(os.Stderr, cli.FormatError(err))
					os.Exit(1)
				}
				tables = append(tables, info)
			}

			hash, err := drift.ComputeCatalogHash(tables)
			if err != nil {
				fmt.Fprint(os.Stderr, cli.FormatError(err))
				os.Exit(1)
			}

			if verify != "" && verify != hash.Root {
				if jsonOutput {
					outputJSON(map[string]any{
						"root":     hash.Root,
						"expected": verify,
						"match":    false,
					})
				} else {
					fmt.Fprint(os.Stderr, cli.FormatWarning("catalog drifted from the expected fingerprint"))
					fmt.Fprintf(os.Stderr, "  expected: %s\n", cli.Dim(truncateHash(verify)))
					fmt.Fprintf(os.Stderr, "  actual:   %s\n", cli.Dim(truncateHash(hash.Root)))
				}
				os.Exit(1)
			}

			if jsonOutput {
				tableHashes := make(map[string]string, len(hash.Tables))
				for name, th := range hash.Tables {
					tableHashes[name] = th.Hash
				}
				out := map[string]any{
					"root":   hash.Root,
					"tables": tableHashes,
				}
				if verify != "" {
					out["match"] = true
				}
				outputJSON(out)
				return nil
			}

			fmt.Printf("%s %s\n", cli.Header("root"), hash.Root)

			names := make([]string, 0, len(hash.Tables))
			for name := range hash.Tables {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %s  %s\n", cli.Dim(truncateHash(hash.Tables[name].Hash)), name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&verify, "verify", "", "Fail unless the root hash matches this value")

	return cmd
}

// truncateHash returns the first 12 characters of a hash.
func truncateHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
