// Package main provides the CLI for Calyx, a declarative table command
// engine. Plan files describe tables, schema edits, and row mutations;
// calyx validates them, translates edits into primitive table changes,
// renders dialect SQL, and applies plans to a catalog.
//
// Usage:
//
//	calyx check                  # Validate the plan file
//	calyx check --watch          # Re-validate on every plan file change
//	calyx changes                # Show the primitive changes each edit implies
//	calyx sql --dialect X        # Render the plan as SQL (postgres, sqlite)
//	calyx apply                  # Apply the plan to the database
//	calyx fingerprint            # Merkle fingerprint of the catalog state
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Database drivers
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// version is set via ldflags during build: -ldflags="-X main.version=v1.0.0"
var version = "dev"

// Global flags
var (
	databaseURL string
	configFile  string
	planPath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "calyx",
		Short:   "Declarative table command engine",
		Long:    `Calyx turns declarative plan files into validated commands, primitive table changes, dialect SQL, and catalog mutations.`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&databaseURL, "database-url", "d", "", "Database connection URL")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "calyx.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&planPath, "plan", "p", "", "Path to plan file (default: calyx.plan.yaml)")

	rootCmd.AddCommand(
		checkCmd(),
		changesCmd(),
		sqlCmd(),
		applyCmd(),
		fingerprintCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
