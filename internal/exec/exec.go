// Package exec executes command values against a catalog. It is the
// bridge between the declarative command layer and catalog mutation:
// each supported command maps to one catalog call, and the result
// describes what happened for CLI display.
package exec

import (
	"context"
	"log/slog"

	"github.com/calyxdb/calyx/internal/catalog"
	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/command"
	"github.com/calyxdb/calyx/internal/plan"
)

// Result describes one executed command.
type Result struct {
	Command string // short command name (create-table, drop-table...)
	Target  string // table or namespace identifier
	Changes int    // number of primitive changes applied, for alters
}

// Executor applies commands to a catalog.
type Executor struct {
	catalog catalog.Catalog
}

// New creates an executor over cat. Returns nil if cat is nil.
func New(cat catalog.Catalog) *Executor {
	if cat == nil {
		return nil
	}
	return &Executor{catalog: cat}
}

// ExecuteAll runs the commands in order and stops at the first failure,
// returning the results of the commands that ran.
func (e *Executor) ExecuteAll(ctx context.Context, commands []plan.LogicalPlan) ([]Result, error) {
	results := make([]Result, 0, len(commands))
	for i, cmd := range commands {
		res, err := e.Execute(ctx, cmd)
		if err != nil {
			if ce, ok := err.(*cerr.Error); ok {
				return results, ce.With("command", i)
			}
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Execute runs one command against the catalog.
func (e *Executor) Execute(ctx context.Context, cmd plan.LogicalPlan) (Result, error) {
	switch c := cmd.(type) {
	case command.CreateTable:
		info := catalog.TableInfo{
			Ident:        c.Ident,
			Schema:       c.Schema,
			Partitioning: c.PartitionBy,
			Properties:   c.Properties,
		}
		if err := e.catalog.CreateTable(ctx, info, c.IfNotExists); err != nil {
			return Result{}, err
		}
		return Result{Command: "create-table", Target: c.Ident.String()}, nil

	case command.ReplaceTable:
		return e.replaceTable(ctx, catalog.TableInfo{
			Ident:        c.Ident,
			Schema:       c.Schema,
			Partitioning: c.PartitionBy,
			Properties:   c.Properties,
		}, c.OrCreate)

	case command.DropTable:
		if err := e.catalog.DropTable(ctx, c.Ident, c.IfExists); err != nil {
			return Result{}, err
		}
		return Result{Command: "drop-table", Target: c.Ident.String()}, nil

	case command.RenameTable:
		if err := e.catalog.RenameTable(ctx, c.Ident, c.NewName); err != nil {
			return Result{}, err
		}
		return Result{Command: "rename-table", Target: c.Ident.String()}, nil

	case command.AlterCommand:
		return e.alterTable(ctx, c)

	case command.CreateNamespace:
		if err := e.catalog.CreateNamespace(ctx, c.Namespace, c.Properties, c.IfNotExists); err != nil {
			return Result{}, err
		}
		return Result{Command: "create-namespace", Target: c.Namespace.String()}, nil

	case command.DropNamespace:
		if err := e.catalog.DropNamespace(ctx, c.Namespace, c.IfExists, c.Cascade); err != nil {
			return Result{}, err
		}
		return Result{Command: "drop-namespace", Target: c.Namespace.String()}, nil

	case command.AlterNamespaceSetProperties:
		if err := e.catalog.SetNamespaceProperties(ctx, c.Namespace, c.Properties); err != nil {
			return Result{}, err
		}
		return Result{Command: "set-namespace-properties", Target: c.Namespace.String()}, nil

	case command.CommentOnTable:
		return e.commentOnTable(ctx, c)

	case command.CommentOnNamespace:
		return e.commentOnNamespace(ctx, c)

	default:
		return Result{}, cerr.New(cerr.ErrInvalidCommand, "command is not executable against a catalog").
			With("command", commandName(cmd))
	}
}

// replaceTable drops and recreates. Without orCreate a missing table is
// an error, matching replace semantics.
func (e *Executor) replaceTable(ctx context.Context, info catalog.TableInfo, orCreate bool) (Result, error) {
	exists, err := e.catalog.TableExists(ctx, info.Ident)
	if err != nil {
		return Result{}, err
	}
	if !exists && !orCreate {
		return Result{}, cerr.New(cerr.ErrTableNotFound, "cannot replace a table that does not exist").
			With("table", info.Ident.String())
	}
	if exists {
		if err := e.catalog.DropTable(ctx, info.Ident, false); err != nil {
			return Result{}, err
		}
	}
	if err := e.catalog.CreateTable(ctx, info, false); err != nil {
		return Result{}, err
	}
	return Result{Command: "replace-table", Target: info.Ident.String()}, nil
}

func (e *Executor) alterTable(ctx context.Context, cmd command.AlterCommand) (Result, error) {
	ident, err := alterIdent(cmd)
	if err != nil {
		return Result{}, err
	}
	changes := cmd.Changes()
	if err := change.ValidateAll(changes); err != nil {
		return Result{}, err
	}
	if len(changes) == 0 {
		slog.Debug("alter command produced no changes", "table", ident.String())
		return Result{Command: "alter-table", Target: ident.String()}, nil
	}
	if err := e.catalog.ApplyChanges(ctx, ident, changes); err != nil {
		return Result{}, err
	}
	return Result{Command: "alter-table", Target: ident.String(), Changes: len(changes)}, nil
}

func (e *Executor) commentOnTable(ctx context.Context, c command.CommentOnTable) (Result, error) {
	var changes []change.TableChange
	if c.Comment == "" {
		changes = []change.TableChange{change.RemoveProperty{Key: "comment"}}
	} else {
		changes = []change.TableChange{change.SetProperty{Key: "comment", Value: c.Comment}}
	}
	if err := e.catalog.ApplyChanges(ctx, c.Ident, changes); err != nil {
		// Clearing a comment that was never set is a no-op, not an error.
		if c.Comment == "" && cerr.Is(err, cerr.ErrChangeRejected) {
			return Result{Command: "comment-on-table", Target: c.Ident.String()}, nil
		}
		return Result{}, err
	}
	return Result{Command: "comment-on-table", Target: c.Ident.String(), Changes: 1}, nil
}

func (e *Executor) commentOnNamespace(ctx context.Context, c command.CommentOnNamespace) (Result, error) {
	err := e.catalog.SetNamespaceProperties(ctx, c.Namespace, map[string]string{"comment": c.Comment})
	if err != nil {
		return Result{}, err
	}
	return Result{Command: "comment-on-namespace", Target: c.Namespace.String()}, nil
}

// alterIdent extracts the target identifier from an alter command's
// table child, which may be resolved or not.
func alterIdent(cmd command.AlterCommand) (plan.Identifier, error) {
	switch t := cmd.AlterTarget().(type) {
	case plan.Table:
		return t.Ident, nil
	case plan.UnresolvedRelation:
		return t.Ident, nil
	default:
		return nil, cerr.New(cerr.ErrInvalidCommand, "alter target carries no identifier")
	}
}

func commandName(cmd plan.LogicalPlan) string {
	switch cmd.(type) {
	case command.CreateTableAsSelect:
		return "create-table-as-select"
	case command.ReplaceTableAsSelect:
		return "replace-table-as-select"
	case command.AppendData:
		return "append-data"
	case command.OverwriteByExpression:
		return "overwrite-by-expression"
	case command.OverwritePartitionsDynamic:
		return "overwrite-partitions-dynamic"
	case command.DeleteFromTable:
		return "delete-from"
	case command.UpdateTable:
		return "update"
	case command.MergeIntoTable:
		return "merge-into"
	default:
		return "unknown"
	}
}
