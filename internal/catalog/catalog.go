// Package catalog defines the catalog contract the command layer hands
// its work to, plus two reference implementations: an in-process memory
// catalog and a database/sql-backed catalog. The command layer itself
// never calls a catalog; it only produces identifiers, schemas, and
// ordered change lists for one.
package catalog

import (
	"context"

	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/datatype"
	"github.com/calyxdb/calyx/internal/plan"
)

// TableInfo is the catalog's view of one table.
type TableInfo struct {
	Ident        plan.Identifier
	Schema       datatype.StructType
	Partitioning []plan.Transform
	Properties   map[string]string
}

// Catalog resolves identifiers to tables and applies the primitive
// changes the command layer produces. A change list is applied in order,
// atomically: either every change lands or none do.
type Catalog interface {
	// LoadTable returns the table for ident, or ErrTableNotFound.
	LoadTable(ctx context.Context, ident plan.Identifier) (*TableInfo, error)

	// TableExists reports whether ident resolves to a table.
	TableExists(ctx context.Context, ident plan.Identifier) (bool, error)

	// CreateTable creates a table. With ifNotExists, an existing table is
	// left untouched; otherwise ErrTableExists.
	CreateTable(ctx context.Context, info TableInfo, ifNotExists bool) error

	// DropTable removes a table. With ifExists, a missing table is not an
	// error; otherwise ErrTableNotFound.
	DropTable(ctx context.Context, ident plan.Identifier, ifExists bool) error

	// RenameTable renames a table within its namespace.
	RenameTable(ctx context.Context, ident plan.Identifier, newName string) error

	// ApplyChanges applies an ordered change list to a table, atomically
	// or not at all.
	ApplyChanges(ctx context.Context, ident plan.Identifier, changes []change.TableChange) error

	// ListTables returns the table identifiers in a namespace.
	ListTables(ctx context.Context, namespace plan.Identifier) ([]plan.Identifier, error)

	// CreateNamespace creates a namespace with the given properties.
	CreateNamespace(ctx context.Context, namespace plan.Identifier, properties map[string]string, ifNotExists bool) error

	// DropNamespace removes a namespace. Without cascade, a non-empty
	// namespace yields ErrNamespaceNotEmpty.
	DropNamespace(ctx context.Context, namespace plan.Identifier, ifExists, cascade bool) error

	// LoadNamespace returns a namespace's properties, or ErrNamespaceNotFound.
	LoadNamespace(ctx context.Context, namespace plan.Identifier) (map[string]string, error)

	// SetNamespaceProperties sets properties on a namespace.
	SetNamespaceProperties(ctx context.Context, namespace plan.Identifier, properties map[string]string) error

	// ListNamespaces returns the namespaces under parent (nil = top level).
	ListNamespaces(ctx context.Context, parent plan.Identifier) ([]plan.Identifier, error)
}
