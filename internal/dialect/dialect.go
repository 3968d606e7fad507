// Package dialect renders primitive table changes into database-specific
// SQL. Each dialect implements identifier quoting, type mapping from the
// Calyx type system, and DDL statement generation for the change kinds it
// can express; changes a dialect cannot express yield coded errors rather
// than silently degraded SQL.
package dialect

import (
	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/datatype"
)

// Dialect defines the interface for database-specific SQL generation.
// Implementations exist for PostgreSQL and SQLite.
type Dialect interface {
	// Name returns the dialect name (postgres, sqlite).
	Name() string

	// QuoteIdent quotes an identifier for this dialect.
	QuoteIdent(name string) string

	// TypeSQL maps a Calyx data type to this dialect's SQL type.
	TypeSQL(t datatype.DataType) (string, error)

	// SupportsTransactionalDDL reports whether DDL can run inside a
	// transaction and roll back cleanly.
	SupportsTransactionalDDL() bool

	// CreateTableSQL renders a CREATE TABLE for the given schema.
	CreateTableSQL(table string, schema datatype.StructType, ifNotExists bool) (string, error)

	// DropTableSQL renders a DROP TABLE.
	DropTableSQL(table string, ifExists bool) string

	// RenameTableSQL renders a table rename.
	RenameTableSQL(table, newName string) string

	// ChangeSQL renders one column-level change as an ordered list of
	// statements. Property changes are not renderable; they live in the
	// catalog's metadata store.
	ChangeSQL(table string, c change.TableChange) ([]string, error)
}

// Get returns the dialect registered under name.
func Get(name string) (Dialect, error) {
	switch name {
	case "postgres", "postgresql":
		return Postgres(), nil
	case "sqlite", "sqlite3":
		return SQLite(), nil
	default:
		return nil, cerr.New(cerr.ErrUnsupportedDialect, "unknown dialect").
			With("dialect", name)
	}
}

// BuildChangesSQL renders an ordered change list, concatenating the
// statements of each change in order. The first unsupported change aborts
// the whole list so a partial script is never produced.
func BuildChangesSQL(d Dialect, table string, changes []change.TableChange) ([]string, error) {
	var statements []string
	for _, c := range changes {
		stmts, err := d.ChangeSQL(table, c)
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmts...)
	}
	return statements, nil
}
