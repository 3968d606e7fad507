package dialect

import (
	"fmt"
	"strings"

	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/datatype"
)

// sqlite implements the Dialect interface for SQLite.
//
// SQLite's ALTER TABLE is deliberately narrow: columns can be added,
// renamed, and dropped, but not retyped, repositioned, or have their
// nullability changed in place. Those changes yield ErrUnsupportedChange;
// callers that need them must rebuild the table.
type sqlite struct{}

// SQLite returns the SQLite dialect implementation.
func SQLite() Dialect {
	return &sqlite{}
}

func (d *sqlite) Name() string {
	return "sqlite"
}

func (d *sqlite) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *sqlite) SupportsTransactionalDDL() bool {
	return true
}

// -----------------------------------------------------------------------------
// Type mappings
// -----------------------------------------------------------------------------

func (d *sqlite) TypeSQL(t datatype.DataType) (string, error) {
	switch t := t.(type) {
	case datatype.PrimitiveType:
		switch t.Kind() {
		case datatype.KindBoolean, datatype.KindInt8, datatype.KindInt16,
			datatype.KindInt32, datatype.KindInt64:
			return "INTEGER", nil
		case datatype.KindFloat32, datatype.KindFloat64:
			return "REAL", nil
		case datatype.KindString, datatype.KindDate, datatype.KindTimestamp:
			// Dates and timestamps are stored as ISO-8601 text.
			return "TEXT", nil
		case datatype.KindBinary:
			return "BLOB", nil
		}
	case datatype.DecimalType:
		// Stored as text to keep precision.
		return "TEXT", nil
	case datatype.ArrayType, datatype.MapType, datatype.StructType:
		// Containers are stored as JSON text.
		return "TEXT", nil
	}
	return "", fmt.Errorf("unmapped type %s", t)
}

// -----------------------------------------------------------------------------
// DDL generation
// -----------------------------------------------------------------------------

func (d *sqlite) CreateTableSQL(table string, schema datatype.StructType, ifNotExists bool) (string, error) {
	return buildCreateTableSQL(table, schema, ifNotExists, d.QuoteIdent, d.TypeSQL)
}

func (d *sqlite) DropTableSQL(table string, ifExists bool) string {
	return buildDropTableSQL(table, ifExists, d.QuoteIdent)
}

func (d *sqlite) RenameTableSQL(table, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.QuoteIdent(table), d.QuoteIdent(newName))
}

func (d *sqlite) ChangeSQL(table string, c change.TableChange) ([]string, error) {
	tableName := d.QuoteIdent(table)

	switch c := c.(type) {
	case change.AddColumn:
		col, err := topLevelColumn(c.Path, d.Name())
		if err != nil {
			return nil, err
		}
		if c.Position != nil {
			return nil, unsupported(c, d.Name(), "sqlite cannot place a new column at a position")
		}
		// SQLite rejects adding a NOT NULL column without a default.
		if !c.Nullable {
			return nil, unsupported(c, d.Name(), "sqlite cannot add a NOT NULL column without a default")
		}
		def, err := buildColumnSQL(datatype.StructField{Name: col, Type: c.Type, Nullable: true}, d.QuoteIdent, d.TypeSQL)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", tableName, def)}, nil

	case change.UpdateColumnType:
		return nil, unsupported(c, d.Name(), "sqlite cannot change a column type in place")

	case change.UpdateColumnNullability:
		return nil, unsupported(c, d.Name(), "sqlite cannot change column nullability in place")

	case change.UpdateColumnComment:
		return nil, unsupported(c, d.Name(), "sqlite has no column comments")

	case change.UpdateColumnPosition:
		return nil, unsupported(c, d.Name(), "sqlite cannot reorder columns")

	case change.RenameColumn:
		col, err := topLevelColumn(c.Path, d.Name())
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
			tableName, d.QuoteIdent(col), d.QuoteIdent(c.NewName))}, nil

	case change.DeleteColumn:
		col, err := topLevelColumn(c.Path, d.Name())
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s",
			tableName, d.QuoteIdent(col))}, nil

	case change.SetProperty, change.RemoveProperty:
		return nil, unsupported(c, d.Name(), "table properties live in the catalog metadata store")

	default:
		return nil, unsupported(c, d.Name(), "unhandled change kind")
	}
}
