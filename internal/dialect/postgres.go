package dialect

import (
	"fmt"
	"strings"

	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/datatype"
)

// postgres implements the Dialect interface for PostgreSQL.
type postgres struct{}

// Postgres returns the PostgreSQL dialect implementation.
func Postgres() Dialect {
	return &postgres{}
}

func (d *postgres) Name() string {
	return "postgres"
}

func (d *postgres) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *postgres) SupportsTransactionalDDL() bool {
	return true
}

// -----------------------------------------------------------------------------
// Type mappings
// -----------------------------------------------------------------------------

func (d *postgres) TypeSQL(t datatype.DataType) (string, error) {
	switch t := t.(type) {
	case datatype.PrimitiveType:
		switch t.Kind() {
		case datatype.KindBoolean:
			return "BOOLEAN", nil
		case datatype.KindInt8, datatype.KindInt16:
			return "SMALLINT", nil
		case datatype.KindInt32:
			return "INTEGER", nil
		case datatype.KindInt64:
			return "BIGINT", nil
		case datatype.KindFloat32:
			return "REAL", nil
		case datatype.KindFloat64:
			return "DOUBLE PRECISION", nil
		case datatype.KindString:
			return "TEXT", nil
		case datatype.KindBinary:
			return "BYTEA", nil
		case datatype.KindDate:
			return "DATE", nil
		case datatype.KindTimestamp:
			return "TIMESTAMPTZ", nil
		}
	case datatype.DecimalType:
		return fmt.Sprintf("DECIMAL(%d, %d)", t.Precision, t.Scale), nil
	case datatype.ArrayType, datatype.MapType, datatype.StructType:
		// Containers are stored as documents.
		return "JSONB", nil
	}
	return "", fmt.Errorf("unmapped type %s", t)
}

// -----------------------------------------------------------------------------
// DDL generation
// -----------------------------------------------------------------------------

func (d *postgres) CreateTableSQL(table string, schema datatype.StructType, ifNotExists bool) (string, error) {
	return buildCreateTableSQL(table, schema, ifNotExists, d.QuoteIdent, d.TypeSQL)
}

func (d *postgres) DropTableSQL(table string, ifExists bool) string {
	return buildDropTableSQL(table, ifExists, d.QuoteIdent)
}

func (d *postgres) RenameTableSQL(table, newName string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", d.QuoteIdent(table), d.QuoteIdent(newName))
}

func (d *postgres) ChangeSQL(table string, c change.TableChange) ([]string, error) {
	tableName := d.QuoteIdent(table)

	switch c := c.(type) {
	case change.AddColumn:
		col, err := topLevelColumn(c.Path, d.Name())
		if err != nil {
			return nil, err
		}
		if c.Position != nil {
			return nil, unsupported(c, d.Name(), "postgres cannot place a new column at a position")
		}
		def, err := buildColumnSQL(datatype.StructField{Name: col, Type: c.Type, Nullable: c.Nullable}, d.QuoteIdent, d.TypeSQL)
		if err != nil {
			return nil, err
		}
		statements := []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", tableName, def)}
		if c.Comment != "" {
			statements = append(statements, fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s",
				tableName, d.QuoteIdent(col), quoteLiteral(c.Comment)))
		}
		return statements, nil

	case change.UpdateColumnType:
		col, err := topLevelColumn(c.Path, d.Name())
		if err != nil {
			return nil, err
		}
		sqlType, err := d.TypeSQL(c.Type)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s",
			tableName, d.QuoteIdent(col), sqlType)}, nil

	case change.UpdateColumnNullability:
		col, err := topLevelColumn(c.Path, d.Name())
		if err != nil {
			return nil, err
		}
		if c.Nullable {
			return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL",
				tableName, d.QuoteIdent(col))}, nil
		}
		return []string{fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL",
			tableName, d.QuoteIdent(col))}, nil

	case change.UpdateColumnComment:
		col, err := topLevelColumn(c.Path, d.Name())
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s",
			tableName, d.QuoteIdent(col), quoteLiteral(c.Comment))}, nil

	case change.UpdateColumnPosition:
		return nil, unsupported(c, d.Name(), "postgres cannot reorder columns")

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

// quoteLiteral quotes a string literal for embedding in DDL.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
