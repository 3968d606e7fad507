// Package dialect provides database-specific SQL generation.
// This file contains shared helper functions used by all dialect implementations.
package dialect

import (
	"fmt"
	"strings"

	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/datatype"
)

// QuoteIdentFunc is a function that quotes an identifier.
type QuoteIdentFunc func(name string) string

// topLevelColumn extracts the single column name from a change path.
// Neither supported dialect can address nested struct fields in DDL.
func topLevelColumn(path datatype.FieldPath, dialect string) (string, error) {
	if len(path) != 1 {
		return "", cerr.New(cerr.ErrUnsupportedChange, "nested column paths are not supported by this dialect").
			WithPath(path).
			With("dialect", dialect)
	}
	return path[0], nil
}

// buildColumnSQL renders "name TYPE [NOT NULL]" for a column definition.
func buildColumnSQL(f datatype.StructField, quote QuoteIdentFunc, typeSQL func(datatype.DataType) (string, error)) (string, error) {
	sqlType, err := typeSQL(f.Type)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(quote(f.Name))
	b.WriteString(" ")
	b.WriteString(sqlType)
	if !f.Nullable {
		b.WriteString(" NOT NULL")
	}
	return b.String(), nil
}

// buildCreateTableSQL renders a CREATE TABLE shared by both dialects.
func buildCreateTableSQL(table string, schema datatype.StructType, ifNotExists bool, quote QuoteIdentFunc, typeSQL func(datatype.DataType) (string, error)) (string, error) {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	if ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(quote(table))
	b.WriteString(" (\n")
	for i, f := range schema.Fields {
		col, err := buildColumnSQL(f, quote, typeSQL)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  ")
		b.WriteString(col)
	}
	b.WriteString("\n)")
	return b.String(), nil
}

// buildDropTableSQL renders a DROP TABLE shared by both dialects.
func buildDropTableSQL(table string, ifExists bool, quote QuoteIdentFunc) string {
	if ifExists {
		return fmt.Sprintf("DROP TABLE IF EXISTS %s", quote(table))
	}
	return fmt.Sprintf("DROP TABLE %s", quote(table))
}

// unsupported builds the standard error for a change a dialect cannot express.
func unsupported(c change.TableChange, dialect, reason string) error {
	return cerr.New(cerr.ErrUnsupportedChange, reason).
		With("change", c.Kind().String()).
		With("dialect", dialect)
}
