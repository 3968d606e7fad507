package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"

	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/datatype"
	"github.com/calyxdb/calyx/internal/dialect"
	"github.com/calyxdb/calyx/internal/plan"
)

// SQL is a catalog backed by a relational database. Physical tables hold
// the data; a set of calyx_* metadata tables holds schemas, properties,
// and namespaces, because neither supported dialect can represent nested
// types or table properties natively.
//
// Change lists are applied inside one transaction: the rendered DDL and
// the metadata rewrite commit together or not at all.
type SQL struct {
	db      *sql.DB
	dialect dialect.Dialect
}

var _ Catalog = (*SQL)(nil)

// NewSQL creates a SQL catalog over db. Returns nil if db or d is nil.
func NewSQL(db *sql.DB, d dialect.Dialect) *SQL {
	if db == nil || d == nil {
		return nil
	}
	return &SQL{db: db, dialect: d}
}

// metadata table DDL, portable across both dialects.
var metadataDDL = []string{
	`CREATE TABLE IF NOT EXISTS calyx_tables (
  name TEXT PRIMARY KEY
)`,
	`CREATE TABLE IF NOT EXISTS calyx_columns (
  table_name TEXT NOT NULL,
  ord INTEGER NOT NULL,
  name TEXT NOT NULL,
  type TEXT NOT NULL,
  nullable INTEGER NOT NULL,
  comment TEXT NOT NULL,
  PRIMARY KEY (table_name, ord)
)`,
	`CREATE TABLE IF NOT EXISTS calyx_table_properties (
  table_name TEXT NOT NULL,
  key TEXT NOT NULL,
  value TEXT NOT NULL,
  PRIMARY KEY (table_name, key)
)`,
	`CREATE TABLE IF NOT EXISTS calyx_namespaces (
  name TEXT PRIMARY KEY
)`,
	`CREATE TABLE IF NOT EXISTS calyx_namespace_properties (
  namespace TEXT NOT NULL,
  key TEXT NOT NULL,
  value TEXT NOT NULL,
  PRIMARY KEY (namespace, key)
)`,
}

// EnsureMetadata creates the calyx_* metadata tables if missing.
func (c *SQL) EnsureMetadata(ctx context.Context) error {
	for _, ddl := range metadataDDL {
		if _, err := c.db.ExecContext(ctx, ddl); err != nil {
			return cerr.Wrap(cerr.ErrSQLExecution, err, "failed to create metadata table").
				WithSQL(ddl)
		}
	}
	return nil
}

// PhysicalName maps an identifier to the stored table name,
// namespace_table style.
func PhysicalName(ident plan.Identifier) string {
	return strings.Join(ident, "_")
}

func (c *SQL) LoadTable(ctx context.Context, ident plan.Identifier) (*TableInfo, error) {
	name := PhysicalName(ident)

	var found string
	err := c.db.QueryRowContext(ctx,
		`SELECT name FROM calyx_tables WHERE name = `+c.placeholder(1), name).Scan(&found)
	if err == sql.ErrNoRows {
		return nil, cerr.New(cerr.ErrTableNotFound, "table does not exist").
			With("table", ident.String())
	}
	if err != nil {
		return nil, cerr.WrapSQL(err, "load table", name)
	}

	schema, err := c.loadSchema(ctx, name)
	if err != nil {
		return nil, err
	}
	properties, err := c.loadProperties(ctx, name)
	if err != nil {
		return nil, err
	}

	return &TableInfo{Ident: ident, Schema: schema, Properties: properties}, nil
}

func (c *SQL) loadSchema(ctx context.Context, name string) (datatype.StructType, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, type, nullable, comment FROM calyx_columns WHERE table_name = `+
			c.placeholder(1)+` ORDER BY ord`, name)
	if err != nil {
		return datatype.StructType{}, cerr.WrapSQL(err, "load columns", name)
	}
	defer rows.Close()

	var schema datatype.StructType
	for rows.Next() {
		var colName, typeText, comment string
		var nullable int
		if err := rows.Scan(&colName, &typeText, &nullable, &comment); err != nil {
			return datatype.StructType{}, cerr.WrapSQL(err, "scan column", name)
		}
		colType, err := datatype.Parse(typeText)
		if err != nil {
			return datatype.StructType{}, cerr.Wrap(cerr.EInternalError, err, "stored column type is invalid").
				WithTable("", name).
				WithColumn(colName)
		}
		schema.Fields = append(schema.Fields, datatype.StructField{
			Name:     colName,
			Type:     colType,
			Nullable: nullable != 0,
			Comment:  comment,
		})
	}
	if err := rows.Err(); err != nil {
		return datatype.StructType{}, cerr.WrapSQL(err, "load columns", name)
	}
	return schema, nil
}

func (c *SQL) loadProperties(ctx context.Context, name string) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT key, value FROM calyx_table_properties WHERE table_name = `+c.placeholder(1), name)
	if err != nil {
		return nil, cerr.WrapSQL(err, "load properties", name)
	}
	defer rows.Close()

	properties := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, cerr.WrapSQL(err, "scan property", name)
		}
		properties[k] = v
	}
	return properties, rows.Err()
}

func (c *SQL) TableExists(ctx context.Context, ident plan.Identifier) (bool, error) {
	name := PhysicalName(ident)
	var found string
	err := c.db.QueryRowContext(ctx,
		`SELECT name FROM calyx_tables WHERE name = `+c.placeholder(1), name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, cerr.WrapSQL(err, "check table", name)
	}
	return true, nil
}

func (c *SQL) CreateTable(ctx context.Context, info TableInfo, ifNotExists bool) error {
	exists, err := c.TableExists(ctx, info.Ident)
	if err != nil {
		return err
	}
	if exists {
		if ifNotExists {
			return nil
		}
		return cerr.New(cerr.ErrTableExists, "table already exists").
			With("table", info.Ident.String())
	}

	name := PhysicalName(info.Ident)
	createSQL, err := c.dialect.CreateTableSQL(name, info.Schema, ifNotExists)
	if err != nil {
		return err
	}

	return c.inTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, createSQL); err != nil {
			return cerr.WrapSQL(err, "create table", name).WithSQL(createSQL)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO calyx_tables (name) VALUES (`+c.placeholder(1)+`)`, name); err != nil {
			return cerr.WrapSQL(err, "register table", name)
		}
		if err := c.writeColumns(ctx, tx, name, info.Schema); err != nil {
			return err
		}
		for k, v := range info.Properties {
			if err := c.writeProperty(ctx, tx, name, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *SQL) DropTable(ctx context.Context, ident plan.Identifier, ifExists bool) error {
	exists, err := c.TableExists(ctx, ident)
	if err != nil {
		return err
	}
	if !exists {
		if ifExists {
			return nil
		}
		return cerr.New(cerr.ErrTableNotFound, "table does not exist").
			With("table", ident.String())
	}

	name := PhysicalName(ident)
	return c.inTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, c.dialect.DropTableSQL(name, ifExists)); err != nil {
			return cerr.WrapSQL(err, "drop table", name)
		}
		return c.deleteMetadata(ctx, tx, name)
	})
}

func (c *SQL) RenameTable(ctx context.Context, ident plan.Identifier, newName string) error {
	info, err := c.LoadTable(ctx, ident)
	if err != nil {
		return err
	}

	newIdent := append(append(plan.Identifier{}, ident.Namespace()...), newName)
	oldPhysical := PhysicalName(ident)
	newPhysical := PhysicalName(newIdent)

	return c.inTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, c.dialect.RenameTableSQL(oldPhysical, newPhysical)); err != nil {
			return cerr.WrapSQL(err, "rename table", oldPhysical)
		}
		if err := c.deleteMetadata(ctx, tx, oldPhysical); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO calyx_tables (name) VALUES (`+c.placeholder(1)+`)`, newPhysical); err != nil {
			return cerr.WrapSQL(err, "register table", newPhysical)
		}
		if err := c.writeColumns(ctx, tx, newPhysical, info.Schema); err != nil {
			return err
		}
		for k, v := range info.Properties {
			if err := c.writeProperty(ctx, tx, newPhysical, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyChanges renders and executes the change list in one transaction,
// rewriting the column metadata to the post-change schema.
func (c *SQL) ApplyChanges(ctx context.Context, ident plan.Identifier, changes []change.TableChange) error {
	info, err := c.LoadTable(ctx, ident)
	if err != nil {
		return err
	}
	name := PhysicalName(ident)

	// Apply to an in-memory copy first: this validates the whole list
	// before any SQL runs and yields the post-change metadata.
	scratch := copyTableInfo(info)
	var statements []string
	for _, ch := range changes {
		switch ch.(type) {
		case change.SetProperty, change.RemoveProperty:
			// Property changes touch only the metadata tables.
		default:
			stmts, err := c.dialect.ChangeSQL(name, ch)
			if err != nil {
				return err
			}
			statements = append(statements, stmts...)
		}
		if err := applyToInfo(&scratch, ch); err != nil {
			return err
		}
	}

	return c.inTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range statements {
			slog.Debug("applying table change", "table", name, "sql", stmt)
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return cerr.WrapSQL(err, "apply change", name).WithSQL(stmt)
			}
		}
		if err := c.deleteColumnMetadata(ctx, tx, name); err != nil {
			return err
		}
		if err := c.writeColumns(ctx, tx, name, scratch.Schema); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM calyx_table_properties WHERE table_name = `+c.placeholder(1), name); err != nil {
			return cerr.WrapSQL(err, "rewrite properties", name)
		}
		for k, v := range scratch.Properties {
			if err := c.writeProperty(ctx, tx, name, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *SQL) ListTables(ctx context.Context, namespace plan.Identifier) ([]plan.Identifier, error) {
	prefix := PhysicalName(namespace)
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM calyx_tables ORDER BY name`)
	if err != nil {
		return nil, cerr.WrapSQL(err, "list tables", "")
	}
	defer rows.Close()

	var idents []plan.Identifier
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, cerr.WrapSQL(err, "scan table name", "")
		}
		if prefix != "" && !strings.HasPrefix(name, prefix+"_") {
			continue
		}
		table := name
		if prefix != "" {
			table = strings.TrimPrefix(name, prefix+"_")
		}
		idents = append(idents, append(append(plan.Identifier{}, namespace...), table))
	}
	return idents, rows.Err()
}

func (c *SQL) CreateNamespace(ctx context.Context, namespace plan.Identifier, properties map[string]string, ifNotExists bool) error {
	name := PhysicalName(namespace)
	var found string
	err := c.db.QueryRowContext(ctx,
		`SELECT name FROM calyx_namespaces WHERE name = `+c.placeholder(1), name).Scan(&found)
	if err == nil {
		if ifNotExists {
			return nil
		}
		return cerr.New(cerr.ErrNamespaceExists, "namespace already exists").
			With("namespace", namespace.String())
	}
	if err != sql.ErrNoRows {
		return cerr.WrapSQL(err, "check namespace", name)
	}

	return c.inTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO calyx_namespaces (name) VALUES (`+c.placeholder(1)+`)`, name); err != nil {
			return cerr.WrapSQL(err, "create namespace", name)
		}
		for k, v := range properties {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO calyx_namespace_properties (namespace, key, value) VALUES (`+
					c.placeholders(3)+`)`, name, k, v); err != nil {
				return cerr.WrapSQL(err, "set namespace property", name)
			}
		}
		return nil
	})
}

func (c *SQL) DropNamespace(ctx context.Context, namespace plan.Identifier, ifExists, cascade bool) error {
	name := PhysicalName(namespace)
	var found string
	err := c.db.QueryRowContext(ctx,
		`SELECT name FROM calyx_namespaces WHERE name = `+c.placeholder(1), name).Scan(&found)
	if err == sql.ErrNoRows {
		if ifExists {
			return nil
		}
		return cerr.New(cerr.ErrNamespaceNotFound, "namespace does not exist").
			With("namespace", namespace.String())
	}
	if err != nil {
		return cerr.WrapSQL(err, "check namespace", name)
	}

	tables, err := c.ListTables(ctx, namespace)
	if err != nil {
		return err
	}
	if len(tables) > 0 && !cascade {
		return cerr.New(cerr.ErrNamespaceNotEmpty, "namespace still holds tables").
			With("namespace", namespace.String()).
			With("tables", len(tables))
	}
	for _, table := range tables {
		if err := c.DropTable(ctx, table, false); err != nil {
			return err
		}
	}

	return c.inTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM calyx_namespace_properties WHERE namespace = `+c.placeholder(1), name); err != nil {
			return cerr.WrapSQL(err, "drop namespace properties", name)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM calyx_namespaces WHERE name = `+c.placeholder(1), name); err != nil {
			return cerr.WrapSQL(err, "drop namespace", name)
		}
		return nil
	})
}

func (c *SQL) LoadNamespace(ctx context.Context, namespace plan.Identifier) (map[string]string, error) {
	name := PhysicalName(namespace)
	var found string
	err := c.db.QueryRowContext(ctx,
		`SELECT name FROM calyx_namespaces WHERE name = `+c.placeholder(1), name).Scan(&found)
	if err == sql.ErrNoRows {
		return nil, cerr.New(cerr.ErrNamespaceNotFound, "namespace does not exist").
			With("namespace", namespace.String())
	}
	if err != nil {
		return nil, cerr.WrapSQL(err, "check namespace", name)
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT key, value FROM calyx_namespace_properties WHERE namespace = `+c.placeholder(1), name)
	if err != nil {
		return nil, cerr.WrapSQL(err, "load namespace properties", name)
	}
	defer rows.Close()

	properties := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, cerr.WrapSQL(err, "scan namespace property", name)
		}
		properties[k] = v
	}
	return properties, rows.Err()
}

func (c *SQL) SetNamespaceProperties(ctx context.Context, namespace plan.Identifier, properties map[string]string) error {
	if _, err := c.LoadNamespace(ctx, namespace); err != nil {
		return err
	}
	name := PhysicalName(namespace)
	return c.inTransaction(ctx, func(tx *sql.Tx) error {
		for k, v := range properties {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM calyx_namespace_properties WHERE namespace = `+
					c.placeholder(1)+` AND key = `+c.placeholder(2), name, k); err != nil {
				return cerr.WrapSQL(err, "set namespace property", name)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO calyx_namespace_properties (namespace, key, value) VALUES (`+
					c.placeholders(3)+`)`, name, k, v); err != nil {
				return cerr.WrapSQL(err, "set namespace property", name)
			}
		}
		return nil
	})
}

func (c *SQL) ListNamespaces(ctx context.Context, parent plan.Identifier) ([]plan.Identifier, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name FROM calyx_namespaces ORDER BY name`)
	if err != nil {
		return nil, cerr.WrapSQL(err, "list namespaces", "")
	}
	defer rows.Close()

	prefix := PhysicalName(parent)
	var namespaces []plan.Identifier
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, cerr.WrapSQL(err, "scan namespace", "")
		}
		rest := name
		if prefix != "" {
			if !strings.HasPrefix(name, prefix+"_") {
				continue
			}
			rest = strings.TrimPrefix(name, prefix+"_")
		}
		if strings.Contains(rest, "_") {
			// Deeper than one level below parent.
			continue
		}
		namespaces = append(namespaces, append(append(plan.Identifier{}, parent...), rest))
	}
	return namespaces, rows.Err()
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func (c *SQL) inTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return cerr.Wrap(cerr.ErrSQLTransaction, err, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return cerr.Wrap(cerr.ErrSQLTransaction, err, "failed to commit transaction")
	}
	return nil
}

func (c *SQL) writeColumns(ctx context.Context, tx *sql.Tx, name string, schema datatype.StructType) error {
	for i, f := range schema.Fields {
		nullable := 0
		if f.Nullable {
			nullable = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO calyx_columns (table_name, ord, name, type, nullable, comment) VALUES (`+
				c.placeholders(6)+`)`,
			name, i, f.Name, f.Type.String(), nullable, f.Comment); err != nil {
			return cerr.WrapSQL(err, "write column metadata", name).WithColumn(f.Name)
		}
	}
	return nil
}

func (c *SQL) writeProperty(ctx context.Context, tx *sql.Tx, name, key, value string) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO calyx_table_properties (table_name, key, value) VALUES (`+
			c.placeholders(3)+`)`, name, key, value); err != nil {
		return cerr.WrapSQL(err, "write table property", name)
	}
	return nil
}

func (c *SQL) deleteColumnMetadata(ctx context.Context, tx *sql.Tx, name string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM calyx_columns WHERE table_name = `+c.placeholder(1), name); err != nil {
		return cerr.WrapSQL(err, "delete column metadata", name)
	}
	return nil
}

func (c *SQL) deleteMetadata(ctx context.Context, tx *sql.Tx, name string) error {
	if err := c.deleteColumnMetadata(ctx, tx, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM calyx_table_properties WHERE table_name = `+c.placeholder(1), name); err != nil {
		return cerr.WrapSQL(err, "delete table properties", name)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM calyx_tables WHERE name = `+c.placeholder(1), name); err != nil {
		return cerr.WrapSQL(err, "deregister table", name)
	}
	return nil
}

// placeholder returns the dialect's bind placeholder for position index.
func (c *SQL) placeholder(index int) string {
	if c.dialect.Name() == "postgres" {
		return "$" + strconv.Itoa(index)
	}
	return "?"
}

func (c *SQL) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = c.placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}
