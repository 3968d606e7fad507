package command

import (
	"github.com/calyxdb/calyx/internal/datatype"
	"github.com/calyxdb/calyx/internal/plan"
)

// TableDefinition is the shared contract of the four table-defining
// commands. WithPartitioning returns a modified copy of the same concrete
// variant; an external partition-normalization pass uses it to rewrite
// transforms against the resolved schema.
type TableDefinition interface {
	Command

	// TableName returns the display name of the table being defined.
	TableName() string

	// Partitioning returns the ordered partitioning transforms.
	Partitioning() []plan.Transform

	// TableSchema returns the schema of the table being defined. For
	// as-select variants this is derived from the current query output,
	// never a stored copy.
	TableSchema() datatype.StructType

	// WithPartitioning returns a copy with the partitioning replaced.
	WithPartitioning(partitioning []plan.Transform) TableDefinition
}

// -----------------------------------------------------------------------------
// CreateTable
// -----------------------------------------------------------------------------

// CreateTable defines a new table from an explicit schema.
type CreateTable struct {
	leaf
	Ident       plan.Identifier
	Schema      datatype.StructType
	PartitionBy []plan.Transform
	Properties  map[string]string
	IfNotExists bool
}

func (c CreateTable) TableName() string                { return c.Ident.String() }
func (c CreateTable) Partitioning() []plan.Transform   { return c.PartitionBy }
func (c CreateTable) TableSchema() datatype.StructType { return c.Schema }

func (c CreateTable) WithPartitioning(partitioning []plan.Transform) TableDefinition {
	c.PartitionBy = partitioning
	return c
}

// -----------------------------------------------------------------------------
// CreateTableAsSelect
// -----------------------------------------------------------------------------

// CreateTableAsSelect defines a new table whose schema is the output of a
// query. The schema accessor always reflects the current query, so a
// rewrite replacing the query is immediately visible.
type CreateTableAsSelect struct {
	Ident        plan.Identifier
	Query        plan.LogicalPlan
	PartitionBy  []plan.Transform
	Properties   map[string]string
	WriteOptions map[string]string
	IfNotExists  bool
}

func (c CreateTableAsSelect) Children() []plan.LogicalPlan { return []plan.LogicalPlan{c.Query} }
func (c CreateTableAsSelect) Output() []plan.Attribute     { return nil }

// Resolved requires the query to be resolved and every field path
// referenced by the partitioning to exist in the query's schema.
func (c CreateTableAsSelect) Resolved() bool {
	return c.Query.Resolved() && plan.ChildrenResolved(c) &&
		len(unresolvedPartitionPaths(c.PartitionBy, c.TableSchema())) == 0
}

func (c CreateTableAsSelect) TableName() string              { return c.Ident.String() }
func (c CreateTableAsSelect) Partitioning() []plan.Transform { return c.PartitionBy }

func (c CreateTableAsSelect) TableSchema() datatype.StructType {
	return plan.SchemaFromAttributes(c.Query.Output())
}

func (c CreateTableAsSelect) WithPartitioning(partitioning []plan.Transform) TableDefinition {
	c.PartitionBy = partitioning
	return c
}

// UnresolvedPartitionPaths returns the partition-referenced field paths
// missing from the query schema, for user-facing reporting.
func (c CreateTableAsSelect) UnresolvedPartitionPaths() []datatype.FieldPath {
	if !c.Query.Resolved() {
		return nil
	}
	return unresolvedPartitionPaths(c.PartitionBy, c.TableSchema())
}

// -----------------------------------------------------------------------------
// ReplaceTable
// -----------------------------------------------------------------------------

// ReplaceTable redefines an existing table from an explicit schema.
// OrCreate is pass-through data: when the table does not exist at
// execution time, the execution collaborator creates it if OrCreate is
// set and fails with a table-not-found condition otherwise. This command
// performs no existence check itself.
type ReplaceTable struct {
	leaf
	Ident       plan.Identifier
	Schema      datatype.StructType
	PartitionBy []plan.Transform
	Properties  map[string]string
	OrCreate    bool
}

func (r ReplaceTable) TableName() string                { return r.Ident.String() }
func (r ReplaceTable) Partitioning() []plan.Transform   { return r.PartitionBy }
func (r ReplaceTable) TableSchema() datatype.StructType { return r.Schema }

func (r ReplaceTable) WithPartitioning(partitioning []plan.Transform) TableDefinition {
	r.PartitionBy = partitioning
	return r
}

// -----------------------------------------------------------------------------
// ReplaceTableAsSelect
// -----------------------------------------------------------------------------

// ReplaceTableAsSelect redefines an existing table from a query. See
// CreateTableAsSelect for schema derivation and ReplaceTable for OrCreate.
type ReplaceTableAsSelect struct {
	Ident        plan.Identifier
	Query        plan.LogicalPlan
	PartitionBy  []plan.Transform
	Properties   map[string]string
	WriteOptions map[string]string
	OrCreate     bool
}

func (r ReplaceTableAsSelect) Children() []plan.LogicalPlan { return []plan.LogicalPlan{r.Query} }
func (r ReplaceTableAsSelect) Output() []plan.Attribute     { return nil }

func (r ReplaceTableAsSelect) Resolved() bool {
	return r.Query.Resolved() && plan.ChildrenResolved(r) &&
		len(unresolvedPartitionPaths(r.PartitionBy, r.TableSchema())) == 0
}

func (r ReplaceTableAsSelect) TableName() string              { return r.Ident.String() }
func (r ReplaceTableAsSelect) Partitioning() []plan.Transform { return r.PartitionBy }

func (r ReplaceTableAsSelect) TableSchema() datatype.StructType {
	return plan.SchemaFromAttributes(r.Query.Output())
}

func (r ReplaceTableAsSelect) WithPartitioning(partitioning []plan.Transform) TableDefinition {
	r.PartitionBy = partitioning
	return r
}

// UnresolvedPartitionPaths returns the partition-referenced field paths
// missing from the query schema, for user-facing reporting.
func (r ReplaceTableAsSelect) UnresolvedPartitionPaths() []datatype.FieldPath {
	if !r.Query.Resolved() {
		return nil
	}
	return unresolvedPartitionPaths(r.PartitionBy, r.TableSchema())
}

// -----------------------------------------------------------------------------
// DropTable
// -----------------------------------------------------------------------------

// DropTable removes a table. IfExists is pass-through for execution.
type DropTable struct {
	leaf
	Ident    plan.Identifier
	IfExists bool
}

// RenameTable renames a table within its namespace.
type RenameTable struct {
	leaf
	Ident   plan.Identifier
	NewName string
}

// unresolvedPartitionPaths checks every distinct field path referenced by
// the transforms against the schema. Each path is checked independently;
// any absence fails resolution for the whole command.
func unresolvedPartitionPaths(transforms []plan.Transform, schema datatype.StructType) []datatype.FieldPath {
	var missing []datatype.FieldPath
	for _, path := range plan.ReferencedPaths(transforms) {
		if _, ok := datatype.FindNestedField(schema, path); !ok {
			missing = append(missing, path)
		}
	}
	return missing
}
