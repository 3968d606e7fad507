package plan

import (
	"github.com/calyxdb/calyx/internal/datatype"
)

// NamedRelation is a named, schema-bearing reference to a table or view,
// as produced by the catalog when an identifier resolves. Relations that
// skip schema resolution (schema-less sinks) accept any source schema.
type NamedRelation interface {
	LogicalPlan

	// Name returns the display name of the relation.
	Name() string

	// SkipSchemaResolution reports whether writes to this relation bypass
	// schema compatibility checking.
	SkipSchemaResolution() bool
}

// Table is a resolved table relation: an identifier, a schema, and the
// table's properties as held by the catalog.
type Table struct {
	Ident      Identifier
	Schema     datatype.StructType
	Properties map[string]string

	// SchemaLess marks sinks that accept any input schema.
	SchemaLess bool
}

func (t Table) Children() []LogicalPlan    { return nil }
func (t Table) Output() []Attribute        { return AttributesFromSchema(t.Schema) }
func (t Table) Resolved() bool             { return true }
func (t Table) Name() string               { return t.Ident.String() }
func (t Table) SkipSchemaResolution() bool { return t.SchemaLess }

// UnresolvedRelation is an identifier that has not been looked up in the
// catalog yet. It has no output and is never resolved.
type UnresolvedRelation struct {
	Ident Identifier
}

func (u UnresolvedRelation) Children() []LogicalPlan    { return nil }
func (u UnresolvedRelation) Output() []Attribute        { return nil }
func (u UnresolvedRelation) Resolved() bool             { return false }
func (u UnresolvedRelation) Name() string               { return u.Ident.String() }
func (u UnresolvedRelation) SkipSchemaResolution() bool { return false }

// LocalRelation is a leaf plan with an explicit output schema and no
// storage behind it. It stands in for an arbitrary resolved source query
// in tests and plan files.
type LocalRelation struct {
	Attrs []Attribute
}

func (l LocalRelation) Children() []LogicalPlan { return nil }
func (l LocalRelation) Output() []Attribute     { return l.Attrs }
func (l LocalRelation) Resolved() bool          { return true }

// UnresolvedQuery is a leaf plan standing in for a source query that the
// external analyzer has not resolved yet.
type UnresolvedQuery struct {
	Text string
}

func (u UnresolvedQuery) Children() []LogicalPlan { return nil }
func (u UnresolvedQuery) Output() []Attribute     { return nil }
func (u UnresolvedQuery) Resolved() bool          { return false }
