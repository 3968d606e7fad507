// Package plan defines the plan-node and expression contracts consumed by
// the Calyx command layer. A plan node is an immutable tree value exposing
// its children, its output schema, and a resolution flag derived purely
// from current field values. Nothing in this package performs I/O or
// mutates shared state; resolution is safe to recompute any number of
// times.
package plan

import (
	"strings"

	"github.com/calyxdb/calyx/internal/datatype"
)

// Attribute is one column of a node's output: name, semantic type, and
// top-level nullability. Attribute equality for resolution purposes is
// owned by the compatibility checker, not by this type.
type Attribute struct {
	Name     string
	Type     datatype.DataType
	Nullable bool
}

// LogicalPlan is a node in the command/query tree. Implementations are
// immutable values; Resolved must be a pure function of the node's own
// fields and its children's resolved state.
type LogicalPlan interface {
	// Children returns the ordered child plans. Tree edges are ownership:
	// a parent exclusively owns its sub-plans.
	Children() []LogicalPlan

	// Output returns the ordered output schema of this node.
	Output() []Attribute

	// Resolved reports whether this node and everything below it is fully
	// name- and type-checked and ready for execution.
	Resolved() bool
}

// ChildrenResolved reports whether every child of p is resolved.
func ChildrenResolved(p LogicalPlan) bool {
	for _, c := range p.Children() {
		if !c.Resolved() {
			return false
		}
	}
	return true
}

// AttributesFromSchema converts a struct type into an output attribute list.
func AttributesFromSchema(schema datatype.StructType) []Attribute {
	attrs := make([]Attribute, len(schema.Fields))
	for i, f := range schema.Fields {
		attrs[i] = Attribute{Name: f.Name, Type: f.Type, Nullable: f.Nullable}
	}
	return attrs
}

// SchemaFromAttributes converts an output attribute list into a struct type.
func SchemaFromAttributes(attrs []Attribute) datatype.StructType {
	fields := make([]datatype.StructField, len(attrs))
	for i, a := range attrs {
		fields[i] = datatype.StructField{Name: a.Name, Type: a.Type, Nullable: a.Nullable}
	}
	return datatype.StructType{Fields: fields}
}

// Identifier is a multi-part object name (catalog, namespace, table parts).
type Identifier []string

// String joins the identifier parts with "." for display only.
func (id Identifier) String() string {
	return strings.Join(id, ".")
}

// Namespace returns all but the last part of the identifier.
func (id Identifier) Namespace() Identifier {
	if len(id) == 0 {
		return nil
	}
	return id[:len(id)-1]
}

// Equal reports whether two identifiers are identical.
func (id Identifier) Equal(other Identifier) bool {
	if len(id) != len(other) {
		return false
	}
	for i := range id {
		if id[i] != other[i] {
			return false
		}
	}
	return true
}

// Name returns the last part of the identifier.
func (id Identifier) Name() string {
	if len(id) == 0 {
		return ""
	}
	return id[len(id)-1]
}
