package plan

import (
	"fmt"

	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/datatype"
)

// Expression is the opaque contract this layer needs from the external
// expression system: a resolution flag and a printable form. Evaluation
// and type checking live elsewhere.
type Expression interface {
	// Resolved reports whether the expression is fully checked.
	Resolved() bool

	// String returns a printable form for diagnostics.
	String() string
}

// TypedExpression is an expression whose output type is known. Calling
// DataType or Nullable on an unresolved node is a contract violation and
// panics with an ErrUnresolvedNode error; it never returns a default.
type TypedExpression interface {
	Expression
	DataType() datatype.DataType
	Nullable() bool
}

// SupportsSubquery marks expressions that may contain correlated
// subqueries. Commands that accept such expressions (delete/update
// conditions and assignments) declare support via this capability; the
// subqueries themselves are planned and evaluated externally.
type SupportsSubquery interface {
	ContainsSubquery() bool
}

// -----------------------------------------------------------------------------
// Literal
// -----------------------------------------------------------------------------

// Literal is a constant value with a known type. Always resolved.
type Literal struct {
	Value any
	Type  datatype.DataType
}

func (l Literal) Resolved() bool              { return true }
func (l Literal) DataType() datatype.DataType { return l.Type }
func (l Literal) Nullable() bool              { return l.Value == nil }

func (l Literal) String() string {
	if l.Value == nil {
		return "null"
	}
	return fmt.Sprintf("%v", l.Value)
}

// -----------------------------------------------------------------------------
// FieldReference
// -----------------------------------------------------------------------------

// FieldReference is a resolved reference to a (possibly nested) column,
// carrying the type and nullability looked up during analysis.
type FieldReference struct {
	Path     datatype.FieldPath
	Type     datatype.DataType
	Null     bool
}

func (f FieldReference) Resolved() bool              { return true }
func (f FieldReference) DataType() datatype.DataType { return f.Type }
func (f FieldReference) Nullable() bool              { return f.Null }
func (f FieldReference) String() string              { return f.Path.String() }

// -----------------------------------------------------------------------------
// UnresolvedAttribute
// -----------------------------------------------------------------------------

// UnresolvedAttribute is a column reference that has not been matched
// against a schema yet. Its derived properties are invalid until an
// analysis pass replaces it with a FieldReference.
type UnresolvedAttribute struct {
	Path datatype.FieldPath
}

func (u UnresolvedAttribute) Resolved() bool { return false }
func (u UnresolvedAttribute) String() string { return "'" + u.Path.String() }

// DataType panics: an unresolved attribute has no type.
func (u UnresolvedAttribute) DataType() datatype.DataType {
	panic(cerr.New(cerr.ErrUnresolvedNode, "dataType accessed on unresolved attribute").
		WithPath(u.Path))
}

// Nullable panics: an unresolved attribute has no nullability.
func (u UnresolvedAttribute) Nullable() bool {
	panic(cerr.New(cerr.ErrUnresolvedNode, "nullable accessed on unresolved attribute").
		WithPath(u.Path))
}

// -----------------------------------------------------------------------------
// Raw
// -----------------------------------------------------------------------------

// Raw carries an expression verbatim for the external expression layer.
// Resolution state is declared by whoever constructed the value, not
// derived here; the command layer treats the text as opaque.
type Raw struct {
	Text       string
	Unresolved bool
}

func (r Raw) Resolved() bool { return !r.Unresolved }
func (r Raw) String() string { return r.Text }

// ContainsSubquery reports false: raw text cannot be inspected for
// subqueries at this layer.
func (r Raw) ContainsSubquery() bool { return false }

// -----------------------------------------------------------------------------
// Assignment
// -----------------------------------------------------------------------------

// Assignment pairs a target column reference with a value expression.
// Used by update commands and merge actions; order within an assignment
// list is preserved.
type Assignment struct {
	Target datatype.FieldPath
	Value  Expression
}

// Resolved reports whether the value expression is resolved. The target
// path is validated by the analyzer against the table schema.
func (a Assignment) Resolved() bool {
	return a.Value != nil && a.Value.Resolved()
}

func (a Assignment) String() string {
	if a.Value == nil {
		return a.Target.String() + " = ?"
	}
	return a.Target.String() + " = " + a.Value.String()
}

// AssignmentsResolved reports whether every assignment in the list is resolved.
func AssignmentsResolved(assignments []Assignment) bool {
	for _, a := range assignments {
		if !a.Resolved() {
			return false
		}
	}
	return true
}
