// Package change defines the primitive, catalog-agnostic table changes
// produced by the command layer. A change is pure data: the command layer
// only produces ordered change lists, and an external catalog applies them
// (atomically or not at all). Whether a referenced column actually exists
// is the catalog's concern at apply time, not this package's.
package change

import (
	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/datatype"
)

// ReservedPropertyLocation is the reserved property key holding a table's
// storage location.
const ReservedPropertyLocation = "location"

// Kind represents the type of a table change.
type Kind int

const (
	// KindAddColumn adds a new (possibly nested) column.
	KindAddColumn Kind = iota

	// KindUpdateColumnType changes a column's data type.
	KindUpdateColumnType

	// KindUpdateColumnNullability changes a column's nullability.
	KindUpdateColumnNullability

	// KindUpdateColumnComment changes a column's comment.
	KindUpdateColumnComment

	// KindUpdateColumnPosition moves a column within its parent.
	KindUpdateColumnPosition

	// KindRenameColumn changes a column's name, keeping its position.
	KindRenameColumn

	// KindDeleteColumn removes a column.
	KindDeleteColumn

	// KindSetProperty sets a table property.
	KindSetProperty

	// KindRemoveProperty removes a table property.
	KindRemoveProperty
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindAddColumn:
		return "AddColumn"
	case KindUpdateColumnType:
		return "UpdateColumnType"
	case KindUpdateColumnNullability:
		return "UpdateColumnNullability"
	case KindUpdateColumnComment:
		return "UpdateColumnComment"
	case KindUpdateColumnPosition:
		return "UpdateColumnPosition"
	case KindRenameColumn:
		return "RenameColumn"
	case KindDeleteColumn:
		return "DeleteColumn"
	case KindSetProperty:
		return "SetProperty"
	case KindRemoveProperty:
		return "RemoveProperty"
	default:
		return "Unknown"
	}
}

// TableChange is a single primitive mutation to a table's schema or
// properties. The set of implementations is closed; consumers switch
// exhaustively on Kind.
type TableChange interface {
	// Kind returns the change discriminator.
	Kind() Kind

	// Validate checks that the change is well-formed.
	Validate() error
}

// ColumnPosition places a column first in its parent or after a sibling.
// The zero value is invalid; use First() or After(name).
type ColumnPosition struct {
	first bool
	after string
}

// First returns the position at the head of the parent struct.
func First() *ColumnPosition {
	return &ColumnPosition{first: true}
}

// After returns the position immediately after the named sibling.
func After(column string) *ColumnPosition {
	return &ColumnPosition{after: column}
}

// IsFirst reports whether this is the head position.
func (p *ColumnPosition) IsFirst() bool { return p.first }

// AfterColumn returns the sibling name for an after-position, or "".
func (p *ColumnPosition) AfterColumn() string { return p.after }

func (p *ColumnPosition) String() string {
	if p.first {
		return "FIRST"
	}
	return "AFTER " + p.after
}

// -----------------------------------------------------------------------------
// AddColumn
// -----------------------------------------------------------------------------

// AddColumn adds a column at the given path. The last path element is the
// new column's name; the leading elements locate the parent struct.
type AddColumn struct {
	Path     datatype.FieldPath
	Type     datatype.DataType
	Nullable bool
	Comment  string          // empty = no comment
	Position *ColumnPosition // nil = append at the end
}

func (c AddColumn) Kind() Kind { return KindAddColumn }

func (c AddColumn) Validate() error {
	if len(c.Path) == 0 {
		return cerr.New(cerr.ErrInvalidChange, "column path is required for add column")
	}
	if c.Type == nil {
		return cerr.New(cerr.ErrInvalidChange, "column type is required for add column").
			WithPath(c.Path)
	}
	return nil
}

// -----------------------------------------------------------------------------
// UpdateColumnType
// -----------------------------------------------------------------------------

// UpdateColumnType changes the data type of the column at path.
type UpdateColumnType struct {
	Path datatype.FieldPath
	Type datatype.DataType
}

func (c UpdateColumnType) Kind() Kind { return KindUpdateColumnType }

func (c UpdateColumnType) Validate() error {
	if len(c.Path) == 0 {
		return cerr.New(cerr.ErrInvalidChange, "column path is required for update type")
	}
	if c.Type == nil {
		return cerr.New(cerr.ErrInvalidChange, "new type is required for update type").
			WithPath(c.Path)
	}
	return nil
}

// -----------------------------------------------------------------------------
// UpdateColumnNullability
// -----------------------------------------------------------------------------

// UpdateColumnNullability changes whether the column at path accepts nulls.
type UpdateColumnNullability struct {
	Path     datatype.FieldPath
	Nullable bool
}

func (c UpdateColumnNullability) Kind() Kind { return KindUpdateColumnNullability }

func (c UpdateColumnNullability) Validate() error {
	if len(c.Path) == 0 {
		return cerr.New(cerr.ErrInvalidChange, "column path is required for update nullability")
	}
	return nil
}

// -----------------------------------------------------------------------------
// UpdateColumnComment
// -----------------------------------------------------------------------------

// UpdateColumnComment replaces the comment on the column at path.
type UpdateColumnComment struct {
	Path    datatype.FieldPath
	Comment string
}

func (c UpdateColumnComment) Kind() Kind { return KindUpdateColumnComment }

func (c UpdateColumnComment) Validate() error {
	if len(c.Path) == 0 {
		return cerr.New(cerr.ErrInvalidChange, "column path is required for update comment")
	}
	return nil
}

// -----------------------------------------------------------------------------
// UpdateColumnPosition
// -----------------------------------------------------------------------------

// UpdateColumnPosition moves the column at path within its parent.
type UpdateColumnPosition struct {
	Path     datatype.FieldPath
	Position *ColumnPosition
}

func (c UpdateColumnPosition) Kind() Kind { return KindUpdateColumnPosition }

func (c UpdateColumnPosition) Validate() error {
	if len(c.Path) == 0 {
		return cerr.New(cerr.ErrInvalidChange, "column path is required for update position")
	}
	if c.Position == nil {
		return cerr.New(cerr.ErrInvalidChange, "position is required for update position").
			WithPath(c.Path)
	}
	return nil
}

// -----------------------------------------------------------------------------
// RenameColumn
// -----------------------------------------------------------------------------

// RenameColumn renames the column at path to NewName, keeping its position.
type RenameColumn struct {
	Path    datatype.FieldPath
	NewName string
}

func (c RenameColumn) Kind() Kind { return KindRenameColumn }

func (c RenameColumn) Validate() error {
	if len(c.Path) == 0 {
		return cerr.New(cerr.ErrInvalidChange, "column path is required for rename column")
	}
	if c.NewName == "" {
		return cerr.New(cerr.ErrInvalidChange, "new name is required for rename column").
			WithPath(c.Path)
	}
	if c.Path[len(c.Path)-1] == c.NewName {
		return cerr.New(cerr.ErrInvalidChange, "old and new column names must be different").
			WithPath(c.Path)
	}
	return nil
}

// -----------------------------------------------------------------------------
// DeleteColumn
// -----------------------------------------------------------------------------

// DeleteColumn removes the column at path.
type DeleteColumn struct {
	Path datatype.FieldPath
}

func (c DeleteColumn) Kind() Kind { return KindDeleteColumn }

func (c DeleteColumn) Validate() error {
	if len(c.Path) == 0 {
		return cerr.New(cerr.ErrInvalidChange, "column path is required for delete column")
	}
	return nil
}

// -----------------------------------------------------------------------------
// SetProperty
// -----------------------------------------------------------------------------

// SetProperty sets a table property.
type SetProperty struct {
	Key   string
	Value string
}

func (c SetProperty) Kind() Kind { return KindSetProperty }

func (c SetProperty) Validate() error {
	if c.Key == "" {
		return cerr.New(cerr.ErrInvalidChange, "property key is required for set property")
	}
	return nil
}

// -----------------------------------------------------------------------------
// RemoveProperty
// -----------------------------------------------------------------------------

// RemoveProperty removes a table property.
type RemoveProperty struct {
	Key string
}

func (c RemoveProperty) Kind() Kind { return KindRemoveProperty }

func (c RemoveProperty) Validate() error {
	if c.Key == "" {
		return cerr.New(cerr.ErrInvalidChange, "property key is required for remove property")
	}
	return nil
}

// ValidateAll validates an ordered change list, returning the first error.
func ValidateAll(changes []TableChange) error {
	for _, c := range changes {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
