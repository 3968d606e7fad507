// Package datatype defines the structural type system for Calyx.
// Types are immutable values: primitives, decimals, and the container
// types array, map, and struct, each carrying its own nullability for
// contained values. Schemas are struct types; nested columns are
// addressed by ordered field paths, never by dotted strings.
package datatype

import (
	"strconv"
	"strings"
)

// Kind discriminates the closed set of data types.
type Kind int

const (
	// KindBoolean is a true/false value.
	KindBoolean Kind = iota

	// KindInt8 is a signed 8-bit integer.
	KindInt8

	// KindInt16 is a signed 16-bit integer.
	KindInt16

	// KindInt32 is a signed 32-bit integer.
	KindInt32

	// KindInt64 is a signed 64-bit integer.
	KindInt64

	// KindFloat32 is a 32-bit IEEE-754 float.
	KindFloat32

	// KindFloat64 is a 64-bit IEEE-754 float.
	KindFloat64

	// KindDecimal is a fixed-precision decimal with precision and scale.
	KindDecimal

	// KindString is a UTF-8 string of unbounded length.
	KindString

	// KindBinary is an uninterpreted byte sequence.
	KindBinary

	// KindDate is a calendar date without a time component.
	KindDate

	// KindTimestamp is an instant in time.
	KindTimestamp

	// KindArray is an ordered collection of elements of one type.
	KindArray

	// KindMap is a key-value collection.
	KindMap

	// KindStruct is an ordered sequence of named, typed fields.
	KindStruct
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindDate:
		return "date"
	case KindTimestamp:
		return "timestamp"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	default:
		return "unknown"
	}
}

// DataType is the closed union of Calyx types. Consumption sites switch
// exhaustively on Kind; adding a type means extending the union and
// updating every switch.
type DataType interface {
	// Kind returns the type discriminator.
	Kind() Kind

	// String returns the textual form, round-trippable with Parse.
	String() string
}

// -----------------------------------------------------------------------------
// Primitive types
// -----------------------------------------------------------------------------

// PrimitiveType is a type with no parameters or children.
type PrimitiveType struct {
	kind Kind
}

func (p PrimitiveType) Kind() Kind     { return p.kind }
func (p PrimitiveType) String() string { return p.kind.String() }

// Singleton primitive values. Use these rather than constructing PrimitiveType.
var (
	Boolean   = PrimitiveType{KindBoolean}
	Int8      = PrimitiveType{KindInt8}
	Int16     = PrimitiveType{KindInt16}
	Int32     = PrimitiveType{KindInt32}
	Int64     = PrimitiveType{KindInt64}
	Float32   = PrimitiveType{KindFloat32}
	Float64   = PrimitiveType{KindFloat64}
	String    = PrimitiveType{KindString}
	Binary    = PrimitiveType{KindBinary}
	Date      = PrimitiveType{KindDate}
	Timestamp = PrimitiveType{KindTimestamp}
)

// DecimalType is a fixed-precision decimal.
type DecimalType struct {
	Precision int
	Scale     int
}

func (d DecimalType) Kind() Kind { return KindDecimal }

func (d DecimalType) String() string {
	return "decimal(" + strconv.Itoa(d.Precision) + "," + strconv.Itoa(d.Scale) + ")"
}

// -----------------------------------------------------------------------------
// Container types
// -----------------------------------------------------------------------------

// ArrayType is an ordered collection. ContainsNull records whether
// elements may be null.
type ArrayType struct {
	Element      DataType
	ContainsNull bool
}

func (a ArrayType) Kind() Kind { return KindArray }

func (a ArrayType) String() string {
	return "array<" + a.Element.String() + ">"
}

// MapType is a key-value collection. Keys are never null;
// ValueContainsNull records whether values may be null.
type MapType struct {
	Key               DataType
	Value             DataType
	ValueContainsNull bool
}

func (m MapType) Kind() Kind { return KindMap }

func (m MapType) String() string {
	return "map<" + m.Key.String() + "," + m.Value.String() + ">"
}

// StructField is one named field of a struct type.
type StructField struct {
	Name     string
	Type     DataType
	Nullable bool
	Comment  string
}

// StructType is an ordered sequence of named fields. A table schema is a
// StructType whose fields are the table's columns.
type StructType struct {
	Fields []StructField
}

func (s StructType) Kind() Kind { return KindStruct }

func (s StructType) String() string {
	var b strings.Builder
	b.WriteString("struct<")
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(f.Name)
		b.WriteString(":")
		b.WriteString(f.Type.String())
	}
	b.WriteString(">")
	return b.String()
}

// FieldNames returns the top-level field names in order.
func (s StructType) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// -----------------------------------------------------------------------------
// Field paths
// -----------------------------------------------------------------------------

// FieldPath addresses a possibly nested column as an ordered sequence of
// field names. A path is never a dotted string; field names may themselves
// contain separator characters.
type FieldPath []string

// String joins the path with "." for display only.
func (p FieldPath) String() string {
	return strings.Join(p, ".")
}

// Equal reports whether two paths are identical.
func (p FieldPath) Equal(other FieldPath) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// FindNestedField resolves a field path against a schema, descending
// through struct fields. Returns the located field and true, or a zero
// field and false when any step of the path is missing.
func FindNestedField(schema StructType, path FieldPath) (StructField, bool) {
	if len(path) == 0 {
		return StructField{}, false
	}

	current := schema
	for i, name := range path {
		var found *StructField
		for j := range current.Fields {
			if current.Fields[j].Name == name {
				found = &current.Fields[j]
				break
			}
		}
		if found == nil {
			return StructField{}, false
		}
		if i == len(path)-1 {
			return *found, true
		}
		next, ok := found.Type.(StructType)
		if !ok {
			return StructField{}, false
		}
		current = next
	}
	return StructField{}, false
}

// -----------------------------------------------------------------------------
// Equality
// -----------------------------------------------------------------------------

// Equal reports full structural equality, including all nullability flags.
func Equal(a, b DataType) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch at := a.(type) {
	case PrimitiveType:
		return true
	case DecimalType:
		bt := b.(DecimalType)
		return at.Precision == bt.Precision && at.Scale == bt.Scale
	case ArrayType:
		bt := b.(ArrayType)
		return at.ContainsNull == bt.ContainsNull && Equal(at.Element, bt.Element)
	case MapType:
		bt := b.(MapType)
		return at.ValueContainsNull == bt.ValueContainsNull &&
			Equal(at.Key, bt.Key) && Equal(at.Value, bt.Value)
	case StructType:
		bt := b.(StructType)
		if len(at.Fields) != len(bt.Fields) {
			return false
		}
		for i := range at.Fields {
			af, bf := at.Fields[i], bt.Fields[i]
			if af.Name != bf.Name || af.Nullable != bf.Nullable || !Equal(af.Type, bf.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// EqualIgnoreCompatibleNullability reports whether a value of type `from`
// can be written into a slot of type `to`: types must match structurally,
// but nullability inside containers may widen (a non-null element written
// into a nullable slot is fine) and never narrow.
func EqualIgnoreCompatibleNullability(from, to DataType) bool {
	if from.Kind() != to.Kind() {
		return false
	}
	switch ft := from.(type) {
	case PrimitiveType:
		return true
	case DecimalType:
		tt := to.(DecimalType)
		return ft.Precision == tt.Precision && ft.Scale == tt.Scale
	case ArrayType:
		tt := to.(ArrayType)
		return (tt.ContainsNull || !ft.ContainsNull) &&
			EqualIgnoreCompatibleNullability(ft.Element, tt.Element)
	case MapType:
		tt := to.(MapType)
		return (tt.ValueContainsNull || !ft.ValueContainsNull) &&
			EqualIgnoreCompatibleNullability(ft.Key, tt.Key) &&
			EqualIgnoreCompatibleNullability(ft.Value, tt.Value)
	case StructType:
		tt := to.(StructType)
		if len(ft.Fields) != len(tt.Fields) {
			return false
		}
		for i := range ft.Fields {
			ff, tf := ft.Fields[i], tt.Fields[i]
			if ff.Name != tf.Name {
				return false
			}
			if !tf.Nullable && ff.Nullable {
				return false
			}
			if !EqualIgnoreCompatibleNullability(ff.Type, tf.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
