package plan

import (
	"strconv"
	"strings"

	"github.com/calyxdb/calyx/internal/datatype"
)

// Transform is a partitioning expression over one or more schema fields.
// Transforms are pure data: the command layer only needs the ordered set
// of field paths a transform references, so that table definitions can
// check each reference against the (possibly query-derived) schema.
type Transform interface {
	// Name returns the transform function name (identity, bucket, years...).
	Name() string

	// References returns the field paths this transform reads, in order.
	References() []datatype.FieldPath

	// String returns a printable form for diagnostics.
	String() string
}

// IdentityTransform partitions directly by a column value.
type IdentityTransform struct {
	Ref datatype.FieldPath
}

func (t IdentityTransform) Name() string                    { return "identity" }
func (t IdentityTransform) References() []datatype.FieldPath { return []datatype.FieldPath{t.Ref} }
func (t IdentityTransform) String() string                  { return t.Ref.String() }

// BucketTransform partitions by a hash of the column modulo NumBuckets.
type BucketTransform struct {
	NumBuckets int
	Ref        datatype.FieldPath
}

func (t BucketTransform) Name() string                    { return "bucket" }
func (t BucketTransform) References() []datatype.FieldPath { return []datatype.FieldPath{t.Ref} }

func (t BucketTransform) String() string {
	return "bucket(" + strconv.Itoa(t.NumBuckets) + ", " + t.Ref.String() + ")"
}

// unaryTemporal covers the calendar-bucket transforms, which differ only
// in name.
type unaryTemporal struct {
	name string
	Ref  datatype.FieldPath
}

func (t unaryTemporal) Name() string                    { return t.name }
func (t unaryTemporal) References() []datatype.FieldPath { return []datatype.FieldPath{t.Ref} }
func (t unaryTemporal) String() string                  { return t.name + "(" + t.Ref.String() + ")" }

// YearsTransform partitions by the year of a date/timestamp column.
func YearsTransform(ref datatype.FieldPath) Transform { return unaryTemporal{"years", ref} }

// MonthsTransform partitions by the month of a date/timestamp column.
func MonthsTransform(ref datatype.FieldPath) Transform { return unaryTemporal{"months", ref} }

// DaysTransform partitions by the day of a date/timestamp column.
func DaysTransform(ref datatype.FieldPath) Transform { return unaryTemporal{"days", ref} }

// HoursTransform partitions by the hour of a timestamp column.
func HoursTransform(ref datatype.FieldPath) Transform { return unaryTemporal{"hours", ref} }

// ApplyTransform is a named transform with arbitrary column arguments,
// for functions this layer does not know about. The catalog decides
// whether it can honor the transform.
type ApplyTransform struct {
	Func string
	Refs []datatype.FieldPath
}

func (t ApplyTransform) Name() string                    { return t.Func }
func (t ApplyTransform) References() []datatype.FieldPath { return t.Refs }

func (t ApplyTransform) String() string {
	parts := make([]string, len(t.Refs))
	for i, r := range t.Refs {
		parts[i] = r.String()
	}
	return t.Func + "(" + strings.Join(parts, ", ") + ")"
}

// ReferencedPaths accumulates the distinct field paths referenced by a
// transform list, preserving first-seen order. Duplicates collapse so a
// path shared by several transforms is checked once.
func ReferencedPaths(transforms []Transform) []datatype.FieldPath {
	var paths []datatype.FieldPath
	seen := make(map[string]bool)
	for _, t := range transforms {
		for _, ref := range t.References() {
			key := strings.Join(ref, "\x00")
			if seen[key] {
				continue
			}
			seen[key] = true
			paths = append(paths, ref)
		}
	}
	return paths
}
