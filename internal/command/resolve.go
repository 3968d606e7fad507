package command

import (
	"github.com/calyxdb/calyx/internal/datatype"
	"github.com/calyxdb/calyx/internal/plan"
)

// OutputResolved decides whether a source query's output schema is
// structurally compatible with a target table, attribute by attribute.
// It is a pure predicate: incompatibility yields false, never an error;
// the outer analyzer reports the mismatch to the user (see Mismatches).
//
// Rules, in order:
//   - a relation that skips schema resolution accepts anything;
//   - both the table and the query must themselves be resolved;
//   - the outputs must have the same length;
//   - for each positional pair, names must match exactly (case policy is
//     owned by the catalog naming layer), types must be write-compatible
//     (container nullability may widen, never narrow), and the target
//     column must be nullable or the source column non-nullable.
func OutputResolved(query plan.LogicalPlan, table plan.NamedRelation) bool {
	if table.SkipSchemaResolution() {
		return true
	}
	if !table.Resolved() || !query.Resolved() {
		return false
	}

	in := query.Output()
	out := table.Output()
	if len(in) != len(out) {
		return false
	}

	for i := range in {
		if !attributeCompatible(in[i], out[i]) {
			return false
		}
	}
	return true
}

func attributeCompatible(in, out plan.Attribute) bool {
	if in.Name != out.Name {
		return false
	}
	if !datatype.EqualIgnoreCompatibleNullability(in.Type, out.Type) {
		return false
	}
	// Writing a nullable source into a non-null column is the one
	// top-level nullability combination that cannot be allowed.
	return out.Nullable || !in.Nullable
}

// Mismatch describes one attribute-level incompatibility between a source
// query and a target table, for user-facing schema-mismatch reporting.
type Mismatch struct {
	Position int
	Source   plan.Attribute
	Target   plan.Attribute
	Reason   string
}

// Mismatches explains why OutputResolved returned false, pairing each
// offending position with its source and target attributes. It returns
// nil when the schemas are compatible or when either side is still
// unresolved (there is nothing attribute-level to report yet).
func Mismatches(query plan.LogicalPlan, table plan.NamedRelation) []Mismatch {
	if table.SkipSchemaResolution() || !table.Resolved() || !query.Resolved() {
		return nil
	}

	in := query.Output()
	out := table.Output()
	if len(in) != len(out) {
		return []Mismatch{{
			Position: -1,
			Reason:   "column count differs between source and target",
		}}
	}

	var mismatches []Mismatch
	for i := range in {
		switch {
		case in[i].Name != out[i].Name:
			mismatches = append(mismatches, Mismatch{
				Position: i, Source: in[i], Target: out[i],
				Reason: "column name differs",
			})
		case !datatype.EqualIgnoreCompatibleNullability(in[i].Type, out[i].Type):
			mismatches = append(mismatches, Mismatch{
				Position: i, Source: in[i], Target: out[i],
				Reason: "column type is incompatible",
			})
		case !out[i].Nullable && in[i].Nullable:
			mismatches = append(mismatches, Mismatch{
				Position: i, Source: in[i], Target: out[i],
				Reason: "cannot write nullable values into non-null column",
			})
		}
	}
	return mismatches
}
