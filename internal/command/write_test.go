package command

import (
	"testing"

	"github.com/calyxdb/calyx/internal/datatype"
	"github.com/calyxdb/calyx/internal/plan"
)

func writeTarget() plan.Table {
	return plan.Table{
		Ident: plan.Identifier{"t"},
		Schema: datatype.StructType{Fields: []datatype.StructField{
			{Name: "id", Type: datatype.Int64},
		}},
	}
}

func matchingQuery() plan.LocalRelation {
	return plan.LocalRelation{Attrs: []plan.Attribute{
		{Name: "id", Type: datatype.Int64},
	}}
}

func TestAppendData(t *testing.T) {
	byName := AppendDataByName(writeTarget(), matchingQuery(), nil)
	if !byName.IsByName {
		t.Error("AppendDataByName() IsByName = false")
	}
	if byName.Options() == nil {
		t.Error("Options() = nil, want empty map for nil input")
	}
	if !byName.Resolved() {
		t.Error("Resolved() = false with a compatible query")
	}

	byPos := AppendDataByPosition(writeTarget(), matchingQuery(), map[string]string{"mode": "fast"})
	if byPos.IsByName {
		t.Error("AppendDataByPosition() IsByName = true")
	}
	if byPos.Options()["mode"] != "fast" {
		t.Error("Options() dropped the provided entries")
	}

	incompatible := AppendDataByName(writeTarget(), plan.LocalRelation{Attrs: []plan.Attribute{
		{Name: "id", Type: datatype.String},
	}}, nil)
	if incompatible.Resolved() {
		t.Error("Resolved() = true with an incompatible query")
	}
}

func TestOverwriteByExpressionResolved(t *testing.T) {
	tests := []struct {
		name string
		o    OverwriteByExpression
		want bool
	}{
		{
			"resolved_filter",
			OverwriteByExpressionByName(writeTarget(), plan.Raw{Text: "true"}, matchingQuery(), nil),
			true,
		},
		{
			"unresolved_filter",
			OverwriteByExpressionByName(writeTarget(), plan.Raw{Text: "region = ?", Unresolved: true}, matchingQuery(), nil),
			false,
		},
		{
			"nil_filter",
			OverwriteByExpressionByPosition(writeTarget(), nil, matchingQuery(), nil),
			false,
		},
		{
			"incompatible_query",
			OverwriteByExpressionByName(writeTarget(), plan.Raw{Text: "true"}, plan.LocalRelation{Attrs: []plan.Attribute{
				{Name: "other", Type: datatype.Int64},
			}}, nil),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.o.Resolved(); got != tt.want {
				t.Errorf("Resolved() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverwritePartitionsDynamic(t *testing.T) {
	o := OverwritePartitionsDynamicByName(writeTarget(), matchingQuery(), nil)
	if !o.Resolved() {
		t.Error("Resolved() = false with a compatible query")
	}
	if o.TargetTable().Name() != "t" {
		t.Errorf("TargetTable().Name() = %q, want %q", o.TargetTable().Name(), "t")
	}
	if len(o.Children()) != 1 {
		t.Errorf("Children() len = %d, want 1 (the query)", len(o.Children()))
	}
}
