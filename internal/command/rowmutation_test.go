package command

import (
	"errors"
	"testing"

	"github.com/calyxdb/calyx/internal/datatype"
	"github.com/calyxdb/calyx/internal/plan"
)

func resolvedTable() plan.Table {
	return plan.Table{
		Ident: plan.Identifier{"t"},
		Schema: datatype.StructType{Fields: []datatype.StructField{
			{Name: "id", Type: datatype.Int64},
		}},
	}
}

func TestDeleteFromTableResolved(t *testing.T) {
	tests := []struct {
		name string
		d    DeleteFromTable
		want bool
	}{
		{"no_condition", DeleteFromTable{Table: resolvedTable()}, true},
		{
			"resolved_condition",
			DeleteFromTable{Table: resolvedTable(), Condition: plan.Raw{Text: "id > 5"}},
			true,
		},
		{
			"unresolved_condition",
			DeleteFromTable{Table: resolvedTable(), Condition: plan.Raw{Text: "id > 5", Unresolved: true}},
			false,
		},
		{
			"unresolved_table",
			DeleteFromTable{Table: plan.UnresolvedRelation{Ident: plan.Identifier{"t"}}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Resolved(); got != tt.want {
				t.Errorf("Resolved() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUpdateTableResolved(t *testing.T) {
	assign := plan.Assignment{
		Target: datatype.FieldPath{"id"},
		Value:  plan.Literal{Value: 1, Type: datatype.Int64},
	}
	unresolvedAssign := plan.Assignment{
		Target: datatype.FieldPath{"id"},
		Value:  plan.Raw{Text: "next_id()", Unresolved: true},
	}

	tests := []struct {
		name string
		u    UpdateTable
		want bool
	}{
		{
			"resolved_assignments_no_condition",
			UpdateTable{Table: resolvedTable(), Assignments: []plan.Assignment{assign}},
			true,
		},
		{
			"unresolved_assignment",
			UpdateTable{Table: resolvedTable(), Assignments: []plan.Assignment{assign, unresolvedAssign}},
			false,
		},
		{
			"unresolved_condition",
			UpdateTable{
				Table:       resolvedTable(),
				Assignments: []plan.Assignment{assign},
				Condition:   plan.Raw{Text: "id = 1", Unresolved: true},
			},
			false,
		},
		{
			"unresolved_table",
			UpdateTable{Table: plan.UnresolvedRelation{Ident: plan.Identifier{"t"}}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.u.Resolved(); got != tt.want {
				t.Errorf("Resolved() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeIntoTableResolved(t *testing.T) {
	m := MergeIntoTable{
		Target:         resolvedTable(),
		Source:         plan.LocalRelation{Attrs: []plan.Attribute{{Name: "id", Type: datatype.Int64}}},
		MergeCondition: plan.Raw{Text: "t.id = s.id"},
	}
	if !m.Resolved() {
		t.Error("Resolved() = false with resolved children")
	}

	m.Source = plan.UnresolvedQuery{Text: "select * from s"}
	if m.Resolved() {
		t.Error("Resolved() = true with an unresolved source")
	}
}

// condExpr is a guard whose evaluation outcome the test controls.
type condExpr struct{ name string }

func (c condExpr) Resolved() bool { return true }
func (c condExpr) String() string { return c.name }

func TestFirstMatching(t *testing.T) {
	falseCond := condExpr{"false"}
	trueCond := condExpr{"true"}
	neverCond := condExpr{"never"}

	eval := func(evaluated *[]string) func(plan.Expression) (bool, error) {
		return func(e plan.Expression) (bool, error) {
			*evaluated = append(*evaluated, e.String())
			return e.String() == "true", nil
		}
	}

	t.Run("first_matching_condition_fires", func(t *testing.T) {
		var evaluated []string
		actions := []MergeAction{
			UpdateAction{Cond: falseCond},
			DeleteAction{Cond: trueCond},
			InsertAction{Cond: neverCond},
		}

		action, ok, err := FirstMatching(actions, eval(&evaluated))
		if err != nil {
			t.Fatalf("FirstMatching() error = %v", err)
		}
		if !ok || action.Kind() != ActionDelete {
			t.Fatalf("FirstMatching() = %v, %v, want the delete action", action, ok)
		}
		// Conditions after the firing action are never evaluated.
		if len(evaluated) != 2 {
			t.Errorf("evaluated = %v, want the first two conditions only", evaluated)
		}
	})

	t.Run("conditional_update_shadows_unconditional_delete", func(t *testing.T) {
		var evaluated []string
		actions := []MergeAction{
			UpdateAction{Cond: trueCond},
			DeleteAction{},
		}

		action, ok, err := FirstMatching(actions, eval(&evaluated))
		if err != nil {
			t.Fatalf("FirstMatching() error = %v", err)
		}
		if !ok || action.Kind() != ActionUpdate {
			t.Errorf("FirstMatching() = %v, want the earlier update action", action)
		}
	})

	t.Run("unconditional_action_fires_without_evaluation", func(t *testing.T) {
		var evaluated []string
		actions := []MergeAction{DeleteAction{}, UpdateAction{Cond: trueCond}}

		action, ok, err := FirstMatching(actions, eval(&evaluated))
		if err != nil {
			t.Fatalf("FirstMatching() error = %v", err)
		}
		if !ok || action.Kind() != ActionDelete {
			t.Errorf("FirstMatching() = %v, want the unconditional delete", action)
		}
		if len(evaluated) != 0 {
			t.Errorf("evaluated = %v, want none", evaluated)
		}
	})

	t.Run("no_action_fires", func(t *testing.T) {
		var evaluated []string
		actions := []MergeAction{UpdateAction{Cond: falseCond}}

		action, ok, err := FirstMatching(actions, eval(&evaluated))
		if err != nil {
			t.Fatalf("FirstMatching() error = %v", err)
		}
		if ok || action != nil {
			t.Errorf("FirstMatching() = %v, %v, want no action", action, ok)
		}
	})

	t.Run("evaluation_error_propagates", func(t *testing.T) {
		wantErr := errors.New("boom")
		actions := []MergeAction{UpdateAction{Cond: falseCond}}

		_, _, err := FirstMatching(actions, func(plan.Expression) (bool, error) {
			return false, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("FirstMatching() error = %v, want %v", err, wantErr)
		}
	})
}
