package command

import (
	"github.com/calyxdb/calyx/internal/plan"
)

// -----------------------------------------------------------------------------
// DeleteFromTable
// -----------------------------------------------------------------------------

// DeleteFromTable removes the rows matching Condition. A nil condition
// deletes every row. The condition may contain correlated subqueries
// (plan.SupportsSubquery); they are planned and evaluated externally.
type DeleteFromTable struct {
	Table     plan.LogicalPlan
	Condition plan.Expression
}

func (d DeleteFromTable) Children() []plan.LogicalPlan { return []plan.LogicalPlan{d.Table} }
func (d DeleteFromTable) Output() []plan.Attribute     { return nil }

func (d DeleteFromTable) Resolved() bool {
	return d.Table.Resolved() && (d.Condition == nil || d.Condition.Resolved())
}

// -----------------------------------------------------------------------------
// UpdateTable
// -----------------------------------------------------------------------------

// UpdateTable applies the assignments to the rows matching Condition.
// A nil condition updates every row. Assignment values and the condition
// may contain correlated subqueries.
type UpdateTable struct {
	Table       plan.LogicalPlan
	Assignments []plan.Assignment
	Condition   plan.Expression
}

func (u UpdateTable) Children() []plan.LogicalPlan { return []plan.LogicalPlan{u.Table} }
func (u UpdateTable) Output() []plan.Attribute     { return nil }

func (u UpdateTable) Resolved() bool {
	return u.Table.Resolved() &&
		plan.AssignmentsResolved(u.Assignments) &&
		(u.Condition == nil || u.Condition.Resolved())
}

// -----------------------------------------------------------------------------
// MergeIntoTable
// -----------------------------------------------------------------------------

// MergeIntoTable joins source rows to target rows via MergeCondition and
// applies the first matching action per row. Action order is evaluation
// priority: for a matched row the matched actions are scanned in order
// and the first whose condition holds (or which has no condition) fires;
// unmatched rows scan the not-matched actions the same way. At most one
// action fires per row.
//
// Resolution does not extend past child resolution: action-level
// condition and assignment checking belongs to the expression layer.
type MergeIntoTable struct {
	Target            plan.LogicalPlan
	Source            plan.LogicalPlan
	MergeCondition    plan.Expression
	MatchedActions    []MergeAction
	NotMatchedActions []MergeAction
}

func (m MergeIntoTable) Children() []plan.LogicalPlan {
	return []plan.LogicalPlan{m.Target, m.Source}
}

func (m MergeIntoTable) Output() []plan.Attribute { return nil }
func (m MergeIntoTable) Resolved() bool           { return plan.ChildrenResolved(m) }

// -----------------------------------------------------------------------------
// Merge actions
// -----------------------------------------------------------------------------

// ActionKind discriminates the merge action variants.
type ActionKind int

const (
	// ActionDelete removes the matched target row.
	ActionDelete ActionKind = iota

	// ActionUpdate applies assignments to the matched target row.
	ActionUpdate

	// ActionInsert inserts a new row from the source; only meaningful in
	// the not-matched action list.
	ActionInsert
)

// String returns the string representation of an ActionKind.
func (k ActionKind) String() string {
	switch k {
	case ActionDelete:
		return "Delete"
	case ActionUpdate:
		return "Update"
	case ActionInsert:
		return "Insert"
	default:
		return "Unknown"
	}
}

// MergeAction is one entry of a merge command's action lists. A nil
// Condition means the action always applies when reached.
type MergeAction interface {
	// Kind returns the action discriminator.
	Kind() ActionKind

	// Condition returns the action's guard, or nil for unconditional.
	Condition() plan.Expression
}

// DeleteAction removes the matched row.
type DeleteAction struct {
	Cond plan.Expression
}

func (a DeleteAction) Kind() ActionKind           { return ActionDelete }
func (a DeleteAction) Condition() plan.Expression { return a.Cond }

// UpdateAction applies the assignments to the matched row.
type UpdateAction struct {
	Cond        plan.Expression
	Assignments []plan.Assignment
}

func (a UpdateAction) Kind() ActionKind           { return ActionUpdate }
func (a UpdateAction) Condition() plan.Expression { return a.Cond }

// InsertAction inserts a new row built from the assignments.
type InsertAction struct {
	Cond        plan.Expression
	Assignments []plan.Assignment
}

func (a InsertAction) Kind() ActionKind           { return ActionInsert }
func (a InsertAction) Condition() plan.Expression { return a.Cond }

// FirstMatching selects the action that fires for one row: the actions
// are scanned in order and the scan short-circuits at the first whose
// condition evaluates true or is absent. eval is the external expression
// evaluator; conditions after the firing action are never evaluated.
func FirstMatching(actions []MergeAction, eval func(plan.Expression) (bool, error)) (MergeAction, bool, error) {
	for _, action := range actions {
		cond := action.Condition()
		if cond == nil {
			return action, true, nil
		}
		ok, err := eval(cond)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return action, true, nil
		}
	}
	return nil, false, nil
}
