// Package command defines the typed, immutable plan nodes for Calyx
// DDL/DML operations: writes, table definitions, table changes, row
// mutations, and namespace administration. Every command is a value;
// rewriting a command (replacing a child, rewriting partitioning) produces
// a new sibling value and never mutates the original. A command's Resolved
// state is derived purely from its own fields and its children, so it is
// safe to recompute at any point of the analysis loop.
package command

import (
	"github.com/calyxdb/calyx/internal/plan"
)

// Command is a plan node representing one DDL or DML operation. Most
// commands produce no rows and declare an empty output schema; the
// describe/show commands declare small constant schemas.
type Command interface {
	plan.LogicalPlan
}

// leaf provides the zero-child, zero-output base for fixed-shape commands.
type leaf struct{}

func (leaf) Children() []plan.LogicalPlan { return nil }
func (leaf) Output() []plan.Attribute     { return nil }
func (leaf) Resolved() bool               { return true }
