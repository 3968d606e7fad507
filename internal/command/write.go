package command

import (
	"github.com/calyxdb/calyx/internal/plan"
)

// WriteCommand is the shared shape of the three row-writing commands:
// a target relation, a source query, free-form write options, and a flag
// recording whether column matching was by name or by position. Column
// reordering itself happens in an earlier rewrite stage; by the time a
// write command exists, the query output is already aligned with the
// table.
type WriteCommand interface {
	Command

	// TargetTable returns the relation being written to.
	TargetTable() plan.NamedRelation

	// SourceQuery returns the query producing the rows to write.
	SourceQuery() plan.LogicalPlan

	// Options returns the write options. Never nil.
	Options() map[string]string
}

// -----------------------------------------------------------------------------
// AppendData
// -----------------------------------------------------------------------------

// AppendData appends the query's rows to the target table.
type AppendData struct {
	Table        plan.NamedRelation
	Query        plan.LogicalPlan
	WriteOptions map[string]string
	IsByName     bool
}

// AppendDataByName builds an append whose columns were matched by name.
func AppendDataByName(table plan.NamedRelation, query plan.LogicalPlan, options map[string]string) AppendData {
	return AppendData{Table: table, Query: query, WriteOptions: emptyIfNil(options), IsByName: true}
}

// AppendDataByPosition builds an append whose columns were matched by position.
func AppendDataByPosition(table plan.NamedRelation, query plan.LogicalPlan, options map[string]string) AppendData {
	return AppendData{Table: table, Query: query, WriteOptions: emptyIfNil(options), IsByName: false}
}

func (a AppendData) Children() []plan.LogicalPlan  { return []plan.LogicalPlan{a.Query} }
func (a AppendData) Output() []plan.Attribute      { return nil }
func (a AppendData) Resolved() bool                { return OutputResolved(a.Query, a.Table) }
func (a AppendData) TargetTable() plan.NamedRelation { return a.Table }
func (a AppendData) SourceQuery() plan.LogicalPlan { return a.Query }
func (a AppendData) Options() map[string]string    { return a.WriteOptions }

// -----------------------------------------------------------------------------
// OverwriteByExpression
// -----------------------------------------------------------------------------

// OverwriteByExpression replaces the rows matching DeleteExpr with the
// query's rows. DeleteExpr true means a full overwrite.
type OverwriteByExpression struct {
	Table        plan.NamedRelation
	Query        plan.LogicalPlan
	DeleteExpr   plan.Expression
	WriteOptions map[string]string
	IsByName     bool
}

// OverwriteByExpressionByName builds an overwrite whose columns were matched by name.
func OverwriteByExpressionByName(table plan.NamedRelation, deleteExpr plan.Expression, query plan.LogicalPlan, options map[string]string) OverwriteByExpression {
	return OverwriteByExpression{Table: table, Query: query, DeleteExpr: deleteExpr, WriteOptions: emptyIfNil(options), IsByName: true}
}

// OverwriteByExpressionByPosition builds an overwrite whose columns were matched by position.
func OverwriteByExpressionByPosition(table plan.NamedRelation, deleteExpr plan.Expression, query plan.LogicalPlan, options map[string]string) OverwriteByExpression {
	return OverwriteByExpression{Table: table, Query: query, DeleteExpr: deleteExpr, WriteOptions: emptyIfNil(options), IsByName: false}
}

func (o OverwriteByExpression) Children() []plan.LogicalPlan { return []plan.LogicalPlan{o.Query} }
func (o OverwriteByExpression) Output() []plan.Attribute     { return nil }

// Resolved additionally requires the delete filter itself to be resolved.
func (o OverwriteByExpression) Resolved() bool {
	return OutputResolved(o.Query, o.Table) && o.DeleteExpr != nil && o.DeleteExpr.Resolved()
}

func (o OverwriteByExpression) TargetTable() plan.NamedRelation { return o.Table }
func (o OverwriteByExpression) SourceQuery() plan.LogicalPlan   { return o.Query }
func (o OverwriteByExpression) Options() map[string]string      { return o.WriteOptions }

// -----------------------------------------------------------------------------
// OverwritePartitionsDynamic
// -----------------------------------------------------------------------------

// OverwritePartitionsDynamic replaces exactly the partitions touched by
// the query's rows.
type OverwritePartitionsDynamic struct {
	Table        plan.NamedRelation
	Query        plan.LogicalPlan
	WriteOptions map[string]string
	IsByName     bool
}

// OverwritePartitionsDynamicByName builds a dynamic overwrite whose columns were matched by name.
func OverwritePartitionsDynamicByName(table plan.NamedRelation, query plan.LogicalPlan, options map[string]string) OverwritePartitionsDynamic {
	return OverwritePartitionsDynamic{Table: table, Query: query, WriteOptions: emptyIfNil(options), IsByName: true}
}

// OverwritePartitionsDynamicByPosition builds a dynamic overwrite whose columns were matched by position.
func OverwritePartitionsDynamicByPosition(table plan.NamedRelation, query plan.LogicalPlan, options map[string]string) OverwritePartitionsDynamic {
	return OverwritePartitionsDynamic{Table: table, Query: query, WriteOptions: emptyIfNil(options), IsByName: false}
}

func (o OverwritePartitionsDynamic) Children() []plan.LogicalPlan { return []plan.LogicalPlan{o.Query} }
func (o OverwritePartitionsDynamic) Output() []plan.Attribute     { return nil }
func (o OverwritePartitionsDynamic) Resolved() bool               { return OutputResolved(o.Query, o.Table) }
func (o OverwritePartitionsDynamic) TargetTable() plan.NamedRelation { return o.Table }
func (o OverwritePartitionsDynamic) SourceQuery() plan.LogicalPlan { return o.Query }
func (o OverwritePartitionsDynamic) Options() map[string]string   { return o.WriteOptions }

func emptyIfNil(options map[string]string) map[string]string {
	if options == nil {
		return map[string]string{}
	}
	return options
}
