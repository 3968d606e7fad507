package planfile

import (
	"sort"
	"strconv"
	"strings"

	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/command"
	"github.com/calyxdb/calyx/internal/datatype"
	"github.com/calyxdb/calyx/internal/plan"
)

// buildCommand turns one plan file entry into a command value. Relations
// are left unresolved; the analyzer binds them against a catalog later.
func buildCommand(e Entry) (plan.LogicalPlan, error) {
	switch e.Op {
	case "create-table":
		return buildCreateTable(e)
	case "replace-table":
		return buildReplaceTable(e)
	case "drop-table":
		ident, err := parseIdentifier(e.Table)
		if err != nil {
			return nil, err
		}
		return command.DropTable{Ident: ident, IfExists: e.IfExists}, nil
	case "rename-table":
		ident, err := parseIdentifier(e.Table)
		if err != nil {
			return nil, err
		}
		if e.To == "" {
			return nil, cerr.New(cerr.ErrPlanFileInvalid, "rename-table requires to")
		}
		return command.RenameTable{Ident: ident, NewName: e.To}, nil
	case "add-columns":
		return buildAddColumns(e)
	case "alter-column":
		return buildAlterColumn(e)
	case "rename-column":
		return buildRenameColumn(e)
	case "drop-columns":
		return buildDropColumns(e)
	case "set-properties":
		target, err := alterTarget(e.Table)
		if err != nil {
			return nil, err
		}
		return command.AlterTableSetProperties{AlterTable: target, Properties: e.Properties}, nil
	case "unset-properties":
		target, err := alterTarget(e.Table)
		if err != nil {
			return nil, err
		}
		if len(e.Keys) == 0 {
			return nil, cerr.New(cerr.ErrPlanFileInvalid, "unset-properties requires keys")
		}
		return command.AlterTableUnsetProperties{AlterTable: target, Keys: e.Keys, IfExists: e.IfExists}, nil
	case "set-location":
		target, err := alterTarget(e.Table)
		if err != nil {
			return nil, err
		}
		if e.Location == "" {
			return nil, cerr.New(cerr.ErrPlanFileInvalid, "set-location requires location")
		}
		return command.AlterTableSetLocation{AlterTable: target, Partition: e.Partition, Location: e.Location}, nil
	case "delete-from":
		return buildDeleteFrom(e)
	case "update":
		return buildUpdate(e)
	case "create-namespace":
		ns, err := parseIdentifier(e.Namespace)
		if err != nil {
			return nil, err
		}
		return command.CreateNamespace{Namespace: ns, IfNotExists: e.IfNotExists, Properties: e.Properties}, nil
	case "drop-namespace":
		ns, err := parseIdentifier(e.Namespace)
		if err != nil {
			return nil, err
		}
		return command.DropNamespace{Namespace: ns, IfExists: e.IfExists, Cascade: e.Cascade}, nil
	case "set-namespace-properties":
		ns, err := parseIdentifier(e.Namespace)
		if err != nil {
			return nil, err
		}
		return command.AlterNamespaceSetProperties{Namespace: ns, Properties: e.Properties}, nil
	case "comment-on-table":
		ident, err := parseIdentifier(e.Table)
		if err != nil {
			return nil, err
		}
		comment := ""
		if e.Comment != nil {
			comment = *e.Comment
		}
		return command.CommentOnTable{Ident: ident, Comment: comment}, nil
	case "comment-on-namespace":
		ns, err := parseIdentifier(e.Namespace)
		if err != nil {
			return nil, err
		}
		comment := ""
		if e.Comment != nil {
			comment = *e.Comment
		}
		return command.CommentOnNamespace{Namespace: ns, Comment: comment}, nil
	case "":
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "entry is missing op")
	default:
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "unknown op")
	}
}

func buildCreateTable(e Entry) (plan.LogicalPlan, error) {
	ident, err := parseIdentifier(e.Table)
	if err != nil {
		return nil, err
	}
	partitioning, err := parseTransforms(e.PartitionBy)
	if err != nil {
		return nil, err
	}
	if e.Query != "" {
		if len(e.Columns) > 0 {
			return nil, cerr.New(cerr.ErrPlanFileInvalid, "create-table takes columns or query, not both")
		}
		return command.CreateTableAsSelect{
			Ident:       ident,
			Query:       plan.UnresolvedQuery{Text: e.Query},
			PartitionBy: partitioning,
			Properties:  e.Properties,
			IfNotExists: e.IfNotExists,
		}, nil
	}
	schema, err := parseSchema(e.Columns)
	if err != nil {
		return nil, err
	}
	return command.CreateTable{
		Ident:       ident,
		Schema:      schema,
		PartitionBy: partitioning,
		Properties:  e.Properties,
		IfNotExists: e.IfNotExists,
	}, nil
}

func buildReplaceTable(e Entry) (plan.LogicalPlan, error) {
	ident, err := parseIdentifier(e.Table)
	if err != nil {
		return nil, err
	}
	partitioning, err := parseTransforms(e.PartitionBy)
	if err != nil {
		return nil, err
	}
	if e.Query != "" {
		if len(e.Columns) > 0 {
			return nil, cerr.New(cerr.ErrPlanFileInvalid, "replace-table takes columns or query, not both")
		}
		return command.ReplaceTableAsSelect{
			Ident:       ident,
			Query:       plan.UnresolvedQuery{Text: e.Query},
			PartitionBy: partitioning,
			Properties:  e.Properties,
			OrCreate:    e.OrCreate,
		}, nil
	}
	schema, err := parseSchema(e.Columns)
	if err != nil {
		return nil, err
	}
	return command.ReplaceTable{
		Ident:       ident,
		Schema:      schema,
		PartitionBy: partitioning,
		Properties:  e.Properties,
		OrCreate:    e.OrCreate,
	}, nil
}

func buildAddColumns(e Entry) (plan.LogicalPlan, error) {
	target, err := alterTarget(e.Table)
	if err != nil {
		return nil, err
	}
	if len(e.Columns) == 0 {
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "add-columns requires columns")
	}
	specs := make([]command.AddColumnSpec, 0, len(e.Columns))
	for _, col := range e.Columns {
		colType, err := parseColumnType(col)
		if err != nil {
			return nil, err
		}
		position, err := parsePosition(col.Position)
		if err != nil {
			return nil, err
		}
		specs = append(specs, command.AddColumnSpec{
			Path:     parsePath(col.Name),
			Type:     colType,
			Nullable: col.Nullable == nil || *col.Nullable,
			Comment:  col.Comment,
			Position: position,
		})
	}
	return command.AlterTableAddColumns{AlterTable: target, Columns: specs}, nil
}

func buildAlterColumn(e Entry) (plan.LogicalPlan, error) {
	target, err := alterTarget(e.Table)
	if err != nil {
		return nil, err
	}
	if e.Column == "" {
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "alter-column requires column")
	}
	cmd := command.AlterTableAlterColumn{
		AlterTable:  target,
		Path:        parsePath(e.Column),
		NewNullable: e.Nullable,
		NewComment:  e.Comment,
	}
	if e.Type != "" {
		newType, err := datatype.Parse(e.Type)
		if err != nil {
			return nil, cerr.Wrap(cerr.ErrPlanFileInvalid, err, "invalid column type").
				WithColumn(e.Column)
		}
		cmd.NewType = newType
	}
	if e.Position != "" {
		position, err := parsePosition(e.Position)
		if err != nil {
			return nil, err
		}
		cmd.NewPosition = position
	}
	return cmd, nil
}

func buildRenameColumn(e Entry) (plan.LogicalPlan, error) {
	target, err := alterTarget(e.Table)
	if err != nil {
		return nil, err
	}
	if e.Column == "" || e.To == "" {
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "rename-column requires column and to")
	}
	return command.AlterTableRenameColumn{
		AlterTable: target,
		Path:       parsePath(e.Column),
		NewName:    e.To,
	}, nil
}

func buildDropColumns(e Entry) (plan.LogicalPlan, error) {
	target, err := alterTarget(e.Table)
	if err != nil {
		return nil, err
	}
	if len(e.Keys) == 0 && len(e.Columns) == 0 {
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "drop-columns requires columns")
	}
	var paths []datatype.FieldPath
	for _, k := range e.Keys {
		paths = append(paths, parsePath(k))
	}
	for _, col := range e.Columns {
		paths = append(paths, parsePath(col.Name))
	}
	return command.AlterTableDropColumns{AlterTable: target, Paths: paths}, nil
}

func buildDeleteFrom(e Entry) (plan.LogicalPlan, error) {
	ident, err := parseIdentifier(e.Table)
	if err != nil {
		return nil, err
	}
	var condition plan.Expression
	if e.Where != "" {
		condition = plan.Raw{Text: e.Where, Unresolved: true}
	}
	return command.DeleteFromTable{
		Table:     plan.UnresolvedRelation{Ident: ident},
		Condition: condition,
	}, nil
}

func buildUpdate(e Entry) (plan.LogicalPlan, error) {
	ident, err := parseIdentifier(e.Table)
	if err != nil {
		return nil, err
	}
	if len(e.Set) == 0 {
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "update requires set")
	}

	// Sorted for deterministic assignment order; map entries carry no
	// order of their own.
	targets := make([]string, 0, len(e.Set))
	for t := range e.Set {
		targets = append(targets, t)
	}
	sort.Strings(targets)

	assignments := make([]plan.Assignment, 0, len(targets))
	for _, t := range targets {
		assignments = append(assignments, plan.Assignment{
			Target: parsePath(t),
			Value:  plan.Raw{Text: e.Set[t], Unresolved: true},
		})
	}

	var condition plan.Expression
	if e.Where != "" {
		condition = plan.Raw{Text: e.Where, Unresolved: true}
	}
	return command.UpdateTable{
		Table:       plan.UnresolvedRelation{Ident: ident},
		Assignments: assignments,
		Condition:   condition,
	}, nil
}

// -----------------------------------------------------------------------------
// Shared parsing helpers
// -----------------------------------------------------------------------------

func alterTarget(table string) (command.AlterTable, error) {
	ident, err := parseIdentifier(table)
	if err != nil {
		return command.AlterTable{}, err
	}
	return command.AlterTable{Table: plan.UnresolvedRelation{Ident: ident}}, nil
}

func parseIdentifier(s string) (plan.Identifier, error) {
	if s == "" {
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "entry is missing a table or namespace identifier")
	}
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if p == "" {
			return nil, cerr.New(cerr.ErrPlanFileInvalid, "identifier has an empty part").
				With("identifier", s)
		}
	}
	return plan.Identifier(parts), nil
}

func parsePath(s string) datatype.FieldPath {
	return datatype.FieldPath(strings.Split(s, "."))
}

func parseSchema(columns []ColumnSpec) (datatype.StructType, error) {
	if len(columns) == 0 {
		return datatype.StructType{}, cerr.New(cerr.ErrPlanFileInvalid, "table definition requires columns")
	}
	var schema datatype.StructType
	for _, col := range columns {
		colType, err := parseColumnType(col)
		if err != nil {
			return datatype.StructType{}, err
		}
		if col.Position != "" {
			return datatype.StructType{}, cerr.New(cerr.ErrPlanFileInvalid,
				"position is only valid in add-columns").
				WithColumn(col.Name)
		}
		schema.Fields = append(schema.Fields, datatype.StructField{
			Name:     col.Name,
			Type:     colType,
			Nullable: col.Nullable == nil || *col.Nullable,
			Comment:  col.Comment,
		})
	}
	return schema, nil
}

func parseColumnType(col ColumnSpec) (datatype.DataType, error) {
	if col.Name == "" {
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "column is missing a name")
	}
	if col.Type == "" {
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "column is missing a type").
			WithColumn(col.Name)
	}
	colType, err := datatype.Parse(col.Type)
	if err != nil {
		return nil, cerr.Wrap(cerr.ErrPlanFileInvalid, err, "invalid column type").
			WithColumn(col.Name)
	}
	return colType, nil
}

// parsePosition reads "first" or "after:<column>"; empty means none.
func parsePosition(s string) (*change.ColumnPosition, error) {
	if s == "" {
		return nil, nil
	}
	if s == "first" {
		return change.First(), nil
	}
	if rest, ok := strings.CutPrefix(s, "after:"); ok && rest != "" {
		return change.After(rest), nil
	}
	return nil, cerr.New(cerr.ErrPlanFileInvalid, `position must be "first" or "after:<column>"`).
		With("position", s)
}

// parseTransforms reads partition expressions: a bare column name,
// years/months/days/hours(col), bucket(n, col), or any other
// name(col, ...) which passes through as an apply transform.
func parseTransforms(exprs []string) ([]plan.Transform, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	transforms := make([]plan.Transform, 0, len(exprs))
	for _, expr := range exprs {
		t, err := parseTransform(expr)
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, t)
	}
	return transforms, nil
}

func parseTransform(expr string) (plan.Transform, error) {
	expr = strings.TrimSpace(expr)
	open := strings.IndexByte(expr, '(')
	if open < 0 {
		if expr == "" {
			return nil, cerr.New(cerr.ErrPlanFileInvalid, "empty partition expression")
		}
		return plan.IdentityTransform{Ref: parsePath(expr)}, nil
	}
	if !strings.HasSuffix(expr, ")") {
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "unterminated partition expression").
			With("expression", expr)
	}

	name := strings.TrimSpace(expr[:open])
	var args []string
	for _, a := range strings.Split(expr[open+1:len(expr)-1], ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			return nil, cerr.New(cerr.ErrPlanFileInvalid, "partition expression has an empty argument").
				With("expression", expr)
		}
		args = append(args, a)
	}
	if len(args) == 0 {
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "partition expression has no arguments").
			With("expression", expr)
	}

	switch name {
	case "identity":
		if len(args) != 1 {
			return nil, transformArity(expr, name, 1)
		}
		return plan.IdentityTransform{Ref: parsePath(args[0])}, nil
	case "years", "months", "days", "hours":
		if len(args) != 1 {
			return nil, transformArity(expr, name, 1)
		}
		ref := parsePath(args[0])
		switch name {
		case "years":
			return plan.YearsTransform(ref), nil
		case "months":
			return plan.MonthsTransform(ref), nil
		case "days":
			return plan.DaysTransform(ref), nil
		default:
			return plan.HoursTransform(ref), nil
		}
	case "bucket":
		if len(args) != 2 {
			return nil, transformArity(expr, name, 2)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return nil, cerr.New(cerr.ErrPlanFileInvalid, "bucket count must be a positive integer").
				With("expression", expr)
		}
		return plan.BucketTransform{NumBuckets: n, Ref: parsePath(args[1])}, nil
	default:
		refs := make([]datatype.FieldPath, len(args))
		for i, a := range args {
			refs[i] = parsePath(a)
		}
		return plan.ApplyTransform{Func: name, Refs: refs}, nil
	}
}

func transformArity(expr, name string, want int) error {
	return cerr.New(cerr.ErrPlanFileInvalid, "wrong number of arguments for partition transform").
		With("transform", name).
		With("want", want).
		With("expression", expr)
}
