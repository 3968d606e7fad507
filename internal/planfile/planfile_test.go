package planfile

import (
	"strings"
	"testing"

	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/command"
	"github.com/calyxdb/calyx/internal/datatype"
	"github.com/calyxdb/calyx/internal/plan"
)

func parseOne(t *testing.T, entry string) plan.LogicalPlan {
	t.Helper()
	doc := "version: 1\ncommands:\n" + entry
	commands, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(commands) != 1 {
		t.Fatalf("Parse() len = %d, want 1", len(commands))
	}
	return commands[0]
}

func TestParseCreateTable(t *testing.T) {
	cmd := parseOne(t, `
  - op: create-table
    table: prod.events
    ifNotExists: true
    partitionBy: ["days(ts)", "bucket(16, id)", "region"]
    properties:
      owner: data
    columns:
      - name: id
        type: int64
        nullable: false
      - name: ts
        type: timestamp
      - name: region
        type: string
        comment: two-letter code
`)

	ct, ok := cmd.(command.CreateTable)
	if !ok {
		t.Fatalf("command = %T, want CreateTable", cmd)
	}
	if !ct.Ident.Equal(plan.Identifier{"prod", "events"}) {
		t.Errorf("Ident = %v", ct.Ident)
	}
	if !ct.IfNotExists {
		t.Error("IfNotExists = false")
	}
	if ct.Properties["owner"] != "data" {
		t.Errorf("Properties = %v", ct.Properties)
	}

	if len(ct.Schema.Fields) != 3 {
		t.Fatalf("schema fields = %d, want 3", len(ct.Schema.Fields))
	}
	id := ct.Schema.Fields[0]
	if id.Name != "id" || id.Nullable || !datatype.Equal(id.Type, datatype.Int64) {
		t.Errorf("field id = %+v", id)
	}
	// Nullable defaults to true when omitted.
	if !ct.Schema.Fields[1].Nullable {
		t.Error("nullable default is not true")
	}
	if ct.Schema.Fields[2].Comment != "two-letter code" {
		t.Errorf("comment = %q", ct.Schema.Fields[2].Comment)
	}

	if len(ct.PartitionBy) != 3 {
		t.Fatalf("PartitionBy len = %d, want 3", len(ct.PartitionBy))
	}
	if ct.PartitionBy[0].Name() != "days" {
		t.Errorf("transform 0 = %s", ct.PartitionBy[0].Name())
	}
	bucket, ok := ct.PartitionBy[1].(plan.BucketTransform)
	if !ok || bucket.NumBuckets != 16 {
		t.Errorf("transform 1 = %v, want bucket(16, id)", ct.PartitionBy[1])
	}
	if ct.PartitionBy[2].Name() != "identity" {
		t.Errorf("bare column did not parse as identity: %s", ct.PartitionBy[2].Name())
	}
}

func TestParseCreateTableAsSelect(t *testing.T) {
	cmd := parseOne(t, `
  - op: create-table
    table: analytics.daily
    query: select day, count(*) from events group by day
`)

	ctas, ok := cmd.(command.CreateTableAsSelect)
	if !ok {
		t.Fatalf("command = %T, want CreateTableAsSelect", cmd)
	}
	q, ok := ctas.Query.(plan.UnresolvedQuery)
	if !ok || !strings.HasPrefix(q.Text, "select day") {
		t.Errorf("Query = %+v", ctas.Query)
	}
	if ctas.Resolved() {
		t.Error("Resolved() = true with an unresolved query")
	}
}

func TestParseReplaceTable(t *testing.T) {
	cmd := parseOne(t, `
  - op: replace-table
    table: t
    orCreate: true
    columns:
      - name: id
        type: int64
`)
	rt, ok := cmd.(command.ReplaceTable)
	if !ok {
		t.Fatalf("command = %T, want ReplaceTable", cmd)
	}
	if !rt.OrCreate {
		t.Error("OrCreate = false")
	}
}

func TestParseAlterOps(t *testing.T) {
	t.Run("add_columns", func(t *testing.T) {
		cmd := parseOne(t, `
  - op: add-columns
    table: t
    columns:
      - name: age
        type: int32
        nullable: false
        position: "after:id"
      - name: address.zip
        type: string
        position: first
`)
		add, ok := cmd.(command.AlterTableAddColumns)
		if !ok {
			t.Fatalf("command = %T, want AlterTableAddColumns", cmd)
		}
		changes := add.Changes()
		if len(changes) != 2 {
			t.Fatalf("Changes() len = %d, want 2", len(changes))
		}
		first := changes[0].(change.AddColumn)
		if first.Nullable || first.Position == nil || first.Position.AfterColumn() != "id" {
			t.Errorf("change 0 = %+v", first)
		}
		second := changes[1].(change.AddColumn)
		if !second.Path.Equal(datatype.FieldPath{"address", "zip"}) || !second.Position.IsFirst() {
			t.Errorf("change 1 = %+v", second)
		}
	})

	t.Run("alter_column", func(t *testing.T) {
		cmd := parseOne(t, `
  - op: alter-column
    table: t
    column: age
    type: int64
    nullable: true
    comment: years since birth
`)
		alter, ok := cmd.(command.AlterTableAlterColumn)
		if !ok {
			t.Fatalf("command = %T, want AlterTableAlterColumn", cmd)
		}
		changes := alter.Changes()
		if len(changes) != 3 {
			t.Fatalf("Changes() len = %d, want type+nullability+comment", len(changes))
		}
		if changes[0].Kind() != change.KindUpdateColumnType {
			t.Errorf("changes[0] = %s", changes[0].Kind())
		}
	})

	t.Run("alter_column_position_only", func(t *testing.T) {
		cmd := parseOne(t, `
  - op: alter-column
    table: t
    column: age
    position: first
`)
		alter := cmd.(command.AlterTableAlterColumn)
		changes := alter.Changes()
		if len(changes) != 1 || changes[0].Kind() != change.KindUpdateColumnPosition {
			t.Errorf("Changes() = %v, want one position change", changes)
		}
	})

	t.Run("rename_column", func(t *testing.T) {
		cmd := parseOne(t, `
  - op: rename-column
    table: t
    column: age
    to: years
`)
		rename := cmd.(command.AlterTableRenameColumn)
		if rename.NewName != "years" {
			t.Errorf("NewName = %q", rename.NewName)
		}
	})

	t.Run("drop_columns", func(t *testing.T) {
		cmd := parseOne(t, `
  - op: drop-columns
    table: t
    keys: [age, address.zip]
`)
		drop := cmd.(command.AlterTableDropColumns)
		if len(drop.Paths) != 2 || !drop.Paths[1].Equal(datatype.FieldPath{"address", "zip"}) {
			t.Errorf("Paths = %v", drop.Paths)
		}
	})

	t.Run("set_properties", func(t *testing.T) {
		cmd := parseOne(t, `
  - op: set-properties
    table: t
    properties:
      retention: 90d
`)
		set := cmd.(command.AlterTableSetProperties)
		if set.Properties["retention"] != "90d" {
			t.Errorf("Properties = %v", set.Properties)
		}
	})

	t.Run("set_location", func(t *testing.T) {
		cmd := parseOne(t, `
  - op: set-location
    table: t
    location: s3://bucket/t
`)
		loc := cmd.(command.AlterTableSetLocation)
		changes := loc.Changes()
		sp := changes[0].(change.SetProperty)
		if sp.Key != change.ReservedPropertyLocation || sp.Value != "s3://bucket/t" {
			t.Errorf("change = %+v", sp)
		}
	})
}

func TestParseRowMutations(t *testing.T) {
	t.Run("delete_from", func(t *testing.T) {
		cmd := parseOne(t, `
  - op: delete-from
    table: t
    where: ts < now() - interval '90 days'
`)
		del := cmd.(command.DeleteFromTable)
		if del.Condition == nil || del.Condition.Resolved() {
			t.Errorf("Condition = %+v, want unresolved raw text", del.Condition)
		}
	})

	t.Run("delete_from_without_where", func(t *testing.T) {
		cmd := parseOne(t, `
  - op: delete-from
    table: t
`)
		del := cmd.(command.DeleteFromTable)
		if del.Condition != nil {
			t.Errorf("Condition = %+v, want nil", del.Condition)
		}
	})

	t.Run("update_assignments_sorted", func(t *testing.T) {
		cmd := parseOne(t, `
  - op: update
    table: t
    set:
      zeta: "1"
      alpha: "2"
    where: id = 7
`)
		up := cmd.(command.UpdateTable)
		if len(up.Assignments) != 2 {
			t.Fatalf("Assignments len = %d, want 2", len(up.Assignments))
		}
		if up.Assignments[0].Target.String() != "alpha" || up.Assignments[1].Target.String() != "zeta" {
			t.Errorf("Assignments not sorted by target: %v", up.Assignments)
		}
	})
}

func TestParseNamespaceOps(t *testing.T) {
	cmd := parseOne(t, `
  - op: create-namespace
    namespace: prod.internal
    ifNotExists: true
`)
	ns := cmd.(command.CreateNamespace)
	if !ns.Namespace.Equal(plan.Identifier{"prod", "internal"}) || !ns.IfNotExists {
		t.Errorf("CreateNamespace = %+v", ns)
	}

	cmd = parseOne(t, `
  - op: drop-namespace
    namespace: prod
    cascade: true
`)
	dn := cmd.(command.DropNamespace)
	if !dn.Cascade {
		t.Error("Cascade = false")
	}

	cmd = parseOne(t, `
  - op: comment-on-table
    table: t
    comment: ""
`)
	ct := cmd.(command.CommentOnTable)
	if ct.Comment != "" {
		t.Errorf("Comment = %q, want empty (clears the comment)", ct.Comment)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code cerr.Code
	}{
		{"malformed_yaml", "version: [", cerr.ErrPlanFileParse},
		{
			"unknown_field_rejected",
			"version: 1\ncommands:\n  - op: drop-table\n    table: t\n    tabel: oops\n",
			cerr.ErrPlanFileParse,
		},
		{"wrong_version", "version: 2\ncommands:\n  - op: drop-table\n    table: t\n", cerr.ErrPlanFileInvalid},
		{"no_commands", "version: 1\ncommands: []\n", cerr.ErrPlanFileInvalid},
		{"missing_op", "version: 1\ncommands:\n  - table: t\n", cerr.ErrPlanFileInvalid},
		{"unknown_op", "version: 1\ncommands:\n  - op: explode-table\n    table: t\n", cerr.ErrPlanFileInvalid},
		{"missing_identifier", "version: 1\ncommands:\n  - op: drop-table\n", cerr.ErrPlanFileInvalid},
		{"empty_identifier_part", "version: 1\ncommands:\n  - op: drop-table\n    table: prod..events\n", cerr.ErrPlanFileInvalid},
		{
			"columns_and_query",
			"version: 1\ncommands:\n  - op: create-table\n    table: t\n    query: select 1\n    columns:\n      - name: id\n        type: int64\n",
			cerr.ErrPlanFileInvalid,
		},
		{
			"create_without_columns",
			"version: 1\ncommands:\n  - op: create-table\n    table: t\n",
			cerr.ErrPlanFileInvalid,
		},
		{
			"bad_column_type",
			"version: 1\ncommands:\n  - op: create-table\n    table: t\n    columns:\n      - name: id\n        type: varchar\n",
			cerr.ErrPlanFileInvalid,
		},
		{
			"position_outside_add_columns",
			"version: 1\ncommands:\n  - op: create-table\n    table: t\n    columns:\n      - name: id\n        type: int64\n        position: first\n",
			cerr.ErrPlanFileInvalid,
		},
		{
			"bad_position",
			"version: 1\ncommands:\n  - op: add-columns\n    table: t\n    columns:\n      - name: id\n        type: int64\n        position: before:x\n",
			cerr.ErrPlanFileInvalid,
		},
		{
			"bad_bucket_count",
			"version: 1\ncommands:\n  - op: create-table\n    table: t\n    partitionBy: [\"bucket(zero, id)\"]\n    columns:\n      - name: id\n        type: int64\n",
			cerr.ErrPlanFileInvalid,
		},
		{
			"transform_arity",
			"version: 1\ncommands:\n  - op: create-table\n    table: t\n    partitionBy: [\"days(a, b)\"]\n    columns:\n      - name: a\n        type: date\n",
			cerr.ErrPlanFileInvalid,
		},
		{
			"rename_without_to",
			"version: 1\ncommands:\n  - op: rename-table\n    table: t\n",
			cerr.ErrPlanFileInvalid,
		},
		{
			"update_without_set",
			"version: 1\ncommands:\n  - op: update\n    table: t\n",
			cerr.ErrPlanFileInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("Parse() error = nil, want error")
			}
			if !cerr.Is(err, tt.code) {
				t.Errorf("Parse() code = %s, want %s\nerror: %v", cerr.GetErrorCode(err), tt.code, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	if !cerr.Is(err, cerr.ErrPlanFileParse) {
		t.Errorf("Load() code = %s, want %s", cerr.GetErrorCode(err), cerr.ErrPlanFileParse)
	}
}

func TestParsePreservesCommandOrder(t *testing.T) {
	commands, err := Parse(strings.NewReader(`
version: 1
commands:
  - op: create-namespace
    namespace: prod
  - op: create-table
    table: prod.t
    columns:
      - name: id
        type: int64
  - op: drop-table
    table: prod.t
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(commands) != 3 {
		t.Fatalf("Parse() len = %d, want 3", len(commands))
	}
	if _, ok := commands[0].(command.CreateNamespace); !ok {
		t.Errorf("commands[0] = %T", commands[0])
	}
	if _, ok := commands[1].(command.CreateTable); !ok {
		t.Errorf("commands[1] = %T", commands[1])
	}
	if _, ok := commands[2].(command.DropTable); !ok {
		t.Errorf("commands[2] = %T", commands[2])
	}
}
