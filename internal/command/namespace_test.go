package command

import (
	"testing"

	"github.com/calyxdb/calyx/internal/datatype"
	"github.com/calyxdb/calyx/internal/plan"
)

func TestNamespaceCommandOutputSchemas(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want []plan.Attribute
	}{
		{"create_namespace", CreateNamespace{Namespace: plan.Identifier{"ns"}}, nil},
		{"drop_namespace", DropNamespace{Namespace: plan.Identifier{"ns"}}, nil},
		{"alter_namespace_set_properties", AlterNamespaceSetProperties{Namespace: plan.Identifier{"ns"}}, nil},
		{"set_catalog_and_namespace", SetCatalogAndNamespace{CatalogName: "c"}, nil},
		{"refresh_table", RefreshTable{Ident: plan.Identifier{"t"}}, nil},
		{"comment_on_namespace", CommentOnNamespace{Namespace: plan.Identifier{"ns"}}, nil},
		{"comment_on_table", CommentOnTable{Ident: plan.Identifier{"t"}}, nil},
		{
			"describe_namespace",
			DescribeNamespace{Namespace: plan.Identifier{"ns"}},
			[]plan.Attribute{
				{Name: "name", Type: datatype.String, Nullable: false},
				{Name: "value", Type: datatype.String, Nullable: true},
			},
		},
		{
			"show_namespaces",
			ShowNamespaces{Parent: plan.Identifier{"ns"}},
			[]plan.Attribute{
				{Name: "namespace", Type: datatype.String, Nullable: false},
			},
		},
		{
			"show_current_namespace",
			ShowCurrentNamespace{},
			[]plan.Attribute{
				{Name: "catalog", Type: datatype.String, Nullable: false},
				{Name: "namespace", Type: datatype.String, Nullable: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.cmd.Resolved() {
				t.Error("Resolved() = false for a fixed-shape command")
			}
			got := tt.cmd.Output()
			if len(got) != len(tt.want) {
				t.Fatalf("Output() len = %d, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].Name != tt.want[i].Name || got[i].Nullable != tt.want[i].Nullable {
					t.Errorf("Output()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
				if !datatype.Equal(got[i].Type, tt.want[i].Type) {
					t.Errorf("Output()[%d].Type = %s, want %s", i, got[i].Type, tt.want[i].Type)
				}
			}
		})
	}
}

func TestShowTableProperties(t *testing.T) {
	key := "owner"
	s := ShowTableProperties{
		Table: plan.Table{Ident: plan.Identifier{"t"}},
		PropertyKey: &key,
	}

	if !s.Resolved() {
		t.Error("Resolved() = false with a resolved table child")
	}
	out := s.Output()
	if len(out) != 2 || out[0].Name != "key" || out[1].Name != "value" {
		t.Errorf("Output() = %+v, want (key, value)", out)
	}

	s.Table = plan.UnresolvedRelation{Ident: plan.Identifier{"t"}}
	if s.Resolved() {
		t.Error("Resolved() = true with an unresolved table child")
	}
}
