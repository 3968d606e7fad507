package command

import (
	"github.com/calyxdb/calyx/internal/datatype"
	"github.com/calyxdb/calyx/internal/plan"
)

// The namespace and catalog administration commands are fixed-shape
// values: zero or one child, a constant declared output schema, and
// flags and option maps carried through untouched for the execution
// collaborator.

// CreateNamespace creates a namespace.
type CreateNamespace struct {
	leaf
	Namespace   plan.Identifier
	IfNotExists bool
	Properties  map[string]string
}

// DropNamespace drops a namespace. Cascade drops contained tables too;
// without it, dropping a non-empty namespace fails at execution time.
type DropNamespace struct {
	leaf
	Namespace plan.Identifier
	IfExists  bool
	Cascade   bool
}

// DescribeNamespace lists a namespace's metadata as (name, value) rows.
type DescribeNamespace struct {
	leaf
	Namespace plan.Identifier
	Extended  bool
}

func (DescribeNamespace) Output() []plan.Attribute {
	return []plan.Attribute{
		{Name: "name", Type: datatype.String, Nullable: false},
		{Name: "value", Type: datatype.String, Nullable: true},
	}
}

// AlterNamespaceSetProperties sets properties on a namespace.
type AlterNamespaceSetProperties struct {
	leaf
	Namespace  plan.Identifier
	Properties map[string]string
}

// ShowNamespaces lists namespaces under a parent, optionally filtered by
// a pattern. Pattern semantics belong to the execution collaborator.
type ShowNamespaces struct {
	leaf
	Parent  plan.Identifier
	Pattern *string
}

func (ShowNamespaces) Output() []plan.Attribute {
	return []plan.Attribute{
		{Name: "namespace", Type: datatype.String, Nullable: false},
	}
}

// ShowCurrentNamespace reports the session's current catalog and namespace.
type ShowCurrentNamespace struct {
	leaf
}

func (ShowCurrentNamespace) Output() []plan.Attribute {
	return []plan.Attribute{
		{Name: "catalog", Type: datatype.String, Nullable: false},
		{Name: "namespace", Type: datatype.String, Nullable: false},
	}
}

// SetCatalogAndNamespace switches the session's current catalog and/or
// namespace (USE).
type SetCatalogAndNamespace struct {
	leaf
	CatalogName string
	Namespace   plan.Identifier
}

// RefreshTable invalidates cached metadata for a table.
type RefreshTable struct {
	leaf
	Ident plan.Identifier
}

// CommentOnNamespace sets a namespace comment. An empty comment clears it.
type CommentOnNamespace struct {
	leaf
	Namespace plan.Identifier
	Comment   string
}

// CommentOnTable sets a table comment. An empty comment clears it.
type CommentOnTable struct {
	leaf
	Ident   plan.Identifier
	Comment string
}

// ShowTableProperties lists a table's properties as (key, value) rows,
// optionally restricted to one key.
type ShowTableProperties struct {
	Table       plan.LogicalPlan
	PropertyKey *string
}

func (s ShowTableProperties) Children() []plan.LogicalPlan { return []plan.LogicalPlan{s.Table} }
func (s ShowTableProperties) Resolved() bool               { return s.Table.Resolved() }

func (ShowTableProperties) Output() []plan.Attribute {
	return []plan.Attribute{
		{Name: "key", Type: datatype.String, Nullable: false},
		{Name: "value", Type: datatype.String, Nullable: false},
	}
}
