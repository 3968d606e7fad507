package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/plan"
)

// Memory is an in-process catalog holding schemas and properties in maps.
// It applies change lists against a scratch copy and commits only when
// every change succeeds, so a failed list leaves the table untouched.
// Safe for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	tables     map[string]*TableInfo
	namespaces map[string]map[string]string
}

var _ Catalog = (*Memory)(nil)

// NewMemory returns an empty memory catalog.
func NewMemory() *Memory {
	return &Memory{
		tables:     make(map[string]*TableInfo),
		namespaces: make(map[string]map[string]string),
	}
}

func identKey(ident plan.Identifier) string {
	return strings.Join(ident, "\x00")
}

func (m *Memory) LoadTable(_ context.Context, ident plan.Identifier) (*TableInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.tables[identKey(ident)]
	if !ok {
		return nil, cerr.New(cerr.ErrTableNotFound, "table does not exist").
			With("table", ident.String())
	}
	out := copyTableInfo(info)
	return &out, nil
}

func (m *Memory) TableExists(_ context.Context, ident plan.Identifier) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tables[identKey(ident)]
	return ok, nil
}

func (m *Memory) CreateTable(_ context.Context, info TableInfo, ifNotExists bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := identKey(info.Ident)
	if _, exists := m.tables[key]; exists {
		if ifNotExists {
			return nil
		}
		return cerr.New(cerr.ErrTableExists, "table already exists").
			With("table", info.Ident.String())
	}
	stored := copyTableInfo(&info)
	m.tables[key] = &stored
	return nil
}

func (m *Memory) DropTable(_ context.Context, ident plan.Identifier, ifExists bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := identKey(ident)
	if _, exists := m.tables[key]; !exists {
		if ifExists {
			return nil
		}
		return cerr.New(cerr.ErrTableNotFound, "table does not exist").
			With("table", ident.String())
	}
	delete(m.tables, key)
	return nil
}

func (m *Memory) RenameTable(_ context.Context, ident plan.Identifier, newName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := identKey(ident)
	info, exists := m.tables[key]
	if !exists {
		return cerr.New(cerr.ErrTableNotFound, "table does not exist").
			With("table", ident.String())
	}

	newIdent := append(append(plan.Identifier{}, ident.Namespace()...), newName)
	newKey := identKey(newIdent)
	if _, exists := m.tables[newKey]; exists {
		return cerr.New(cerr.ErrTableExists, "table already exists").
			With("table", newIdent.String())
	}

	renamed := copyTableInfo(info)
	renamed.Ident = newIdent
	delete(m.tables, key)
	m.tables[newKey] = &renamed
	return nil
}

// ApplyChanges applies the ordered list to a scratch copy first; the
// stored table is only replaced when every change succeeds.
func (m *Memory) ApplyChanges(_ context.Context, ident plan.Identifier, changes []change.TableChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := identKey(ident)
	info, exists := m.tables[key]
	if !exists {
		return cerr.New(cerr.ErrTableNotFound, "table does not exist").
			With("table", ident.String())
	}

	scratch := copyTableInfo(info)
	for _, c := range changes {
		if err := applyToInfo(&scratch, c); err != nil {
			return err
		}
	}
	m.tables[key] = &scratch
	return nil
}

func applyToInfo(info *TableInfo, c change.TableChange) error {
	switch c := c.(type) {
	case change.SetProperty:
		if err := c.Validate(); err != nil {
			return err
		}
		info.Properties[c.Key] = c.Value
		return nil
	case change.RemoveProperty:
		if err := c.Validate(); err != nil {
			return err
		}
		if _, exists := info.Properties[c.Key]; !exists {
			return cerr.New(cerr.ErrChangeRejected, "property does not exist").
				With("key", c.Key)
		}
		delete(info.Properties, c.Key)
		return nil
	default:
		schema, err := ApplySchemaChange(info.Schema, c)
		if err != nil {
			return err
		}
		info.Schema = schema
		return nil
	}
}

func (m *Memory) ListTables(_ context.Context, namespace plan.Identifier) ([]plan.Identifier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var idents []plan.Identifier
	for _, info := range m.tables {
		if info.Ident.Namespace().Equal(namespace) {
			idents = append(idents, info.Ident)
		}
	}
	sort.Slice(idents, func(i, j int) bool {
		return idents[i].String() < idents[j].String()
	})
	return idents, nil
}

func (m *Memory) CreateNamespace(_ context.Context, namespace plan.Identifier, properties map[string]string, ifNotExists bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := identKey(namespace)
	if _, exists := m.namespaces[key]; exists {
		if ifNotExists {
			return nil
		}
		return cerr.New(cerr.ErrNamespaceExists, "namespace already exists").
			With("namespace", namespace.String())
	}
	m.namespaces[key] = copyProperties(properties)
	return nil
}

func (m *Memory) DropNamespace(_ context.Context, namespace plan.Identifier, ifExists, cascade bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := identKey(namespace)
	if _, exists := m.namespaces[key]; !exists {
		if ifExists {
			return nil
		}
		return cerr.New(cerr.ErrNamespaceNotFound, "namespace does not exist").
			With("namespace", namespace.String())
	}

	var held []string
	for tableKey, info := range m.tables {
		if info.Ident.Namespace().Equal(namespace) {
			held = append(held, tableKey)
		}
	}
	if len(held) > 0 && !cascade {
		return cerr.New(cerr.ErrNamespaceNotEmpty, "namespace still holds tables").
			With("namespace", namespace.String()).
			With("tables", len(held))
	}
	for _, tableKey := range held {
		delete(m.tables, tableKey)
	}
	delete(m.namespaces, key)
	return nil
}

func (m *Memory) LoadNamespace(_ context.Context, namespace plan.Identifier) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	props, exists := m.namespaces[identKey(namespace)]
	if !exists {
		return nil, cerr.New(cerr.ErrNamespaceNotFound, "namespace does not exist").
			With("namespace", namespace.String())
	}
	return copyProperties(props), nil
}

func (m *Memory) SetNamespaceProperties(_ context.Context, namespace plan.Identifier, properties map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	props, exists := m.namespaces[identKey(namespace)]
	if !exists {
		return cerr.New(cerr.ErrNamespaceNotFound, "namespace does not exist").
			With("namespace", namespace.String())
	}
	for k, v := range properties {
		props[k] = v
	}
	return nil
}

func (m *Memory) ListNamespaces(_ context.Context, parent plan.Identifier) ([]plan.Identifier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var namespaces []plan.Identifier
	for key := range m.namespaces {
		ns := plan.Identifier(strings.Split(key, "\x00"))
		if len(ns) == len(parent)+1 && ns.Namespace().Equal(parent) {
			namespaces = append(namespaces, ns)
		}
	}
	sort.Slice(namespaces, func(i, j int) bool {
		return namespaces[i].String() < namespaces[j].String()
	})
	return namespaces, nil
}

func copyTableInfo(info *TableInfo) TableInfo {
	ident := append(plan.Identifier{}, info.Ident...)
	partitioning := append([]plan.Transform{}, info.Partitioning...)
	return TableInfo{
		Ident:        ident,
		Schema:       info.Schema,
		Partitioning: partitioning,
		Properties:   copyProperties(info.Properties),
	}
}

func copyProperties(props map[string]string) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
