// Package planfile loads declarative plan documents from YAML. A plan
// file is an ordered list of operations; each entry builds one command
// value with unresolved relations, ready for analysis and execution.
package planfile

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/plan"
)

// Document is the top-level shape of a plan file.
type Document struct {
	Version  int     `yaml:"version"`
	Commands []Entry `yaml:"commands"`
}

// Entry is one operation in a plan file. Op selects the command; the
// remaining fields are read per-op and unknown combinations are
// rejected at build time, not here.
type Entry struct {
	Op string `yaml:"op"`

	Table     string `yaml:"table,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`

	Columns     []ColumnSpec      `yaml:"columns,omitempty"`
	PartitionBy []string          `yaml:"partitionBy,omitempty"`
	Properties  map[string]string `yaml:"properties,omitempty"`
	Keys        []string          `yaml:"keys,omitempty"`

	Column   string  `yaml:"column,omitempty"`
	To       string  `yaml:"to,omitempty"`
	Type     string  `yaml:"type,omitempty"`
	Nullable *bool   `yaml:"nullable,omitempty"`
	Comment  *string `yaml:"comment,omitempty"`
	Position string  `yaml:"position,omitempty"`

	Query string            `yaml:"query,omitempty"`
	Where string            `yaml:"where,omitempty"`
	Set   map[string]string `yaml:"set,omitempty"`

	Location  string            `yaml:"location,omitempty"`
	Partition map[string]string `yaml:"partition,omitempty"`

	IfExists    bool `yaml:"ifExists,omitempty"`
	IfNotExists bool `yaml:"ifNotExists,omitempty"`
	OrCreate    bool `yaml:"orCreate,omitempty"`
	Cascade     bool `yaml:"cascade,omitempty"`
}

// ColumnSpec is one column in a plan file schema or add-columns list.
type ColumnSpec struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable *bool  `yaml:"nullable,omitempty"` // default true
	Comment  string `yaml:"comment,omitempty"`
	Position string `yaml:"position,omitempty"` // "first" or "after:<col>"
}

// SupportedVersion is the plan file format version this build reads.
const SupportedVersion = 1

// Load reads and builds the plan file at path.
func Load(path string) ([]plan.LogicalPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerr.Wrap(cerr.ErrPlanFileParse, err, "failed to read plan file").
			WithFile(path, 0)
	}
	commands, err := Parse(bytes.NewReader(data))
	if err != nil {
		if ce, ok := err.(*cerr.Error); ok {
			return nil, ce.WithFile(path, 0)
		}
		return nil, err
	}
	return commands, nil
}

// Parse decodes a plan document and builds its command list. Unknown
// YAML fields are rejected so typos surface instead of silently
// dropping an option.
func Parse(r io.Reader) ([]plan.LogicalPlan, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, cerr.Wrap(cerr.ErrPlanFileParse, err, "failed to parse plan file")
	}
	if doc.Version != SupportedVersion {
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "unsupported plan file version").
			With("version", doc.Version).
			With("supported", SupportedVersion)
	}
	if len(doc.Commands) == 0 {
		return nil, cerr.New(cerr.ErrPlanFileInvalid, "plan file has no commands")
	}

	commands := make([]plan.LogicalPlan, 0, len(doc.Commands))
	for i, entry := range doc.Commands {
		cmd, err := buildCommand(entry)
		if err != nil {
			if ce, ok := err.(*cerr.Error); ok {
				return nil, ce.With("entry", i).With("op", entry.Op)
			}
			return nil, err
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}
