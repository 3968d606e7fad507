// Package drift fingerprints catalog state using merkle trees. It hashes
// every table hierarchically (columns, partitioning, properties) so two
// catalogs can be compared by root hash, with drill-down to the exact
// table and column that diverged.
package drift

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/cbergoon/merkletree"

	"github.com/calyxdb/calyx/internal/catalog"
	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/datatype"
)

// CatalogHash is the merkle root hash over a set of tables.
type CatalogHash struct {
	Root   string                // Root hash of the whole catalog
	Tables map[string]*TableHash // Per-table hashes for drill-down
}

// TableHash is the merkle hash of a single table.
type TableHash struct {
	Name       string            // Qualified table name
	Hash       string            // Hash of the entire table structure
	Columns    map[string]string // Column name -> hash
	Properties map[string]string // Property key -> hash
}

// tableContent implements merkletree.Content for table-level hashing.
type tableContent struct {
	name string
	hash string
}

func (t tableContent) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(t.hash))
	return h[:], nil
}

func (t tableContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(tableContent)
	if !ok {
		return false, nil
	}
	return t.hash == o.hash, nil
}

// ComputeCatalogHash computes the merkle tree hash over tables.
// The hash is hierarchical: catalog -> tables -> columns/properties.
func ComputeCatalogHash(tables []*catalog.TableInfo) (*CatalogHash, error) {
	result := &CatalogHash{
		Tables: make(map[string]*TableHash),
	}
	if len(tables) == 0 {
		result.Root = emptyHash()
		return result, nil
	}

	sorted := make([]*catalog.TableInfo, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Ident.String() < sorted[j].Ident.String()
	})

	var contents []merkletree.Content
	for _, info := range sorted {
		tableHash := computeTableHash(info)
		result.Tables[info.Ident.String()] = tableHash
		contents = append(contents, tableContent{
			name: info.Ident.String(),
			hash: tableHash.Hash,
		})
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return nil, cerr.Wrap(cerr.EInternalError, err, "failed to build merkle tree")
	}
	result.Root = hex.EncodeToString(tree.MerkleRoot())
	return result, nil
}

// computeTableHash computes the hash for a single table.
func computeTableHash(info *catalog.TableInfo) *TableHash {
	result := &TableHash{
		Name:       info.Ident.String(),
		Columns:    make(map[string]string),
		Properties: make(map[string]string),
	}

	// Columns keep their declared order: reordering columns is drift.
	var columnHashes []string
	for i, f := range info.Schema.Fields {
		colHash := computeColumnHash(i, f)
		result.Columns[f.Name] = colHash
		columnHashes = append(columnHashes, f.Name+":"+colHash)
	}

	// Partition transforms keep their declared order too.
	var partitionParts []string
	for _, t := range info.Partitioning {
		partitionParts = append(partitionParts, t.String())
	}

	// Properties are sorted by key.
	var propertyHashes []string
	keys := make([]string, 0, len(info.Properties))
	for k := range info.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		propHash := hashString("key:" + k + "|value:" + info.Properties[k])
		result.Properties[k] = propHash
		propertyHashes = append(propertyHashes, k+":"+propHash)
	}

	tableData := fmt.Sprintf("table:%s|columns:[%s]|partitioning:[%s]|properties:[%s]",
		info.Ident.String(),
		strings.Join(columnHashes, ","),
		strings.Join(partitionParts, ","),
		strings.Join(propertyHashes, ","),
	)
	result.Hash = hashString(tableData)
	return result
}

// computeColumnHash computes a deterministic hash for a column. The
// ordinal is part of the hash so moved columns hash differently.
func computeColumnHash(ordinal int, f datatype.StructField) string {
	data := fmt.Sprintf("ord:%d|name:%s|type:%s|nullable:%v",
		ordinal, f.Name, f.Type.String(), f.Nullable)
	if f.Comment != "" {
		data += "|comment:" + f.Comment
	}
	return hashString(data)
}

func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// emptyHash returns a consistent hash for an empty catalog.
func emptyHash() string {
	return hashString("empty_catalog")
}
