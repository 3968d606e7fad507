package drift

import "sort"

// Comparison is the result of comparing two catalog hashes.
type Comparison struct {
	Match         bool                  // True if the catalogs are identical
	ExpectedRoot  string                // Expected root hash
	ActualRoot    string                // Actual root hash
	TableDiffs    map[string]*TableDiff // Tables with differences
	MissingTables []string              // Tables missing from actual
	ExtraTables   []string              // Extra tables in actual
}

// TableDiff holds the differences within one table.
type TableDiff struct {
	Name               string
	MissingColumns     []string // Columns missing from actual
	ExtraColumns       []string // Extra columns in actual
	ModifiedColumns    []string // Columns with different definitions
	MissingProperties  []string // Properties missing from actual
	ExtraProperties    []string // Extra properties in actual
	ModifiedProperties []string // Properties with different values
}

// HasDifferences reports whether the table diff carries any change.
func (d *TableDiff) HasDifferences() bool {
	return len(d.MissingColumns) > 0 ||
		len(d.ExtraColumns) > 0 ||
		len(d.ModifiedColumns) > 0 ||
		len(d.MissingProperties) > 0 ||
		len(d.ExtraProperties) > 0 ||
		len(d.ModifiedProperties) > 0
}

// Compare compares two catalog hashes and returns their differences.
// A root match short-circuits without walking tables.
func Compare(expected, actual *CatalogHash) *Comparison {
	result := &Comparison{
		Match:         expected.Root == actual.Root,
		ExpectedRoot:  expected.Root,
		ActualRoot:    actual.Root,
		TableDiffs:    make(map[string]*TableDiff),
		MissingTables: []string{},
		ExtraTables:   []string{},
	}
	if result.Match {
		return result
	}

	for name := range expected.Tables {
		if _, ok := actual.Tables[name]; !ok {
			result.MissingTables = append(result.MissingTables, name)
		}
	}
	sort.Strings(result.MissingTables)

	for name := range actual.Tables {
		if _, ok := expected.Tables[name]; !ok {
			result.ExtraTables = append(result.ExtraTables, name)
		}
	}
	sort.Strings(result.ExtraTables)

	for name, expectedTable := range expected.Tables {
		actualTable, ok := actual.Tables[name]
		if !ok {
			continue
		}
		if expectedTable.Hash != actualTable.Hash {
			result.TableDiffs[name] = compareTableHashes(expectedTable, actualTable)
		}
	}
	return result
}

func compareTableHashes(expected, actual *TableHash) *TableDiff {
	diff := &TableDiff{Name: expected.Name}

	for name, hash := range expected.Columns {
		actualHash, ok := actual.Columns[name]
		switch {
		case !ok:
			diff.MissingColumns = append(diff.MissingColumns, name)
		case hash != actualHash:
			diff.ModifiedColumns = append(diff.ModifiedColumns, name)
		}
	}
	for name := range actual.Columns {
		if _, ok := expected.Columns[name]; !ok {
			diff.ExtraColumns = append(diff.ExtraColumns, name)
		}
	}

	for key, hash := range expected.Properties {
		actualHash, ok := actual.Properties[key]
		switch {
		case !ok:
			diff.MissingProperties = append(diff.MissingProperties, key)
		case hash != actualHash:
			diff.ModifiedProperties = append(diff.ModifiedProperties, key)
		}
	}
	for key := range actual.Properties {
		if _, ok := expected.Properties[key]; !ok {
			diff.ExtraProperties = append(diff.ExtraProperties, key)
		}
	}

	sort.Strings(diff.MissingColumns)
	sort.Strings(diff.ExtraColumns)
	sort.Strings(diff.ModifiedColumns)
	sort.Strings(diff.MissingProperties)
	sort.Strings(diff.ExtraProperties)
	sort.Strings(diff.ModifiedProperties)

	return diff
}
