package catalog

import (
	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/datatype"
)

// ApplySchemaChange applies one column-level change to a schema, returning
// the new schema. Property changes are not schema changes; passing one is
// an internal error. The input schema is never modified.
func ApplySchemaChange(schema datatype.StructType, c change.TableChange) (datatype.StructType, error) {
	if err := c.Validate(); err != nil {
		return datatype.StructType{}, err
	}

	switch c := c.(type) {
	case change.AddColumn:
		parent := c.Path[:len(c.Path)-1]
		name := c.Path[len(c.Path)-1]
		return rewriteStruct(schema, parent, func(s datatype.StructType) (datatype.StructType, error) {
			if _, exists := fieldIndex(s, name); exists {
				return s, cerr.New(cerr.ErrChangeRejected, "column already exists").WithPath(c.Path)
			}
			field := datatype.StructField{Name: name, Type: c.Type, Nullable: c.Nullable, Comment: c.Comment}
			return insertField(s, field, c.Position)
		})

	case change.UpdateColumnType:
		return updateField(schema, c.Path, func(f datatype.StructField) datatype.StructField {
			f.Type = c.Type
			return f
		})

	case change.UpdateColumnNullability:
		return updateField(schema, c.Path, func(f datatype.StructField) datatype.StructField {
			f.Nullable = c.Nullable
			return f
		})

	case change.UpdateColumnComment:
		return updateField(schema, c.Path, func(f datatype.StructField) datatype.StructField {
			f.Comment = c.Comment
			return f
		})

	case change.UpdateColumnPosition:
		parent := c.Path[:len(c.Path)-1]
		name := c.Path[len(c.Path)-1]
		return rewriteStruct(schema, parent, func(s datatype.StructType) (datatype.StructType, error) {
			i, exists := fieldIndex(s, name)
			if !exists {
				return s, cerr.New(cerr.ErrChangeRejected, "column not found").WithPath(c.Path)
			}
			field := s.Fields[i]
			without := removeAt(s, i)
			return insertField(without, field, c.Position)
		})

	case change.RenameColumn:
		return updateField(schema, c.Path, func(f datatype.StructField) datatype.StructField {
			f.Name = c.NewName
			return f
		})

	case change.DeleteColumn:
		parent := c.Path[:len(c.Path)-1]
		name := c.Path[len(c.Path)-1]
		return rewriteStruct(schema, parent, func(s datatype.StructType) (datatype.StructType, error) {
			i, exists := fieldIndex(s, name)
			if !exists {
				return s, cerr.New(cerr.ErrChangeRejected, "column not found").WithPath(c.Path)
			}
			return removeAt(s, i), nil
		})

	case change.SetProperty, change.RemoveProperty:
		return datatype.StructType{}, cerr.New(cerr.EInternalError,
			"property change applied to a schema")

	default:
		return datatype.StructType{}, cerr.Newf(cerr.EInternalError,
			"unhandled change kind %s", c.Kind())
	}
}

// rewriteStruct locates the struct at parent (empty = top level) and
// replaces it with the result of fn, rebuilding the enclosing structs
// along the path. The input is never modified.
func rewriteStruct(schema datatype.StructType, parent datatype.FieldPath, fn func(datatype.StructType) (datatype.StructType, error)) (datatype.StructType, error) {
	if len(parent) == 0 {
		return fn(cloneStruct(schema))
	}

	i, exists := fieldIndex(schema, parent[0])
	if !exists {
		return schema, cerr.New(cerr.ErrChangeRejected, "parent struct not found").WithPath(parent)
	}
	nested, ok := schema.Fields[i].Type.(datatype.StructType)
	if !ok {
		return schema, cerr.New(cerr.ErrChangeRejected, "parent is not a struct").WithPath(parent)
	}

	rewritten, err := rewriteStruct(nested, parent[1:], fn)
	if err != nil {
		return schema, err
	}

	out := cloneStruct(schema)
	out.Fields[i].Type = rewritten
	return out, nil
}

// updateField rewrites the single field at path via fn.
func updateField(schema datatype.StructType, path datatype.FieldPath, fn func(datatype.StructField) datatype.StructField) (datatype.StructType, error) {
	parent := path[:len(path)-1]
	name := path[len(path)-1]
	return rewriteStruct(schema, parent, func(s datatype.StructType) (datatype.StructType, error) {
		i, exists := fieldIndex(s, name)
		if !exists {
			return s, cerr.New(cerr.ErrChangeRejected, "column not found").WithPath(path)
		}
		s.Fields[i] = fn(s.Fields[i])
		return s, nil
	})
}

func fieldIndex(s datatype.StructType, name string) (int, bool) {
	for i, f := range s.Fields {
		if f.Name == name {
			return i, true
		}
	}
	return 0, false
}

func cloneStruct(s datatype.StructType) datatype.StructType {
	fields := make([]datatype.StructField, len(s.Fields))
	copy(fields, s.Fields)
	return datatype.StructType{Fields: fields}
}

func removeAt(s datatype.StructType, i int) datatype.StructType {
	fields := make([]datatype.StructField, 0, len(s.Fields)-1)
	fields = append(fields, s.Fields[:i]...)
	fields = append(fields, s.Fields[i+1:]...)
	return datatype.StructType{Fields: fields}
}

func insertField(s datatype.StructType, field datatype.StructField, pos *change.ColumnPosition) (datatype.StructType, error) {
	at := len(s.Fields)
	if pos != nil {
		if pos.IsFirst() {
			at = 0
		} else {
			i, exists := fieldIndex(s, pos.AfterColumn())
			if !exists {
				return s, cerr.New(cerr.ErrChangeRejected, "position reference column not found").
					WithColumn(pos.AfterColumn())
			}
			at = i + 1
		}
	}

	fields := make([]datatype.StructField, 0, len(s.Fields)+1)
	fields = append(fields, s.Fields[:at]...)
	fields = append(fields, field)
	fields = append(fields, s.Fields[at:]...)
	return datatype.StructType{Fields: fields}, nil
}
