package datatype

import (
	"testing"
)

// -----------------------------------------------------------------------------
// String rendering
// -----------------------------------------------------------------------------

func TestTypeString(t *testing.T) {
	tests := []struct {
		name string
		typ  DataType
		want string
	}{
		{"int64", Int64, "int64"},
		{"string", String, "string"},
		{"decimal", DecimalType{Precision: 10, Scale: 2}, "decimal(10,2)"},
		{"array", ArrayType{Element: Int32, ContainsNull: true}, "array<int32>"},
		{"map", MapType{Key: String, Value: Int64, ValueContainsNull: false}, "map<string,int64>"},
		{
			"struct",
			StructType{Fields: []StructField{
				{Name: "id", Type: Int64},
				{Name: "name", Type: String, Nullable: true},
			}},
			"struct<id:int64,name:string>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Equality
// -----------------------------------------------------------------------------

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b DataType
		want bool
	}{
		{"same_primitive", Int64, Int64, true},
		{"different_primitive", Int64, Int32, false},
		{"same_decimal", DecimalType{10, 2}, DecimalType{10, 2}, true},
		{"different_scale", DecimalType{10, 2}, DecimalType{10, 3}, false},
		{
			"array_nullability_matters",
			ArrayType{Element: Int32, ContainsNull: true},
			ArrayType{Element: Int32, ContainsNull: false},
			false,
		},
		{
			"struct_field_order_matters",
			StructType{Fields: []StructField{{Name: "a", Type: Int32}, {Name: "b", Type: Int64}}},
			StructType{Fields: []StructField{{Name: "b", Type: Int64}, {Name: "a", Type: Int32}}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEqualIgnoreCompatibleNullability(t *testing.T) {
	tests := []struct {
		name     string
		from, to DataType
		want     bool
	}{
		{"identical_primitives", Int64, Int64, true},
		{"different_primitives", Int64, Int32, false},
		{
			"array_widening_ok",
			ArrayType{Element: Int32, ContainsNull: false},
			ArrayType{Element: Int32, ContainsNull: true},
			true,
		},
		{
			"array_narrowing_rejected",
			ArrayType{Element: Int32, ContainsNull: true},
			ArrayType{Element: Int32, ContainsNull: false},
			false,
		},
		{
			"map_value_widening_ok",
			MapType{Key: String, Value: Int64, ValueContainsNull: false},
			MapType{Key: String, Value: Int64, ValueContainsNull: true},
			true,
		},
		{
			"map_value_narrowing_rejected",
			MapType{Key: String, Value: Int64, ValueContainsNull: true},
			MapType{Key: String, Value: Int64, ValueContainsNull: false},
			false,
		},
		{
			"struct_field_widening_ok",
			StructType{Fields: []StructField{{Name: "a", Type: Int32, Nullable: false}}},
			StructType{Fields: []StructField{{Name: "a", Type: Int32, Nullable: true}}},
			true,
		},
		{
			"struct_field_narrowing_rejected",
			StructType{Fields: []StructField{{Name: "a", Type: Int32, Nullable: true}}},
			StructType{Fields: []StructField{{Name: "a", Type: Int32, Nullable: false}}},
			false,
		},
		{
			"struct_field_name_must_match",
			StructType{Fields: []StructField{{Name: "a", Type: Int32}}},
			StructType{Fields: []StructField{{Name: "b", Type: Int32}}},
			false,
		},
		{
			"nested_array_in_struct",
			StructType{Fields: []StructField{{Name: "xs", Type: ArrayType{Element: String, ContainsNull: false}}}},
			StructType{Fields: []StructField{{Name: "xs", Type: ArrayType{Element: String, ContainsNull: true}}}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EqualIgnoreCompatibleNullability(tt.from, tt.to); got != tt.want {
				t.Errorf("EqualIgnoreCompatibleNullability() = %v, want %v", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Field lookup
// -----------------------------------------------------------------------------

func TestFindNestedField(t *testing.T) {
	schema := StructType{Fields: []StructField{
		{Name: "id", Type: Int64},
		{Name: "address", Type: StructType{Fields: []StructField{
			{Name: "city", Type: String, Nullable: true},
			{Name: "geo", Type: StructType{Fields: []StructField{
				{Name: "lat", Type: Float64},
			}}},
		}}},
	}}

	tests := []struct {
		name  string
		path  FieldPath
		found bool
	}{
		{"top_level", FieldPath{"id"}, true},
		{"nested", FieldPath{"address", "city"}, true},
		{"deeply_nested", FieldPath{"address", "geo", "lat"}, true},
		{"missing_top", FieldPath{"nope"}, false},
		{"missing_nested", FieldPath{"address", "zip"}, false},
		{"path_through_non_struct", FieldPath{"id", "sub"}, false},
		{"empty_path", FieldPath{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := FindNestedField(schema, tt.path)
			if ok != tt.found {
				t.Fatalf("FindNestedField(%v) found = %v, want %v", tt.path, ok, tt.found)
			}
			if ok && field.Name != tt.path[len(tt.path)-1] {
				t.Errorf("FindNestedField(%v) = %q, want %q", tt.path, field.Name, tt.path[len(tt.path)-1])
			}
		})
	}
}

func TestFieldPath(t *testing.T) {
	p := FieldPath{"address", "city"}
	if got := p.String(); got != "address.city" {
		t.Errorf("String() = %q, want %q", got, "address.city")
	}
	if !p.Equal(FieldPath{"address", "city"}) {
		t.Error("Equal() = false for identical paths")
	}
	if p.Equal(FieldPath{"address"}) {
		t.Error("Equal() = true for different lengths")
	}
}
