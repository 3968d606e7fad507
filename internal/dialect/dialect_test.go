package dialect

import (
	"strings"
	"testing"

	"github.com/calyxdb/calyx/internal/cerr"
	"github.com/calyxdb/calyx/internal/change"
	"github.com/calyxdb/calyx/internal/datatype"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantErr  bool
	}{
		{"postgres", "postgres", false},
		{"postgresql", "postgres", false},
		{"sqlite", "sqlite", false},
		{"sqlite3", "sqlite", false},
		{"oracle", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Get(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Get(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil {
				if !cerr.Is(err, cerr.ErrUnsupportedDialect) {
					t.Errorf("Get(%q) code = %s, want %s", tt.name, cerr.GetErrorCode(err), cerr.ErrUnsupportedDialect)
				}
				return
			}
			if d.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", d.Name(), tt.wantName)
			}
		})
	}
}

func TestTypeSQL(t *testing.T) {
	tests := []struct {
		name     string
		typ      datatype.DataType
		postgres string
		sqlite   string
	}{
		{"boolean", datatype.Boolean, "BOOLEAN", "INTEGER"},
		{"int32", datatype.Int32, "INTEGER", "INTEGER"},
		{"int64", datatype.Int64, "BIGINT", "INTEGER"},
		{"float64", datatype.Float64, "DOUBLE PRECISION", "REAL"},
		{"string", datatype.String, "TEXT", "TEXT"},
		{"binary", datatype.Binary, "BYTEA", "BLOB"},
		{"timestamp", datatype.Timestamp, "TIMESTAMPTZ", "TEXT"},
		{"decimal", datatype.DecimalType{Precision: 10, Scale: 2}, "DECIMAL(10, 2)", "TEXT"},
		{"array", datatype.ArrayType{Element: datatype.String, ContainsNull: true}, "JSONB", "TEXT"},
		{"struct", datatype.StructType{}, "JSONB", "TEXT"},
	}

	pg := Postgres()
	lite := SQLite()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pg.TypeSQL(tt.typ)
			if err != nil {
				t.Fatalf("postgres TypeSQL() error = %v", err)
			}
			if got != tt.postgres {
				t.Errorf("postgres TypeSQL() = %q, want %q", got, tt.postgres)
			}

			got, err = lite.TypeSQL(tt.typ)
			if err != nil {
				t.Fatalf("sqlite TypeSQL() error = %v", err)
			}
			if got != tt.sqlite {
				t.Errorf("sqlite TypeSQL() = %q, want %q", got, tt.sqlite)
			}
		})
	}
}

func TestCreateTableSQL(t *testing.T) {
	schema := datatype.StructType{Fields: []datatype.StructField{
		{Name: "id", Type: datatype.Int64, Nullable: false},
		{Name: "name", Type: datatype.String, Nullable: true},
	}}

	d := Postgres()
	got, err := d.CreateTableSQL("events", schema, false)
	if err != nil {
		t.Fatalf("CreateTableSQL() error = %v", err)
	}
	want := "CREATE TABLE \"events\" (\n  \"id\" BIGINT NOT NULL,\n  \"name\" TEXT\n)"
	if got != want {
		t.Errorf("CreateTableSQL() = %q, want %q", got, want)
	}

	got, err = d.CreateTableSQL("events", schema, true)
	if err != nil {
		t.Fatalf("CreateTableSQL(ifNotExists) error = %v", err)
	}
	if !strings.HasPrefix(got, "CREATE TABLE IF NOT EXISTS ") {
		t.Errorf("CreateTableSQL(ifNotExists) = %q, want IF NOT EXISTS prefix", got)
	}
}

func TestDropAndRenameSQL(t *testing.T) {
	d := SQLite()

	if got := d.DropTableSQL("events", false); got != `DROP TABLE "events"` {
		t.Errorf("DropTableSQL() = %q", got)
	}
	if got := d.DropTableSQL("events", true); got != `DROP TABLE IF EXISTS "events"` {
		t.Errorf("DropTableSQL(ifExists) = %q", got)
	}
	if got := d.RenameTableSQL("events", "events_v2"); got != `ALTER TABLE "events" RENAME TO "events_v2"` {
		t.Errorf("RenameTableSQL() = %q", got)
	}
}

func TestQuoteIdent(t *testing.T) {
	d := Postgres()
	if got := d.QuoteIdent(`weird"name`); got != `"weird""name"` {
		t.Errorf("QuoteIdent() = %q, want escaped quotes", got)
	}
}

func TestPostgresChangeSQL(t *testing.T) {
	d := Postgres()

	tests := []struct {
		name    string
		c       change.TableChange
		want    []string
		wantErr bool
	}{
		{
			"add_column",
			change.AddColumn{Path: datatype.FieldPath{"age"}, Type: datatype.Int32, Nullable: true},
			[]string{`ALTER TABLE "events" ADD COLUMN "age" INTEGER`},
			false,
		},
		{
			"add_column_not_null",
			change.AddColumn{Path: datatype.FieldPath{"age"}, Type: datatype.Int32, Nullable: false},
			[]string{`ALTER TABLE "events" ADD COLUMN "age" INTEGER NOT NULL`},
			false,
		},
		{
			"add_column_with_comment",
			change.AddColumn{Path: datatype.FieldPath{"age"}, Type: datatype.Int32, Nullable: true, Comment: "user's age"},
			[]string{
				`ALTER TABLE "events" ADD COLUMN "age" INTEGER`,
				`COMMENT ON COLUMN "events"."age" IS 'user''s age'`,
			},
			false,
		},
		{
			"add_column_with_position",
			change.AddColumn{Path: datatype.FieldPath{"age"}, Type: datatype.Int32, Nullable: true, Position: change.First()},
			nil,
			true,
		},
		{
			"add_nested_column",
			change.AddColumn{Path: datatype.FieldPath{"address", "zip"}, Type: datatype.String, Nullable: true},
			nil,
			true,
		},
		{
			"update_type",
			change.UpdateColumnType{Path: datatype.FieldPath{"age"}, Type: datatype.Int64},
			[]string{`ALTER TABLE "events" ALTER COLUMN "age" TYPE BIGINT`},
			false,
		},
		{
			"drop_not_null",
			change.UpdateColumnNullability{Path: datatype.FieldPath{"age"}, Nullable: true},
			[]string{`ALTER TABLE "events" ALTER COLUMN "age" DROP NOT NULL`},
			false,
		},
		{
			"set_not_null",
			change.UpdateColumnNullability{Path: datatype.FieldPath{"age"}, Nullable: false},
			[]string{`ALTER TABLE "events" ALTER COLUMN "age" SET NOT NULL`},
			false,
		},
		{
			"update_comment",
			change.UpdateColumnComment{Path: datatype.FieldPath{"age"}, Comment: "years"},
			[]string{`COMMENT ON COLUMN "events"."age" IS 'years'`},
			false,
		},
		{
			"update_position",
			change.UpdateColumnPosition{Path: datatype.FieldPath{"age"}, Position: change.First()},
			nil,
			true,
		},
		{
			"rename_column",
			change.RenameColumn{Path: datatype.FieldPath{"age"}, NewName: "years"},
			[]string{`ALTER TABLE "events" RENAME COLUMN "age" TO "years"`},
			false,
		},
		{
			"delete_column",
			change.DeleteColumn{Path: datatype.FieldPath{"age"}},
			[]string{`ALTER TABLE "events" DROP COLUMN "age"`},
			false,
		},
		{
			"set_property",
			change.SetProperty{Key: "k", Value: "v"},
			nil,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.ChangeSQL("events", tt.c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ChangeSQL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !cerr.Is(err, cerr.ErrUnsupportedChange) {
					t.Errorf("code = %s, want %s", cerr.GetErrorCode(err), cerr.ErrUnsupportedChange)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ChangeSQL() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ChangeSQL()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSQLiteChangeSQL(t *testing.T) {
	d := SQLite()

	tests := []struct {
		name    string
		c       change.TableChange
		want    []string
		wantErr bool
	}{
		{
			"add_nullable_column",
			change.AddColumn{Path: datatype.FieldPath{"age"}, Type: datatype.Int32, Nullable: true},
			[]string{`ALTER TABLE "events" ADD COLUMN "age" INTEGER`},
			false,
		},
		{
			"add_not_null_column",
			change.AddColumn{Path: datatype.FieldPath{"age"}, Type: datatype.Int32, Nullable: false},
			nil,
			true,
		},
		{
			"update_type",
			change.UpdateColumnType{Path: datatype.FieldPath{"age"}, Type: datatype.Int64},
			nil,
			true,
		},
		{
			"update_nullability",
			change.UpdateColumnNullability{Path: datatype.FieldPath{"age"}, Nullable: true},
			nil,
			true,
		},
		{
			"update_comment",
			change.UpdateColumnComment{Path: datatype.FieldPath{"age"}, Comment: "x"},
			nil,
			true,
		},
		{
			"rename_column",
			change.RenameColumn{Path: datatype.FieldPath{"age"}, NewName: "years"},
			[]string{`ALTER TABLE "events" RENAME COLUMN "age" TO "years"`},
			false,
		},
		{
			"delete_column",
			change.DeleteColumn{Path: datatype.FieldPath{"age"}},
			[]string{`ALTER TABLE "events" DROP COLUMN "age"`},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.ChangeSQL("events", tt.c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ChangeSQL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !cerr.Is(err, cerr.ErrUnsupportedChange) {
					t.Errorf("code = %s, want %s", cerr.GetErrorCode(err), cerr.ErrUnsupportedChange)
				}
				return
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ChangeSQL()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildChangesSQL(t *testing.T) {
	d := Postgres()
	changes := []change.TableChange{
		change.AddColumn{Path: datatype.FieldPath{"a"}, Type: datatype.Int32, Nullable: true},
		change.DeleteColumn{Path: datatype.FieldPath{"b"}},
	}

	got, err := BuildChangesSQL(d, "t", changes)
	if err != nil {
		t.Fatalf("BuildChangesSQL() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("BuildChangesSQL() len = %d, want 2", len(got))
	}

	// An unsupported change anywhere aborts the whole list.
	changes = append(changes, change.UpdateColumnPosition{Path: datatype.FieldPath{"a"}, Position: change.First()})
	got, err = BuildChangesSQL(d, "t", changes)
	if err == nil {
		t.Fatal("BuildChangesSQL() error = nil with an unsupported change")
	}
	if got != nil {
		t.Errorf("BuildChangesSQL() = %v, want nil on error", got)
	}
}
