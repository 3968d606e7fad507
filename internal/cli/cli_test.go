package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/calyxdb/calyx/internal/cerr"
)

// usePlainMode disables styling so rendered output is byte-comparable.
func usePlainMode(t *testing.T) {
	t.Helper()
	prev := Default()
	SetDefault(NewConfigWithMode(ModePlain))
	t.Cleanup(func() { SetDefault(prev) })
}

func TestConfigModes(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		tty   bool
		plain bool
		json  bool
	}{
		{"tty", ModeTTY, true, false, false},
		{"plain", ModePlain, false, true, false},
		{"json", ModeJSON, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfigWithMode(tt.mode)
			if cfg.IsTTY() != tt.tty || cfg.IsPlain() != tt.plain || cfg.IsJSON() != tt.json {
				t.Errorf("mode %v: IsTTY=%v IsPlain=%v IsJSON=%v", tt.mode, cfg.IsTTY(), cfg.IsPlain(), cfg.IsJSON())
			}
		})
	}
}

func TestTable(t *testing.T) {
	usePlainMode(t)

	table := NewTable("name", "type")
	table.AddRow("id", "int64")
	table.AddRow("created_at", "timestamp")

	got := table.String()
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want header + rule + 2 rows\n%s", len(lines), got)
	}
	// Columns align on the widest cell.
	if lines[0] != "name        type     " {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "id          int64    " {
		t.Errorf("row = %q", lines[2])
	}
	if !strings.Contains(lines[1], "─") {
		t.Errorf("rule line = %q, want box-drawing dashes", lines[1])
	}
}

func TestTableShortRowsPadded(t *testing.T) {
	usePlainMode(t)

	table := NewTable("a", "b")
	table.AddRow("only")

	got := table.String()
	if !strings.Contains(got, "only") {
		t.Errorf("output missing padded row:\n%s", got)
	}
}

func TestList(t *testing.T) {
	usePlainMode(t)

	list := NewList()
	list.Add("plain")
	list.AddSuccess("done")
	list.AddError("failed")
	list.AddWarning("careful")
	list.AddInfo("fyi")

	got := list.String()
	want := "  • plain\n  ✓ done\n  ✗ failed\n  ! careful\n  → fyi\n"
	if got != want {
		t.Errorf("List.String() = %q, want %q", got, want)
	}
}

func TestSection(t *testing.T) {
	usePlainMode(t)

	got := Section("prod.events", "content\n")
	want := "prod.events\n───────────\ncontent\n"
	if got != want {
		t.Errorf("Section() = %q, want %q", got, want)
	}
}

func TestIndent(t *testing.T) {
	got := Indent("a\n\nb\n", 2)
	want := "  a\n\n  b\n"
	if got != want {
		t.Errorf("Indent() = %q, want %q", got, want)
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(1, "change", "changes"); got != "1 change" {
		t.Errorf("FormatCount(1) = %q", got)
	}
	if got := FormatCount(3, "change", "changes"); got != "3 changes" {
		t.Errorf("FormatCount(3) = %q", got)
	}
	if got := FormatCount(0, "change", "changes"); got != "0 changes" {
		t.Errorf("FormatCount(0) = %q", got)
	}
}

func TestFormatError(t *testing.T) {
	usePlainMode(t)

	t.Run("nil", func(t *testing.T) {
		if got := FormatError(nil); got != "" {
			t.Errorf("FormatError(nil) = %q", got)
		}
	})

	t.Run("plain_error", func(t *testing.T) {
		got := FormatError(errors.New("plain failure"))
		if !strings.HasPrefix(got, "error: ") {
			t.Errorf("FormatError() = %q, want error: prefix", got)
		}
	})

	t.Run("coded_error", func(t *testing.T) {
		err := cerr.New(cerr.ErrSchemaMismatch, "source schema is incompatible").
			WithColumn("user_id").
			WithTable("sales", "events")

		got := FormatError(err)
		if !strings.HasPrefix(got, "error[E1002]: source schema is incompatible\n") {
			t.Errorf("FormatError() = %q, want code header", got)
		}
		// Context details render as sorted pipe lines.
		colIdx := strings.Index(got, "| column: user_id")
		tblIdx := strings.Index(got, "| table: sales.events")
		if colIdx < 0 || tblIdx < 0 || colIdx > tblIdx {
			t.Errorf("context lines missing or unsorted:\n%s", got)
		}
	})

	t.Run("file_location", func(t *testing.T) {
		err := cerr.New(cerr.ErrPlanFileParse, "bad yaml").WithFile("calyx.plan.yaml", 12)
		got := FormatError(err)
		if !strings.Contains(got, "--> calyx.plan.yaml:12") {
			t.Errorf("FormatError() = %q, want --> file:line", got)
		}
	})

	t.Run("cause", func(t *testing.T) {
		err := cerr.Wrap(cerr.ErrSQLConnection, errors.New("connection refused"), "connect failed")
		got := FormatError(err)
		if !strings.Contains(got, "cause: ") {
			t.Errorf("FormatError() = %q, want cause line", got)
		}
	})
}

func TestFormatOneLiners(t *testing.T) {
	usePlainMode(t)

	if got := FormatWarning("drifted"); got != "warning: drifted\n" {
		t.Errorf("FormatWarning() = %q", got)
	}
	if got := FormatNote("fyi"); got != "note: fyi\n" {
		t.Errorf("FormatNote() = %q", got)
	}
	if got := FormatHelp("try --json"); got != "help: try --json\n" {
		t.Errorf("FormatHelp() = %q", got)
	}
	if got := FormatSuccess("applied"); got != "success: applied\n" {
		t.Errorf("FormatSuccess() = %q", got)
	}
}
