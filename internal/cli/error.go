package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/calyxdb/calyx/internal/cerr"
)

// FormatError formats an error for CLI display in Cargo/rustc style.
// Coded errors render their code, context details, and cause; anything
// else falls back to a plain error line.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	if ce, ok := err.(*cerr.Error); ok {
		return formatCodedError(ce)
	}

	var b strings.Builder
	b.WriteString(Error("error"))
	b.WriteString(": ")
	b.WriteString(err.Error())
	b.WriteString("\n")
	return b.String()
}

// formatCodedError renders a *cerr.Error:
//
//	error[E1002]: source schema is incompatible with the target table
//	   |
//	   | column: user_id
//	   | table: sales.events
//	cause: ...
func formatCodedError(err *cerr.Error) string {
	var b strings.Builder

	b.WriteString(Error("error"))
	b.WriteString("[")
	b.WriteString(Code(string(err.GetCode())))
	b.WriteString("]: ")
	b.WriteString(err.GetMessage())
	b.WriteString("\n")

	ctx := err.GetContext()

	// File location gets the rustc arrow line.
	if file, ok := ctx["file"].(string); ok && file != "" {
		loc := file
		if line, ok := ctx["line"].(int); ok && line > 0 {
			loc = fmt.Sprintf("%s:%d", file, line)
		}
		b.WriteString("  ")
		b.WriteString(stylePipe.Render("-->"))
		b.WriteString(" ")
		b.WriteString(FilePath(loc))
		b.WriteString("\n")
	}

	// Remaining context details, sorted for stable output.
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if k == "file" || k == "line" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) > 0 {
		b.WriteString("   ")
		b.WriteString(Pipe())
		b.WriteString("\n")
		for _, k := range keys {
			b.WriteString("   ")
			b.WriteString(Pipe())
			b.WriteString(" ")
			b.WriteString(fmt.Sprintf("%s: %v", k, ctx[k]))
			b.WriteString("\n")
		}
	}

	if cause := err.GetCause(); cause != nil {
		b.WriteString(Note("cause"))
		b.WriteString(": ")
		b.WriteString(cause.Error())
		b.WriteString("\n")
	}

	return b.String()
}

// FormatWarning formats a warning message in Cargo style.
func FormatWarning(msg string) string {
	return Warning("warning") + ": " + msg + "\n"
}

// FormatNote formats a note message.
func FormatNote(msg string) string {
	return Note("note") + ": " + msg + "\n"
}

// FormatHelp formats a help message.
func FormatHelp(msg string) string {
	return Help("help") + ": " + msg + "\n"
}

// FormatSuccess formats a success message.
func FormatSuccess(msg string) string {
	return Success("success") + ": " + msg + "\n"
}
