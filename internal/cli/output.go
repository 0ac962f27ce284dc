package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/videocollect/internal/services/capture"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errOut, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.out, string(data))
	} else {
		_, _ = fmt.Fprintln(o.out, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case *capture.PruneReport:
		o.printPruneReport(v)
	case MigrateResult:
		o.printMigrateResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User is the printable view of a created account
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Existing bool   `json:"existing"`
}

// MigrateResult reports the outcome of a schema migration
type MigrateResult struct {
	Migrated bool `json:"migrated"`
}

// HealthResult mirrors the API health response
type HealthResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (o *Output) printUser(u User) {
	verb := "Created"
	if u.Existing {
		verb = "Exists"
	}
	_, _ = fmt.Fprintf(o.out, "%s user: %s (%s)\n", verb, u.Username, u.Name)
	_, _ = fmt.Fprintf(o.out, "ID: %d\n", u.ID)
}

func (o *Output) printPruneReport(r *capture.PruneReport) {
	verb := "Removed"
	if r.DryRun {
		verb = "Would remove"
	}
	_, _ = fmt.Fprintf(o.out, "Scanned: %d\n", r.Scanned)
	_, _ = fmt.Fprintf(o.out, "%s: %d\n", verb, len(r.Removed))
	if len(r.Removed) > 0 {
		_, _ = fmt.Fprintf(o.out, "  %s\n", strings.Join(r.Removed, "\n  "))
	}
}

func (o *Output) printMigrateResult(m MigrateResult) {
	if m.Migrated {
		_, _ = fmt.Fprintln(o.out, "Schema applied")
		return
	}
	_, _ = fmt.Fprintln(o.out, "Nothing to migrate: storage backend has no schema")
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.out, "Status: %s\n", h.Status)
	if h.Error != "" {
		_, _ = fmt.Fprintf(o.out, "Error: %s\n", h.Error)
	}
}
