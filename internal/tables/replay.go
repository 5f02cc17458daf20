package tables

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/kmbfeed/internal/diag"
	"github.com/ppiankov/kmbfeed/internal/sqlstmt"
)

// Options tunes a replay pass.
type Options struct {
	// SkipUnparseable turns classifier failures into diagnostics instead of
	// aborting the pass.
	SkipUnparseable bool `yaml:"skip_unparseable"`
	// ApplyRouteStopDeletes removes the first route-stop record matching a
	// DELETE key. Without it such deletes are only reported.
	ApplyRouteStopDeletes bool `yaml:"apply_route_stop_deletes"`
}

// Stats counts what happened to each statement in a pass. Flagged counts
// every statement that raised a diagnostic, including info-level reports
// such as a route-stop delete that was logged but not applied.
type Stats struct {
	Statements int `json:"statements"`
	Applied    int `json:"applied"`
	Skipped    int `json:"skipped"`
	Blank      int `json:"blank"`
	Flagged    int `json:"flagged"`
}

// Result is the outcome of one replay pass.
type Result struct {
	Store       *Store            `json:"tables"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	Stats       Stats             `json:"stats"`
}

// StatementError reports a statement the classifier rejected.
type StatementError struct {
	Index int
	Raw   string
	Err   error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d: %v", e.Index, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// collector gathers diagnostics and mirrors them to the debug log.
type collector struct {
	diags []diag.Diagnostic
}

func (c *collector) Report(d diag.Diagnostic) {
	slog.Debug("statement flagged", "table", d.Table, "index", d.Index, "type", d.Type, "message", d.Message)
	c.diags = append(c.diags, d)
}

// Replay applies statements in feed order to a fresh Store.
// Blank lines are ignored. Statements for tables without a handler are
// skipped. Only a classifier failure can stop the pass, and only when
// opts.SkipUnparseable is false.
func Replay(statements []string, opts Options) (*Result, error) {
	store := NewStore()
	router := NewRouter(store, opts)
	col := &collector{}
	var stats Stats

	for i, raw := range statements {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			stats.Blank++
			continue
		}
		stats.Statements++

		stmt, err := sqlstmt.Classify(raw)
		if err != nil {
			if !opts.SkipUnparseable {
				return nil, &StatementError{Index: i, Raw: raw, Err: err}
			}
			col.Report(diag.Diagnostic{
				Type:      diag.TypeUnparseableStatement,
				Severity:  diag.DefaultSeverity(diag.TypeUnparseableStatement),
				Index:     i,
				Statement: raw,
				Message:   err.Error(),
			})
			stats.Flagged++
			continue
		}

		before := len(col.diags)
		if !router.Route(i, stmt, col) {
			slog.Debug("statement skipped", "table", stmt.Table, "index", i)
			stats.Skipped++
			continue
		}
		if len(col.diags) > before {
			stats.Flagged++
		} else {
			stats.Applied++
		}
	}

	return &Result{Store: store, Diagnostics: col.diags, Stats: stats}, nil
}
