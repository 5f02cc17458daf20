package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/kmbfeed/internal/diag"
	"github.com/ppiankov/kmbfeed/internal/tables"
)

// Format controls report output format.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatSARIF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or sarif)", s)
	}
}

// tocThreshold is the number of diagnostics above which text output starts
// with a per-table index.
const tocThreshold = 20

// Metadata holds report context.
type Metadata struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Command   string `json:"command"`
	Timestamp string `json:"timestamp"`
}

// Feed describes the replayed feed the diagnostics came from.
type Feed struct {
	Date   string        `json:"date,omitempty"`
	Stats  tables.Stats  `json:"stats"`
	Counts tables.Counts `json:"counts"`
}

// Summary counts diagnostics by severity.
type Summary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Info   int `json:"info"`
}

// Report is the top-level replay/audit output.
type Report struct {
	Metadata    Metadata          `json:"metadata"`
	Feed        *Feed             `json:"feed,omitempty"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	MaxSeverity diag.Severity     `json:"maxSeverity"`
	Summary     Summary           `json:"summary"`
}

// NewReport builds a report from diagnostics.
func NewReport(command string, diags []diag.Diagnostic, version string) Report {
	var summary Summary
	for _, d := range diags {
		summary.Total++
		switch d.Severity {
		case diag.SeverityHigh:
			summary.High++
		case diag.SeverityMedium:
			summary.Medium++
		case diag.SeverityLow:
			summary.Low++
		case diag.SeverityInfo:
			summary.Info++
		}
	}

	if diags == nil {
		diags = []diag.Diagnostic{}
	}

	return Report{
		Metadata: Metadata{
			Tool:      "kmbfeed",
			Version:   version,
			Command:   command,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
		Diagnostics: diags,
		MaxSeverity: diag.MaxSeverity(diags),
		Summary:     summary,
	}
}

// Write outputs the report in the given format.
func Write(w io.Writer, report *Report, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatSARIF:
		return writeSARIF(w, report)
	default:
		return writeText(w, report)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

var severityLabel = map[diag.Severity]string{
	diag.SeverityHigh:   "HIGH",
	diag.SeverityMedium: "MEDIUM",
	diag.SeverityLow:    "LOW",
	diag.SeverityInfo:   "INFO",
}

// location names the table a diagnostic belongs to; feed-level problems
// such as unparseable statements have none.
func location(d diag.Diagnostic) string {
	if d.Table == "" {
		return "(feed)"
	}
	return d.Table
}

func writeText(w io.Writer, report *Report) error {
	color := isTTY(w)
	paint := func(c, s string) string {
		if !color {
			return s
		}
		return c + s + colorReset
	}

	if report.Summary.Total == 0 {
		if report.Feed != nil {
			_, err := fmt.Fprintf(w, "No issues detected (replayed %d statements into %d records).\n",
				report.Feed.Stats.Statements, report.Feed.Counts.Total())
			return err
		}
		_, err := fmt.Fprintln(w, "No diagnostics.")
		return err
	}

	var order []string
	groups := make(map[string][]diag.Diagnostic)
	for _, d := range report.Diagnostics {
		loc := location(d)
		if _, ok := groups[loc]; !ok {
			order = append(order, loc)
		}
		groups[loc] = append(groups[loc], d)
	}

	if report.Summary.Total > tocThreshold {
		if _, err := fmt.Fprintln(w, "Tables with diagnostics:"); err != nil {
			return err
		}
		for _, loc := range order {
			if _, err := fmt.Fprintf(w, "  %s (%d)\n", loc, len(groups[loc])); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	for _, loc := range order {
		if _, err := fmt.Fprintln(w, paint(colorBold, loc)); err != nil {
			return err
		}
		for _, d := range groups[loc] {
			label := paint(severityColor[d.Severity], "["+severityLabel[d.Severity]+"]")
			line := fmt.Sprintf("  %s %s: %s", label, d.Type, d.Message)
			if d.Index >= 0 {
				line += fmt.Sprintf(" (statement %d)", d.Index)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
			for _, k := range sortedKeys(d.Detail) {
				if _, err := fmt.Fprintf(w, "    %s: %s\n", k, d.Detail[k]); err != nil {
					return err
				}
			}
		}
	}

	if _, err := fmt.Fprintf(w, "\nSummary: %d diagnostics (high=%d medium=%d low=%d info=%d)\n",
		report.Summary.Total, report.Summary.High, report.Summary.Medium, report.Summary.Low, report.Summary.Info); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Top types: %s\n", topTypes(report.Diagnostics, 3))
	return err
}

// topTypes lists the n most frequent diagnostic types as "TYPE=count".
func topTypes(diags []diag.Diagnostic, n int) string {
	counts := make(map[diag.Type]int)
	for _, d := range diags {
		counts[d.Type]++
	}
	types := make([]diag.Type, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})
	if len(types) > n {
		types = types[:n]
	}
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = fmt.Sprintf("%s=%d", t, counts[t])
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
