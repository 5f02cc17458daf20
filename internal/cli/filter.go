package cli

import (
	"fmt"
	"strings"

	"github.com/ppiankov/kmbfeed/internal/baseline"
	"github.com/ppiankov/kmbfeed/internal/diag"
	"github.com/ppiankov/kmbfeed/internal/suppress"
)

// filterDiagnostics applies baseline and suppression rules to diags.
func filterDiagnostics(diags []diag.Diagnostic, baselinePath string) ([]diag.Diagnostic, int, error) {
	totalSuppressed := 0

	if baselinePath != "" {
		bl, err := baseline.Load(baselinePath)
		if err != nil {
			return nil, 0, fmt.Errorf("load baseline: %w", err)
		}
		var n int
		diags, n = bl.Filter(diags)
		totalSuppressed += n
	}

	// .kmbfeed-ignore.yml + config exclude.*
	rules, err := suppress.LoadRules(workDir())
	if err != nil {
		return nil, 0, fmt.Errorf("load suppress rules: %w", err)
	}
	rules.WithConfigTypes(cfg.Exclude.Diagnostics).WithConfigTables(cfg.Exclude.Tables)

	var n int
	diags, n = rules.Filter(diags)
	totalSuppressed += n

	return diags, totalSuppressed, nil
}

// shouldFailOn returns true if any diagnostic matches the fail-on criteria.
// Criteria can be diagnostic types (UNRECOGNIZED_SHAPE) or severity levels (high, medium).
func shouldFailOn(diags []diag.Diagnostic, failOn string) bool {
	types := make(map[string]bool)
	severities := make(map[string]bool)

	for _, p := range strings.Split(failOn, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lower := strings.ToLower(p)
		switch lower {
		case "high", "medium", "low", "info":
			severities[lower] = true
		default:
			types[strings.ToUpper(p)] = true
		}
	}

	for _, d := range diags {
		if types[string(d.Type)] || severities[string(d.Severity)] {
			return true
		}
	}
	return false
}

var severityRank = map[string]int{
	string(diag.SeverityInfo):   0,
	string(diag.SeverityLow):    1,
	string(diag.SeverityMedium): 2,
	string(diag.SeverityHigh):   3,
}

// filterBySeverity keeps diagnostics at or above minSeverity. An unknown value keeps everything.
func filterBySeverity(diags []diag.Diagnostic, minSeverity string) []diag.Diagnostic {
	threshold, ok := severityRank[strings.ToLower(minSeverity)]
	if !ok {
		return diags
	}
	var out []diag.Diagnostic
	for _, d := range diags {
		if severityRank[string(d.Severity)] >= threshold {
			out = append(out, d)
		}
	}
	return out
}
