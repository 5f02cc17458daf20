package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/kmbfeed/internal/analyzer"
	"github.com/ppiankov/kmbfeed/internal/baseline"
	"github.com/ppiankov/kmbfeed/internal/diag"
	"github.com/ppiankov/kmbfeed/internal/kmb"
	"github.com/ppiankov/kmbfeed/internal/reporter"
)

const (
	showDiagnostics = "diagnostics"
	showTables      = "tables"
)

// reportFlags are shared by replay and audit.
type reportFlags struct {
	file           string
	date           string
	format         string
	show           string
	minSeverity    string
	failOn         string
	baselinePath   string
	updateBaseline string
}

func (f *reportFlags) register(cmd *cobra.Command, withShow bool) {
	cmd.Flags().StringVar(&f.file, "file", "", "read the feed document from a file instead of downloading it")
	cmd.Flags().StringVar(&f.date, "date", "", "feed date as YYYYMMDD (default: today in Hong Kong)")
	cmd.Flags().StringVar(&f.format, "format", "text", "output format: text, json, or sarif")
	if withShow {
		cmd.Flags().StringVar(&f.show, "show", showDiagnostics, "what to print: diagnostics or tables")
	}
	cmd.Flags().StringVar(&f.minSeverity, "min-severity", "", "only report diagnostics at or above this severity")
	cmd.Flags().StringVar(&f.failOn, "fail-on", "", "exit 2 if diagnostics match (comma-separated types or severity: high,medium)")
	cmd.Flags().StringVar(&f.baselinePath, "baseline", "", "path to baseline file (suppress known diagnostics)")
	cmd.Flags().StringVar(&f.updateBaseline, "update-baseline", "", "save current diagnostics as new baseline")
}

func newReplayCmd() *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the POI feed into tables and report statement anomalies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, "replay", &f, false)
		},
	}
	f.register(cmd, true)
	return cmd
}

func newAuditCmd() *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Replay the POI feed and check the resulting tables for consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, "audit", &f, true)
		},
	}
	f.register(cmd, false)
	return cmd
}

func runReport(cmd *cobra.Command, command string, f *reportFlags, audit bool) error {
	// Use config format as default if flag not explicitly set
	if !cmd.Flags().Changed("format") && cfg.Defaults.Format != "" {
		f.format = cfg.Defaults.Format
	}
	format, err := reporter.ParseFormat(f.format)
	if err != nil {
		return err
	}
	if f.show != "" && f.show != showDiagnostics && f.show != showTables {
		return fmt.Errorf("unknown --show %q (want diagnostics or tables)", f.show)
	}
	day, err := feedDay(f.date)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration())
	defer cancel()

	data, err := readFeed(ctx, f.file, day)
	if err != nil {
		return err
	}
	res, err := replayFeed(data)
	if err != nil {
		return err
	}

	if f.show == showTables {
		return reporter.WriteTables(cmd.OutOrStdout(), res.Store, format)
	}

	diags := res.Diagnostics
	if audit {
		opts := analyzer.DefaultAuditOptions()
		opts.ExcludeTables = cfg.Exclude.Tables
		found := analyzer.Audit(res.Store, opts)
		slog.Info("audit complete", "diagnostics", len(found))
		diags = append(diags, found...)
	}

	return writeDiagnostics(cmd, command, f, format, diags, &reporter.Feed{
		Date:   feedDate(f, day),
		Stats:  res.Stats,
		Counts: res.Store.Counts(),
	})
}

// feedDate labels the report. A local file carries no date unless --date names one.
func feedDate(f *reportFlags, day time.Time) string {
	if f.file != "" && f.date == "" {
		return ""
	}
	return kmb.FeedDate(day)
}

// writeDiagnostics saves the baseline, filters, writes the report and
// applies --fail-on.
func writeDiagnostics(cmd *cobra.Command, command string, f *reportFlags, format reporter.Format, diags []diag.Diagnostic, feed *reporter.Feed) error {
	// Save baseline before filtering
	if f.updateBaseline != "" {
		if err := baseline.Save(f.updateBaseline, diags); err != nil {
			return fmt.Errorf("save baseline: %w", err)
		}
		slog.Info("baseline saved", "path", f.updateBaseline, "diagnostics", len(diags))
	}

	diags, totalSuppressed, err := filterDiagnostics(diags, f.baselinePath)
	if err != nil {
		return err
	}
	if f.minSeverity != "" {
		diags = filterBySeverity(diags, f.minSeverity)
	}

	report := reporter.NewReport(command, diags, build.Version)
	report.Feed = feed
	if totalSuppressed > 0 {
		slog.Info("diagnostics filtered", "total", report.Summary.Total+totalSuppressed, "suppressed", totalSuppressed)
	}

	if err := reporter.Write(cmd.OutOrStdout(), &report, format); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if f.failOn != "" && shouldFailOn(diags, f.failOn) {
		return &ExitError{Code: 2}
	}
	return nil
}
