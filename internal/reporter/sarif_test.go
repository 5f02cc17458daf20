package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ppiankov/kmbfeed/internal/diag"
)

func TestWriteSARIF_ValidStructure(t *testing.T) {
	report := NewReport("replay", testDiagnostics, "1.2.3")
	var buf bytes.Buffer
	if err := Write(&buf, &report, FormatSARIF); err != nil {
		t.Fatal(err)
	}

	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF JSON: %v\n%s", err, buf.String())
	}

	if log.Version != "2.1.0" {
		t.Errorf("version = %q, want 2.1.0", log.Version)
	}
	if len(log.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(log.Runs))
	}

	run := log.Runs[0]
	if run.Tool.Driver.Name != "kmbfeed" || run.Tool.Driver.Version != "1.2.3" {
		t.Errorf("driver = %+v", run.Tool.Driver)
	}
	if len(run.Tool.Driver.Rules) != 3 {
		t.Errorf("expected 3 rules, got %d", len(run.Tool.Driver.Rules))
	}
	if len(run.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(run.Results))
	}

	r0 := run.Results[0]
	if r0.RuleID != "kmbfeed/UNPARSEABLE_STATEMENT" || r0.Level != "error" {
		t.Errorf("result 0 = %+v", r0)
	}
	if fqn := r0.Locations[0].LogicalLocations[0].FullyQualifiedName; fqn != "(feed)#4" {
		t.Errorf("fqn = %q", fqn)
	}

	r1 := run.Results[1]
	if r1.Level != "warning" || !strings.Contains(r1.Message.Text, "[fields=22]") {
		t.Errorf("result 1 = %+v", r1)
	}
	if fqn := r1.Locations[0].LogicalLocations[0].FullyQualifiedName; fqn != "kmb_routestopfile#7" {
		t.Errorf("fqn = %q", fqn)
	}

	r2 := run.Results[2]
	if r2.Level != "note" {
		t.Errorf("level = %q, want note for low severity", r2.Level)
	}
	if fqn := r2.Locations[0].LogicalLocations[0].FullyQualifiedName; fqn != "kmb_RS_stopinfo" {
		t.Errorf("fqn = %q", fqn)
	}
}

func TestWriteSARIF_Empty(t *testing.T) {
	report := NewReport("replay", nil, "test")
	var buf bytes.Buffer
	if err := Write(&buf, &report, FormatSARIF); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"results": []`) {
		t.Errorf("expected empty results array, got:\n%s", buf.String())
	}
}

func TestWriteSARIF_RuleDescriptions(t *testing.T) {
	for _, typ := range []diag.Type{
		diag.TypeUnrecognizedShape, diag.TypeUnrecognizedDeleteKey, diag.TypeUnhandledStatement,
		diag.TypeRouteStopDelete, diag.TypeUnparseableStatement, diag.TypeBadCoordinates,
		diag.TypeUnknownRoute, diag.TypeDuplicateRouteStop,
	} {
		if ruleDescriptions[typ] == "" {
			t.Errorf("missing rule description for %s", typ)
		}
	}
}
