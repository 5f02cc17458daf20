package baseline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/kmbfeed/internal/diag"
)

const deleteStmt = "DELETE FROM kmb_routestopfile WHERE route_no = '1' AND bound = '1' AND stop_seq = '3'"

func TestFingerprint_Stable(t *testing.T) {
	d := diag.Diagnostic{Type: diag.TypeRouteStopDelete, Table: "kmb_routestopfile", Statement: deleteStmt}
	if Fingerprint(&d) != Fingerprint(&d) {
		t.Error("fingerprint not stable")
	}
}

func TestFingerprint_IgnoresIndex(t *testing.T) {
	d1 := diag.Diagnostic{Type: diag.TypeRouteStopDelete, Table: "kmb_routestopfile", Statement: deleteStmt, Index: 10}
	d2 := d1
	d2.Index = 4000
	if Fingerprint(&d1) != Fingerprint(&d2) {
		t.Error("statement position should not affect the fingerprint")
	}
}

func TestFingerprint_Distinct(t *testing.T) {
	tests := []struct {
		name string
		a, b diag.Diagnostic
	}{
		{
			"table",
			diag.Diagnostic{Type: diag.TypeUnhandledStatement, Table: "kmb_routemaster"},
			diag.Diagnostic{Type: diag.TypeUnhandledStatement, Table: "kmb_specialnote"},
		},
		{
			"statement",
			diag.Diagnostic{Type: diag.TypeRouteStopDelete, Statement: "DELETE ... '1'"},
			diag.Diagnostic{Type: diag.TypeRouteStopDelete, Statement: "DELETE ... '2'"},
		},
		{
			"detail",
			diag.Diagnostic{Type: diag.TypeBadCoordinates, Detail: map[string]string{"stop_code": "A"}},
			diag.Diagnostic{Type: diag.TypeBadCoordinates, Detail: map[string]string{"stop_code": "B"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Fingerprint(&tt.a) == Fingerprint(&tt.b) {
				t.Error("different diagnostics should have different fingerprints")
			}
		})
	}
}

func TestLoad_NoFile(t *testing.T) {
	b, err := Load("/nonexistent/path.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Fingerprints) != 0 {
		t.Errorf("expected empty baseline, got %d fingerprints", len(b.Fingerprints))
	}
}

func TestSaveLoadFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")

	known := []diag.Diagnostic{
		{Type: diag.TypeRouteStopDelete, Table: "kmb_routestopfile", Statement: deleteStmt, Index: 3},
		{Type: diag.TypeRouteStopDelete, Table: "kmb_routestopfile", Statement: deleteStmt, Index: 9},
		{Type: diag.TypeBadCoordinates, Table: "kmb_RS_stopinfo", Index: -1, Detail: map[string]string{"stop_code": "A"}},
	}
	if err := Save(path, known); err != nil {
		t.Fatal(err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Fingerprints) != 2 {
		t.Errorf("expected 2 unique fingerprints, got %d", len(b.Fingerprints))
	}

	fresh := diag.Diagnostic{Type: diag.TypeUnknownRoute, Table: "kmb_routestopfile", Detail: map[string]string{"route_no": "2"}}
	next := append([]diag.Diagnostic{fresh}, known[0])
	next[1].Index = 12

	filtered, suppressed := b.Filter(next)
	if suppressed != 1 || len(filtered) != 1 || filtered[0].Type != diag.TypeUnknownRoute {
		t.Errorf("filtered = %v, suppressed = %d", filtered, suppressed)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestFilter_EmptyBaseline(t *testing.T) {
	b, _ := Load("/nonexistent/path.json")
	diags := []diag.Diagnostic{{Type: diag.TypeUnknownRoute}}
	filtered, suppressed := b.Filter(diags)
	if suppressed != 0 || len(filtered) != 1 {
		t.Errorf("filtered = %v, suppressed = %d", filtered, suppressed)
	}
}
