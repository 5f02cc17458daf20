package baseline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/kmbfeed/internal/diag"
)

// Baseline holds fingerprints of previously seen diagnostics.
type Baseline struct {
	Fingerprints []string `json:"fingerprints"`
	set          map[string]bool
}

// Load reads a baseline file. Returns an empty baseline if the file does not exist.
func Load(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Baseline{set: make(map[string]bool)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse baseline: %w", err)
	}
	b.set = make(map[string]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		b.set[fp] = true
	}
	return &b, nil
}

// Save writes the baseline to a file.
func Save(path string, diags []diag.Diagnostic) error {
	fps := make([]string, 0, len(diags))
	seen := make(map[string]bool)
	for i := range diags {
		fp := Fingerprint(&diags[i])
		if !seen[fp] {
			fps = append(fps, fp)
			seen[fp] = true
		}
	}
	sort.Strings(fps)

	b := Baseline{Fingerprints: fps}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// Contains returns true if the diagnostic's fingerprint is in the baseline.
func (b *Baseline) Contains(d *diag.Diagnostic) bool {
	return b.set[Fingerprint(d)]
}

// Filter removes baselined diagnostics and returns the remaining ones.
// Returns the filtered list and the number of suppressed diagnostics.
func (b *Baseline) Filter(diags []diag.Diagnostic) ([]diag.Diagnostic, int) {
	if len(b.set) == 0 {
		return diags, 0
	}

	var filtered []diag.Diagnostic
	suppressed := 0
	for i := range diags {
		if b.Contains(&diags[i]) {
			suppressed++
		} else {
			filtered = append(filtered, diags[i])
		}
	}
	return filtered, suppressed
}

// Fingerprint computes a stable identifier for a diagnostic. The statement
// position is left out because it shifts from one day's feed to the next.
func Fingerprint(d *diag.Diagnostic) string {
	keys := make([]string, 0, len(d.Detail))
	for k := range d.Detail {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + d.Detail[k]
	}

	key := fmt.Sprintf("%s|%s|%s|%s", d.Type, strings.ToLower(d.Table), d.Statement, strings.Join(pairs, ","))
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h[:16])
}
