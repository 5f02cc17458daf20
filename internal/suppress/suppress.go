package suppress

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/kmbfeed/internal/diag"
	"go.yaml.in/yaml/v3"
)

// FileName is the ignore file looked up in the config directory.
const FileName = ".kmbfeed-ignore.yml"

// Suppression is a single rule in the ignore file.
type Suppression struct {
	Table    string `yaml:"table"`
	Type     string `yaml:"type,omitempty"`
	Contains string `yaml:"contains,omitempty"` // substring of the raw statement
	Reason   string `yaml:"reason,omitempty"`
}

// IgnoreFile is the structure of .kmbfeed-ignore.yml.
type IgnoreFile struct {
	Suppressions []Suppression `yaml:"suppressions"`
}

// Rules holds loaded suppression rules from all sources.
type Rules struct {
	ignoreFile IgnoreFile
	// Types from config exclude.diagnostics
	configTypes []string
	// Tables from config exclude.tables
	configTables []string
}

// LoadRules loads suppression rules from .kmbfeed-ignore.yml in the given directory.
func LoadRules(dir string) (*Rules, error) {
	r := &Rules{}

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, &r.ignoreFile); err != nil {
		return nil, err
	}
	return r, nil
}

// WithConfigTypes adds diagnostic-type suppressions from config.
func (r *Rules) WithConfigTypes(types []string) *Rules {
	r.configTypes = types
	return r
}

// WithConfigTables adds table suppressions from config. Patterns accept a
// trailing wildcard.
func (r *Rules) WithConfigTables(tables []string) *Rules {
	r.configTables = tables
	return r
}

// IsSuppressed returns true if the diagnostic should be suppressed.
func (r *Rules) IsSuppressed(d *diag.Diagnostic) bool {
	for _, t := range r.configTypes {
		if strings.EqualFold(string(d.Type), t) {
			return true
		}
	}
	for _, p := range r.configTables {
		if d.Table != "" && matchTable(p, d.Table) {
			return true
		}
	}

	for _, s := range r.ignoreFile.Suppressions {
		if s.Table != "" && !matchTable(s.Table, d.Table) {
			continue
		}
		if s.Type != "" && !strings.EqualFold(s.Type, string(d.Type)) {
			continue
		}
		if s.Contains != "" && !strings.Contains(d.Statement, s.Contains) {
			continue
		}
		if s.Table == "" && s.Type == "" && s.Contains == "" {
			continue
		}
		return true
	}

	return false
}

// Filter removes suppressed diagnostics and returns the remaining ones.
// Returns the filtered list and the number of suppressed diagnostics.
func (r *Rules) Filter(diags []diag.Diagnostic) ([]diag.Diagnostic, int) {
	if len(r.ignoreFile.Suppressions) == 0 && len(r.configTypes) == 0 && len(r.configTables) == 0 {
		return diags, 0
	}

	var filtered []diag.Diagnostic
	suppressed := 0
	for i := range diags {
		if r.IsSuppressed(&diags[i]) {
			suppressed++
		} else {
			filtered = append(filtered, diags[i])
		}
	}
	return filtered, suppressed
}

// matchTable matches a table name against a pattern that supports trailing wildcards.
func matchTable(pattern, table string) bool {
	pattern = strings.ToLower(pattern)
	table = strings.ToLower(table)

	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(table, prefix)
	}
	return pattern == table
}
