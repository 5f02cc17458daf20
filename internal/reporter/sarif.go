package reporter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ppiankov/kmbfeed/internal/diag"
)

// SARIF 2.1.0 types, minimal subset for valid output.

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string            `json:"id"`
	ShortDescription sarifMessage      `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaults `json:"defaultConfiguration"`
}

type sarifRuleDefaults struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	LogicalLocations []sarifLogicalLocation `json:"logicalLocations,omitempty"`
}

type sarifLogicalLocation struct {
	Name               string `json:"name"`
	FullyQualifiedName string `json:"fullyQualifiedName"`
	Kind               string `json:"kind"`
}

var ruleDescriptions = map[diag.Type]string{
	diag.TypeUnrecognizedShape:     "Statement row has no known field mapping for its table",
	diag.TypeUnrecognizedDeleteKey: "DELETE filters on a column the table is not keyed by",
	diag.TypeUnhandledStatement:    "Statement kind is not applied to this table",
	diag.TypeRouteStopDelete:       "Route-stop DELETE surfaced for manual inspection",
	diag.TypeUnparseableStatement:  "Statement could not be parsed as SQL",
	diag.TypeBadCoordinates:        "Stop coordinates are not numeric or lie outside the service area",
	diag.TypeUnknownRoute:          "Route stops reference a route missing from the route master",
	diag.TypeDuplicateRouteStop:    "Route stop key appears more than once",
}

var severityToLevel = map[diag.Severity]string{
	diag.SeverityHigh:   "error",
	diag.SeverityMedium: "warning",
	diag.SeverityLow:    "note",
	diag.SeverityInfo:   "note",
}

const (
	sarifToolName = "kmbfeed"
	sarifToolURI  = "https://github.com/ppiankov/kmbfeed"
)

func writeSARIF(w io.Writer, report *Report) error {
	// Collect unique rule IDs in first-seen order
	var ruleOrder []diag.Type
	ruleSet := make(map[diag.Type]bool)
	for _, d := range report.Diagnostics {
		if !ruleSet[d.Type] {
			ruleSet[d.Type] = true
			ruleOrder = append(ruleOrder, d.Type)
		}
	}

	rules := make([]sarifRule, 0, len(ruleOrder))
	for _, t := range ruleOrder {
		desc := ruleDescriptions[t]
		if desc == "" {
			desc = string(t)
		}
		level := severityToLevel[diag.DefaultSeverity(t)]
		rules = append(rules, sarifRule{
			ID:               sarifToolName + "/" + string(t),
			ShortDescription: sarifMessage{Text: desc},
			DefaultConfig:    sarifRuleDefaults{Level: level},
		})
	}

	results := make([]sarifResult, 0, len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		level := severityToLevel[d.Severity]
		if level == "" {
			level = "note"
		}

		fqn := location(d)
		if d.Index >= 0 {
			fqn += fmt.Sprintf("#%d", d.Index)
		}

		msgText := d.Message
		for _, k := range sortedKeys(d.Detail) {
			msgText += fmt.Sprintf(" [%s=%s]", k, d.Detail[k])
		}

		results = append(results, sarifResult{
			RuleID:  sarifToolName + "/" + string(d.Type),
			Level:   level,
			Message: sarifMessage{Text: msgText},
			Locations: []sarifLocation{
				{
					LogicalLocations: []sarifLogicalLocation{
						{
							Name:               location(d),
							FullyQualifiedName: fqn,
							Kind:               "feed/table",
						},
					},
				},
			},
		})
	}

	log := sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           sarifToolName,
						Version:        report.Metadata.Version,
						InformationURI: sarifToolURI,
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(log); err != nil {
		return fmt.Errorf("encode SARIF: %w", err)
	}
	return nil
}
