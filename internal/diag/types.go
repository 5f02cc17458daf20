package diag

// Severity indicates how urgently a diagnostic needs a human.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
	SeverityInfo   Severity = "info"
)

// Type identifies what kind of anomaly was detected.
type Type string

const (
	// Replay anomalies: recorded per statement, never fatal.
	TypeUnrecognizedShape     Type = "UNRECOGNIZED_SHAPE"
	TypeUnrecognizedDeleteKey Type = "UNRECOGNIZED_DELETE_KEY"
	TypeUnhandledStatement    Type = "UNHANDLED_STATEMENT"
	TypeRouteStopDelete       Type = "ROUTE_STOP_DELETE"
	TypeUnparseableStatement  Type = "UNPARSEABLE_STATEMENT"

	// Store audit findings.
	TypeBadCoordinates     Type = "BAD_COORDINATES"
	TypeUnknownRoute       Type = "UNKNOWN_ROUTE"
	TypeDuplicateRouteStop Type = "DUPLICATE_ROUTE_STOP"
)

// Diagnostic is a single anomaly surfaced for manual inspection.
type Diagnostic struct {
	Type      Type              `json:"type"`
	Severity  Severity          `json:"severity"`
	Table     string            `json:"table"`
	Index     int               `json:"index"`               // statement position in the feed, -1 for audit findings
	Statement string            `json:"statement,omitempty"` // raw SQL text
	Message   string            `json:"message"`
	Detail    map[string]string `json:"detail,omitempty"`
}

// DefaultSeverity returns the severity a diagnostic type is reported with.
func DefaultSeverity(t Type) Severity {
	switch t {
	case TypeUnparseableStatement:
		return SeverityHigh
	case TypeUnrecognizedShape, TypeUnrecognizedDeleteKey:
		return SeverityMedium
	case TypeUnhandledStatement, TypeBadCoordinates, TypeUnknownRoute:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

var severityOrder = map[Severity]int{
	SeverityInfo:   0,
	SeverityLow:    1,
	SeverityMedium: 2,
	SeverityHigh:   3,
}

// MaxSeverity returns the highest severity among diagnostics.
func MaxSeverity(diags []Diagnostic) Severity {
	max := SeverityInfo
	for _, d := range diags {
		if severityOrder[d.Severity] > severityOrder[max] {
			max = d.Severity
		}
	}
	return max
}

// ExitCode maps severity to a CLI exit code.
func ExitCode(s Severity) int {
	switch s {
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}
