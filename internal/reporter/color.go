package reporter

import (
	"io"
	"os"

	"github.com/ppiankov/kmbfeed/internal/diag"
)

// ANSI escape codes for severity colors.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[37m"
	colorBold   = "\033[1m"
)

var severityColor = map[diag.Severity]string{
	diag.SeverityHigh:   colorRed,
	diag.SeverityMedium: colorYellow,
	diag.SeverityLow:    colorCyan,
	diag.SeverityInfo:   colorGray,
}

// isTTY returns true if the writer is a terminal and NO_COLOR is unset.
func isTTY(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
