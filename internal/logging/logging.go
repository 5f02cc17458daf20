package logging

import (
	"io"
	"log/slog"
	"net/url"
	"os"
)

// Init configures the default slog logger.
// verbose=true sets LevelDebug, otherwise LevelWarn (silent unless problems).
// output defaults to os.Stderr if nil. Connection URLs logged under the
// url, db_url or redis_url keys have their password masked.
func Init(verbose bool, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(output, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redactURLs,
	})

	slog.SetDefault(slog.New(handler))
}

func redactURLs(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case "url", "db_url", "redis_url":
		if a.Value.Kind() == slog.KindString {
			return slog.String(a.Key, Redact(a.Value.String()))
		}
	}
	return a
}

// Redact masks the password of a connection URL. Unparseable input is
// returned unchanged.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
