package httpapi

import (
	"log"
	"net/http"
	"os"

	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, handlers fall back to
// the standard logger so the package works before SetLogger is called.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

func logInfo(msg string, fields map[string]any) {
	if zlog == nil {
		log.Printf("%s %v", msg, fields)
		return
	}
	ev := zlog.Info()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

// LogLevel selects whether a single request's submission is logged,
// independent of the process-wide default. LevelOff suppresses the
// submission log lines; every other level logs them the same way, at info.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

var defaultLogLevel = parseLevel(os.Getenv("SCHEDULERD_LOG_LEVEL"))

// requestLogLevel resolves the per-request log level: a "log" query
// param or X-Log-Level header overrides the process default, so an
// operator can turn up verbosity for one submission without restarting
// the process.
func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

func logAtLevel(lvl LogLevel, msg string, fields map[string]any) {
	if lvl == LevelOff {
		return
	}
	logInfo(msg, fields)
}
