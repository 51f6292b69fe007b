// Package logging contains the singleton logger ptm uses everywhere. It
// deliberately has little else since it's a dependency of nearly every
// other package.
package logging

import (
	"os"

	logging "gopkg.in/op/go-logging.v1"
)

// Log is the singleton logger instance. We never need more than one and
// don't log the module name, so a package-level global avoids threading a
// logger through every constructor.
var Log = logging.MustGetLogger("ptm")

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatter := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} [%{level:.7s}] %{message}`,
	)
	logging.SetBackend(logging.NewBackendFormatter(backend, formatter))
	SetLevelFromEnv(os.Getenv("PTM_LOG_LEVEL"))
}

// Level re-exports the underlying library type so callers don't need to
// import gopkg.in/op/go-logging.v1 directly.
type Level = logging.Level

// Re-exports of the levels spec §6 names, plus a Quiet level that maps to
// the library's CRITICAL (nothing below it is ever emitted by ptm).
const (
	Quiet   = logging.CRITICAL
	Debug   = logging.DEBUG
	Info    = logging.INFO
	Warning = logging.WARNING
	Error   = logging.ERROR
)

// SetLevelFromEnv selects the log level named by value, defaulting to Info
// for anything unrecognised, per spec §6 ("PTM_LOG_LEVEL ... unknown
// values default to INFO").
func SetLevelFromEnv(value string) {
	var level Level
	switch value {
	case "QUIET":
		level = Quiet
	case "DEBUG":
		level = Debug
	case "WARNING":
		level = Warning
	case "ERROR":
		level = Error
	case "INFO", "":
		level = Info
	default:
		level = Info
	}
	logging.SetLevel(level, "ptm")
}
