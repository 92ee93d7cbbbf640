package player

import "log"

// Logger is the minimal logging sink the player writes decode and sync
// warnings to. *log.Logger already satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

var pkgLogger Logger = log.Default()

// SetLogger replaces the package-wide logger. Call it before creating any
// Player if you want to capture its diagnostic output.
func SetLogger(logger Logger) {
	pkgLogger = logger
}
