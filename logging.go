package hashsig

import "log"

// Logger receives diagnostic messages from container and signer lifecycle
// events (lock acquisition, state persistence). It is never consulted on
// the hot sign/verify path.
type Logger interface {
	Logf(format string, a ...interface{})
}

type dummyLogger struct{}

func (dummyLogger) Logf(format string, a ...interface{}) {}

type stdlibLogger struct{}

func (stdlibLogger) Logf(format string, a ...interface{}) {
	log.Printf(format, a...)
}

var pkgLogger Logger = dummyLogger{}

// SetLogger installs l as the package-wide logger. Passing nil restores
// the no-op default.
func SetLogger(l Logger) {
	if l == nil {
		pkgLogger = dummyLogger{}
		return
	}
	pkgLogger = l
}

// EnableLogging is a convenience for SetLogger(stdlibLogger{}).
func EnableLogging() {
	pkgLogger = stdlibLogger{}
}
