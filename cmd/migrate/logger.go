package migrate

import (
	"fmt"
	"io"
	"os"

	"github.com/golang-migrate/migrate/v4"
)

var _ migrate.Logger = (*consoleLogger)(nil)

type consoleLogger struct {
	w       io.Writer
	prefix  string
	verbose bool
}

func newConsoleLogger(module string) *consoleLogger {
	return &consoleLogger{
		w:      os.Stdout,
		prefix: fmt.Sprintf("[%s] ", module),
	}
}

func (l *consoleLogger) Printf(format string, v ...interface{}) {
	fmt.Fprintf(l.w, l.prefix+format, v...)
}

func (l *consoleLogger) Verbose() bool {
	return l.verbose
}
