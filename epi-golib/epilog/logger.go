package epilog

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/epiclass/epiatlas/epi-golib/envutil"
)

var (
	run   = envutil.GetenvDefault("EPIATLAS_RUN", "")
	flags = log.LstdFlags | log.Lshortfile | log.Lmicroseconds
)

func prefixFor(component string) string {
	if run == "" {
		return fmt.Sprintf("[%s] ", component)
	}
	return fmt.Sprintf("[%s run=%s] ", component, run)
}

// Basic prefixes log lines with the pipeline name and the run identifier, if any
var Basic = New(os.Stderr, "epiatlas")

// New creates a Logger writing to w with the given component prefix
func New(w io.Writer, component string) *Logger {
	return &Logger{
		Default: log.New(w, prefixFor(component), flags),
	}
}

// ForSplit creates a Logger whose lines are tagged with the cross-validation split number
func ForSplit(w io.Writer, split int) *Logger {
	return New(w, fmt.Sprintf("epiatlas split=%d", split))
}

// SetupStd configures the standard log package for binaries still using it
func SetupStd(component string) {
	log.SetPrefix(prefixFor(component))
	log.SetFlags(flags)
}

// Logger encapsulates multiple logging handlers
type Logger struct {
	Default   *log.Logger
	Durations Durations
}

// Interface encapsulates the relevant methods of log.Logger
type Interface interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Printf implements Interface
func (l *Logger) Printf(format string, v ...interface{}) {
	l.Default.Output(2, fmt.Sprintf(format, v...))
}

// Println implements Interface
func (l *Logger) Println(v ...interface{}) {
	l.Default.Output(2, fmt.Sprintln(v...))
}

// Discard is an Interface that drops everything
var Discard Interface = discard{}

type discard struct{}

func (discard) Printf(string, ...interface{}) {}
func (discard) Println(...interface{})        {}
