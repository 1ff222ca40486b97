package epilog

import (
	"fmt"
	"io"
	"sync"
)

// Sink serializes log lines coming from concurrent workers: every worker sends
// its lines on a channel and a single goroutine writes them out.
type Sink struct {
	lines chan string
	done  chan struct{}
	once  sync.Once
}

// NewSink starts the writer goroutine; lines are written to w in arrival order.
func NewSink(w io.Writer, buffer int) *Sink {
	s := &Sink{
		lines: make(chan string, buffer),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		for line := range s.lines {
			io.WriteString(w, line)
		}
	}()
	return s
}

// Close stops accepting lines and waits until everything sent has been written.
func (s *Sink) Close() {
	s.once.Do(func() {
		close(s.lines)
	})
	<-s.done
}

// Logger returns an Interface whose lines are prefixed and sent through the sink.
func (s *Sink) Logger(prefix string) Interface {
	return sinkLogger{sink: s, prefix: prefix}
}

type sinkLogger struct {
	sink   *Sink
	prefix string
}

func (l sinkLogger) Printf(format string, v ...interface{}) {
	l.send(fmt.Sprintf(format, v...))
}

func (l sinkLogger) Println(v ...interface{}) {
	l.send(fmt.Sprint(v...))
}

func (l sinkLogger) send(msg string) {
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		msg += "\n"
	}
	l.sink.lines <- l.prefix + msg
}
