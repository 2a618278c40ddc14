package hellocube

import (
	"fmt"
	"log"
	"os"
	"sync"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// With returns a logger that tags each message with name.
	With(name string) Logger
}

type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(os.Stdout, "", flags),
		err:    log.New(os.Stderr, "", flags),
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

func (l *DefaultLogger) prefixf(level string, format string, args ...any) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Print(l.prefixf("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.prefixf("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print(l.prefixf("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.prefixf("ERROR", format, args...))
}

func (l *DefaultLogger) With(name string) Logger {
	return &namedLogger{parent: l, name: name}
}

// namedLogger forwards to its parent with "name: " in front of the message.
// Nested names are joined with "/".
type namedLogger struct {
	parent Logger
	name   string
}

func (n *namedLogger) DebugEnabled() bool    { return n.parent.DebugEnabled() }
func (n *namedLogger) SetDebug(enabled bool) { n.parent.SetDebug(enabled) }

func (n *namedLogger) Debugf(format string, args ...any) {
	if !n.parent.DebugEnabled() {
		return
	}
	n.parent.Debugf("%s: %s", n.name, fmt.Sprintf(format, args...))
}

func (n *namedLogger) Infof(format string, args ...any) {
	n.parent.Infof("%s: %s", n.name, fmt.Sprintf(format, args...))
}

func (n *namedLogger) Warnf(format string, args ...any) {
	n.parent.Warnf("%s: %s", n.name, fmt.Sprintf(format, args...))
}

func (n *namedLogger) Errorf(format string, args ...any) {
	n.parent.Errorf("%s: %s", n.name, fmt.Sprintf(format, args...))
}

func (n *namedLogger) With(name string) Logger {
	return &namedLogger{parent: n.parent, name: n.name + "/" + name}
}

// Nop logger

type nopLogger struct{}

func NewNopLogger() Logger { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}
func (n *nopLogger) With(name string) Logger          { return n }

// OrNop returns l, or a no-op logger when l is nil. Never returns nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
