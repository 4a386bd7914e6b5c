// Package debug provides conditional diagnostics logging for the overlay engine.
//
// Diagnostics are enabled by setting the CONSTELLATION_DEBUG environment
// variable, or programmatically by a host running in a non-production mode:
//
//	CONSTELLATION_DEBUG=1 code --extensionDevelopmentPath=.
//
// When enabled, lines are written to stderr with timestamps. When disabled
// (default), all functions are no-ops.
//
// Overlay lifecycle events are single lines of space-joined key=value tokens:
//
//	debug.Event("overlay.apply", "id", o.Meta().ID, "kind", o.Kind())
//	// [CONSTELLATION] 10:04:05.123456 event=overlay.apply id=f1 kind=focus
//
// The format is meant for humans reading a dev console; it is not a stable
// machine-readable contract.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const prefix = "[CONSTELLATION] "

var (
	mu sync.Mutex
	// enabled is true when CONSTELLATION_DEBUG is set
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("CONSTELLATION_DEBUG") != "" {
		enabled = true
		logger = newLogger(os.Stderr)
	}
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, prefix, log.Ltime|log.Lmicroseconds)
}

// Enabled returns whether diagnostics are enabled.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled allows programmatic control of diagnostics.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = newLogger(os.Stderr)
	}
}

// SetOutput redirects diagnostics to w and returns a function restoring the
// previous destination. Tests use it to capture lines.
func SetOutput(w io.Writer) func() {
	mu.Lock()
	defer mu.Unlock()
	prev := logger
	logger = newLogger(w)
	return func() {
		mu.Lock()
		defer mu.Unlock()
		logger = prev
	}
}

func output(s string) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled || logger == nil {
		return
	}
	logger.Print(s)
}

// Log writes a printf-style message if diagnostics are enabled.
func Log(format string, args ...any) {
	if !Enabled() {
		return
	}
	output(fmt.Sprintf(format, args...))
}

// LogTiming writes a timing message if diagnostics are enabled.
func LogTiming(name string, d time.Duration) {
	if !Enabled() {
		return
	}
	output(fmt.Sprintf("%s took %v", name, d))
}

// Event writes one lifecycle line: event=<name> followed by the key/value
// pairs in kv. A trailing key without a value is logged with an empty value.
func Event(name string, kv ...any) {
	if !Enabled() {
		return
	}
	output(FormatEvent(name, kv...))
}

// FormatEvent renders the line written by Event without the log prefix.
func FormatEvent(name string, kv ...any) string {
	var sb strings.Builder
	sb.WriteString("event=")
	sb.WriteString(formatValue(name))
	for i := 0; i < len(kv); i += 2 {
		sb.WriteByte(' ')
		sb.WriteString(fmt.Sprint(kv[i]))
		sb.WriteByte('=')
		if i+1 < len(kv) {
			sb.WriteString(formatValue(kv[i+1]))
		}
	}
	return sb.String()
}

func formatValue(v any) string {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case time.Duration:
		s = x.String()
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// LogEnterExit logs function entry and exit with timing.
//
//	func compose() {
//	    defer debug.LogEnterExit("compose")()
//	}
func LogEnterExit(name string) func() {
	if !Enabled() {
		return func() {}
	}
	output("-> " + name)
	start := time.Now()
	return func() {
		output(fmt.Sprintf("<- %s (%v)", name, time.Since(start)))
	}
}
