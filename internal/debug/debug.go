// Package debug writes opt-in diagnostic traces for the codec, search,
// watcher and MCP server. Nothing is written unless an output is set and
// tracing is enabled, and nothing is ever written while serving MCP.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Component tags a trace line.
type Component string

const (
	Codec  Component = "codec"
	Search Component = "search"
	DocIO  Component = "docio"
	Watch  Component = "watch"
	MCP    Component = "mcp"
)

// EnableDebug turns on every component; set it with
// -ldflags "-X github.com/standardbeagle/flatq/internal/debug.EnableDebug=true".
var EnableDebug = "false"

// MCPMode is set while stdio carries the MCP protocol.
var MCPMode = false

var (
	mu      sync.Mutex
	out     io.Writer
	logFile *os.File
	started = time.Now()
)

func SetMCPMode(enabled bool) {
	MCPMode = enabled
}

// SetDebugOutput routes traces to w; nil disables them.
func SetDebugOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// InitDebugLogFile sends traces to a new file under $TMPDIR/flatq-debug-logs
// and returns its path. Pair it with CloseDebugLog.
func InitDebugLogFile() (string, error) {
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Join(os.TempDir(), "flatq-debug-logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("debug-%s-%d.log", time.Now().Format("2006-01-02T150405"), os.Getpid()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}
	logFile = f
	out = f
	return path, nil
}

func CloseDebugLog() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	out = nil
	return err
}

// Enabled reports whether traces for c are on. FLATQ_DEBUG accepts "1",
// "true" or a comma separated list of components such as "codec,watch".
func Enabled(c Component) bool {
	if MCPMode {
		return false
	}
	if EnableDebug == "true" {
		return true
	}
	v := strings.TrimSpace(os.Getenv("FLATQ_DEBUG"))
	switch v {
	case "":
		return false
	case "1", "true", "all":
		return true
	}
	for _, name := range strings.Split(v, ",") {
		if Component(strings.ToLower(strings.TrimSpace(name))) == c {
			return true
		}
	}
	return false
}

// IsDebugEnabled reports whether any tracing is on.
func IsDebugEnabled() bool {
	if MCPMode {
		return false
	}
	return EnableDebug == "true" || os.Getenv("FLATQ_DEBUG") != ""
}

// emit writes one line under the lock so concurrent callers never interleave.
func emit(tag, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(out, "%8.3fs [%s] %s", time.Since(started).Seconds(), tag, msg)
}

// Log writes a trace line for c when c is enabled.
func Log(c Component, format string, args ...interface{}) {
	if !Enabled(c) {
		return
	}
	emit(strings.ToUpper(string(c)), format, args...)
}

func LogCodec(format string, args ...interface{})  { Log(Codec, format, args...) }
func LogSearch(format string, args ...interface{}) { Log(Search, format, args...) }
func LogDocIO(format string, args ...interface{})  { Log(DocIO, format, args...) }
func LogWatch(format string, args ...interface{})  { Log(Watch, format, args...) }
func LogMCP(format string, args ...interface{})    { Log(MCP, format, args...) }

// Fatal records msg in the trace output, unless serving MCP, and returns it
// as an error. The caller decides whether to exit.
func Fatal(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if !MCPMode {
		emit("FATAL", "%s", msg)
	}
	return fmt.Errorf("fatal error: %s", strings.TrimSuffix(msg, "\n"))
}
