package mcp

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// DiagnosticLogger records what the MCP server does. While serving, stdout
// carries the protocol, so the log goes to a file under the temp dir.
type DiagnosticLogger struct {
	mu       sync.Mutex
	file     *os.File
	logger   *log.Logger
	filePath string
	calls    map[string]*ToolStats
}

// ToolStats counts the calls made to one tool.
type ToolStats struct {
	Calls    int           `json:"calls"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"total_duration_ns"`
}

// NewDiagnosticLogger opens a timestamped log file in dir, or in
// $TMPDIR/flatq-mcp-logs when dir is empty. A file that cannot be created
// disables logging; it never breaks the server.
func NewDiagnosticLogger(dir string) *DiagnosticLogger {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "flatq-mcp-logs")
	}
	dl := &DiagnosticLogger{calls: make(map[string]*ToolStats)}

	if err := os.MkdirAll(dir, 0755); err != nil {
		dl.logger = log.New(io.Discard, "", 0)
		return dl
	}
	logPath := filepath.Join(dir, fmt.Sprintf("mcp-%s-%d.log", time.Now().Format("2006-01-02T150405"), os.Getpid()))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		dl.logger = log.New(io.Discard, "", 0)
		return dl
	}

	dl.file = file
	dl.filePath = logPath
	dl.logger = log.New(file, "[MCP] ", log.LstdFlags|log.Lmicroseconds)
	return dl
}

// NewWriterLogger logs to w, for tests and CLI use.
func NewWriterLogger(w io.Writer) *DiagnosticLogger {
	return &DiagnosticLogger{
		logger: log.New(w, "[MCP] ", 0),
		calls:  make(map[string]*ToolStats),
	}
}

// Printf logs a diagnostic message.
func (dl *DiagnosticLogger) Printf(format string, v ...interface{}) {
	if dl == nil || dl.logger == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	dl.logger.Printf(format, v...)
}

// LogCall records one tool invocation and its outcome.
func (dl *DiagnosticLogger) LogCall(tool string, took time.Duration, err error) {
	if dl == nil || dl.logger == nil {
		return
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()

	st := dl.calls[tool]
	if st == nil {
		st = &ToolStats{}
		dl.calls[tool] = st
	}
	st.Calls++
	st.Duration += took
	if err != nil {
		st.Errors++
		dl.logger.Printf("%s failed after %s: %v", tool, took, err)
		return
	}
	dl.logger.Printf("%s ok in %s", tool, took)
}

// Stats returns a copy of the per-tool counters.
func (dl *DiagnosticLogger) Stats() map[string]ToolStats {
	out := make(map[string]ToolStats)
	if dl == nil {
		return out
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	for name, st := range dl.calls {
		out[name] = *st
	}
	return out
}

// Summary is one line per tool, sorted by name.
func (dl *DiagnosticLogger) Summary() []string {
	stats := dl.Stats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		st := stats[name]
		lines = append(lines, fmt.Sprintf("%s: %d calls, %d errors, %s", name, st.Calls, st.Errors, st.Duration))
	}
	return lines
}

// Close writes the call summary and closes the log file.
func (dl *DiagnosticLogger) Close() error {
	if dl == nil {
		return nil
	}
	for _, line := range dl.Summary() {
		dl.Printf("summary %s", line)
	}
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file == nil {
		return nil
	}
	err := dl.file.Close()
	dl.file = nil
	dl.logger = log.New(io.Discard, "", 0)
	return err
}

// Path is the log file, empty when logging to a writer or disabled.
func (dl *DiagnosticLogger) Path() string {
	if dl == nil {
		return ""
	}
	return dl.filePath
}
