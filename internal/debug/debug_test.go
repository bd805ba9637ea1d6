package debug

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate resets package state for one test.
func isolate(t *testing.T) *bytes.Buffer {
	t.Helper()
	t.Setenv("FLATQ_DEBUG", "")
	origDebug, origMode := EnableDebug, MCPMode
	mu.Lock()
	origOut, origFile := out, logFile
	mu.Unlock()
	t.Cleanup(func() {
		EnableDebug, MCPMode = origDebug, origMode
		mu.Lock()
		out, logFile = origOut, origFile
		mu.Unlock()
	})

	EnableDebug = "false"
	MCPMode = false
	var buf bytes.Buffer
	SetDebugOutput(&buf)
	return &buf
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		env       string
		component Component
		want      bool
	}{
		{"", Codec, false},
		{"1", Codec, true},
		{"true", Watch, true},
		{"all", MCP, true},
		{"codec", Codec, true},
		{"codec", Search, false},
		{"search, Watch", Watch, true},
		{"search,watch", DocIO, false},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+string(tt.component), func(t *testing.T) {
			isolate(t)
			t.Setenv("FLATQ_DEBUG", tt.env)
			assert.Equal(t, tt.want, Enabled(tt.component))
		})
	}
}

func TestEnabledOverrides(t *testing.T) {
	isolate(t)

	EnableDebug = "true"
	assert.True(t, Enabled(Search))
	assert.True(t, IsDebugEnabled())

	MCPMode = true
	assert.False(t, Enabled(Search))
	assert.False(t, IsDebugEnabled())
}

func TestLog(t *testing.T) {
	buf := isolate(t)
	t.Setenv("FLATQ_DEBUG", "codec,mcp")

	LogCodec("flattened %d paths", 3)
	LogSearch("hidden")
	LogMCP("tool %s\n", "flatten")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[CODEC] flattened 3 paths")
	assert.Contains(t, lines[1], "[MCP] tool flatten")
}

func TestLogWithoutOutput(t *testing.T) {
	isolate(t)
	SetDebugOutput(nil)
	EnableDebug = "true"

	LogDocIO("nothing to write to")
	_ = Fatal("still returns")
}

func TestFatal(t *testing.T) {
	buf := isolate(t)

	err := Fatal("load failed: %s\n", "details")
	require.Error(t, err)
	assert.Equal(t, "fatal error: load failed: details", err.Error())
	assert.Contains(t, buf.String(), "[FATAL] load failed: details")

	buf.Reset()
	MCPMode = true
	require.Error(t, Fatal("quiet"))
	assert.Empty(t, buf.String())
}

func TestConcurrentLogging(t *testing.T) {
	buf := isolate(t)
	EnableDebug = "true"

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			LogCodec("flatten from goroutine %d", id)
			LogWatch("event from goroutine %d", id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestInitDebugLogFile(t *testing.T) {
	isolate(t)
	EnableDebug = "true"

	path, err := InitDebugLogFile()
	require.NoError(t, err)
	defer os.Remove(path)

	LogWatch("watching %s", "doc.json")
	require.NoError(t, CloseDebugLog())
	require.NoError(t, CloseDebugLog())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[WATCH] watching doc.json")
}
