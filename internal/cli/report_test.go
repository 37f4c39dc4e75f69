package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosniff/gosniff/internal/record"
)

func writeFixtureReport(t *testing.T) string {
	t.Helper()

	content := `{
  "session_id": "6a9d7f2e-0000-0000-0000-000000000000",
  "started_at": "2026-08-30T12:00:00Z",
  "stopped_at": "2026-08-30T12:00:05Z",
  "calls": [
    {
      "function": "greet",
      "entry_args": {"name": "Alice", "age": 25},
      "return_value": "Hello Alice, you are 25 years old!",
      "execution_time": 0.5,
      "cpu_usage": 0.1,
      "memory_usage": 2048,
      "io_operations": 4,
      "call_stack": ["greet"],
      "called_by": "<root>",
      "calls_made": [
        {
          "function": "add",
          "entry_args": {"a": 25, "b": 30},
          "return_value": 55,
          "execution_time": 0.2,
          "cpu_usage": 0.05,
          "memory_usage": 1024,
          "io_operations": 2,
          "call_stack": ["greet", "add"],
          "called_by": "greet",
          "calls_made": []
        }
      ]
    },
    {
      "function": "add",
      "entry_args": {"a": 3, "b": 7},
      "return_value": 10,
      "execution_time": 0.1,
      "cpu_usage": 0.01,
      "memory_usage": 512,
      "io_operations": 0,
      "call_stack": ["add"],
      "called_by": "<root>",
      "calls_made": []
    }
  ]
}`
	path := filepath.Join(t.TempDir(), "gosniff_calls.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadReport(t *testing.T) {
	rep, err := loadReport(writeFixtureReport(t))
	require.NoError(t, err)

	assert.Equal(t, "6a9d7f2e-0000-0000-0000-000000000000", rep.SessionID)
	require.Len(t, rep.Calls, 2)
	assert.Equal(t, "greet", rep.Calls[0].Function)
}

func TestLoadReport_MissingFile(t *testing.T) {
	_, err := loadReport(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	rep, err := loadReport(writeFixtureReport(t))
	require.NoError(t, err)

	s := summarize(rep)

	// Nested calls count too.
	assert.Equal(t, 3, s.totalCalls)
	assert.Equal(t, 2, s.uniqueFunctions)
	assert.Equal(t, "greet", s.slowestFunction)
	assert.InDelta(t, 0.5, s.slowestSeconds, 1e-9)
	assert.Equal(t, "add", s.mostCalled)
	assert.Equal(t, 2, s.mostCalledCount)
	assert.InDelta(t, (0.1+0.05+0.01)/3, s.avgCPU, 1e-9)
	assert.InDelta(t, (2048+1024+512)/3.0, s.avgMemory, 1e-9)
	assert.InDelta(t, 2.0, s.avgIO, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	s := summarize(&record.Report{StartedAt: time.Now(), StoppedAt: time.Now()})
	assert.Zero(t, s.totalCalls)
	assert.Zero(t, s.uniqueFunctions)
}

func TestReportCmd(t *testing.T) {
	path := writeFixtureReport(t)

	cmd := NewReportCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--file", path})

	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Session 6a9d7f2e")
	assert.Contains(t, out.String(), "unique functions")
}

func TestReportCmd_MissingFile(t *testing.T) {
	cmd := NewReportCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--file", filepath.Join(t.TempDir(), "nope.json")})

	assert.Error(t, cmd.Execute())
}
