package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosniff/gosniff/internal/record"
	"github.com/gosniff/gosniff/internal/testutil"
)

func sampleReport() *record.Report {
	return &record.Report{
		SessionID: "b7b361f4-0000-0000-0000-000000000000",
		StartedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		StoppedAt: time.Date(2026, 8, 30, 12, 0, 5, 0, time.UTC),
		Calls: []*record.CallRecord{
			{
				Function:      "add",
				EntryArgs:     map[string]any{"a": 3, "b": 7},
				ReturnValue:   10,
				ExecutionTime: 0.001,
				CallStack:     []string{"add"},
				CalledBy:      record.RootMarker,
				CallsMade: []*record.CallRecord{
					{
						Function:  "carry",
						EntryArgs: map[string]any{},
						CallStack: []string{"add", "carry"},
						CalledBy:  "add",
						CallsMade: []*record.CallRecord{},
					},
				},
			},
		},
	}
}

func TestLogSink_Emit(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	s := NewLogSink(logger)
	s.Emit(sampleReport().Calls[0])

	out := buf.String()
	assert.Contains(t, out, `"function":"add"`)
	assert.Contains(t, out, "Call completed")
	assert.Contains(t, out, `"called_by":"<root>"`)
}

func TestLogSink_Flush(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(zerolog.New(&buf))

	require.NoError(t, s.Flush(sampleReport()))
	assert.Contains(t, buf.String(), `"root_calls":1`)
}

func TestJSONSink_Flush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gosniff_calls.json")
	s := NewJSONSink(path, testutil.NewTestLogger(t))

	require.NoError(t, s.Flush(sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rep record.Report
	require.NoError(t, json.Unmarshal(data, &rep))

	require.Len(t, rep.Calls, 1)
	assert.Equal(t, "add", rep.Calls[0].Function)
	require.Len(t, rep.Calls[0].CallsMade, 1)
	assert.Equal(t, "carry", rep.Calls[0].CallsMade[0].Function)
	assert.Equal(t, []string{"add", "carry"}, rep.Calls[0].CallsMade[0].CallStack)
}

func TestJSONSink_FlushBadPath(t *testing.T) {
	s := NewJSONSink(filepath.Join(t.TempDir(), "missing", "out.json"), testutil.NewTestLogger(t))
	assert.Error(t, s.Flush(sampleReport()))
}

func TestDispatcher(t *testing.T) {
	var logBuf bytes.Buffer
	path := filepath.Join(t.TempDir(), "calls.json")

	d := NewDispatcher(
		NewLogSink(zerolog.New(&logBuf)),
		NewJSONSink(path, testutil.NewTestLogger(t)),
	)

	rep := sampleReport()
	d.Emit(rep.Calls[0])
	require.NoError(t, d.Flush(rep))

	assert.True(t, strings.Contains(logBuf.String(), "Call completed"))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestDispatcher_FlushPropagatesError(t *testing.T) {
	d := NewDispatcher(
		NewJSONSink(filepath.Join(t.TempDir(), "missing", "out.json"), testutil.NewTestLogger(t)),
	)
	assert.Error(t, d.Flush(sampleReport()))
}
