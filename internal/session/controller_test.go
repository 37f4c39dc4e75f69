package session

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosniff/gosniff/internal/config"
	"github.com/gosniff/gosniff/internal/record"
)

// testConfig returns a valid config writing its JSON report into a temp dir
// and keeping log output out of the test's way.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.EnableLog = false
	cfg.LogToFile = false
	cfg.JSONFilename = filepath.Join(t.TempDir(), "gosniff_calls.json")
	cfg.EntryValue = true
	cfg.ReturnValue = true
	return cfg
}

func newTestController() *Controller {
	return NewController(WithOutput(io.Discard))
}

func readReport(t *testing.T, path string) *record.Report {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rep record.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	return &rep
}

func args(m map[string]any) func() map[string]any {
	return func() map[string]any { return m }
}

func TestStartStop_EmptySession(t *testing.T) {
	c := newTestController()
	cfg := testConfig(t)

	require.NoError(t, c.Start(cfg))
	assert.True(t, c.Active())
	require.NoError(t, c.Stop())
	assert.False(t, c.Active())

	rep := readReport(t, cfg.JSONFilename)
	assert.NotEmpty(t, rep.SessionID)
	assert.Empty(t, rep.Calls)
}

func TestStart_WhileActiveIsNoOp(t *testing.T) {
	c := newTestController()
	cfg := testConfig(t)

	require.NoError(t, c.Start(cfg))
	call := c.Enter("work", "main", args(map[string]any{}))
	require.NotNil(t, call)

	// Second start must not reset in-flight state.
	require.NoError(t, c.Start(testConfig(t)))
	c.Exit(call, record.Outcome{Value: 1})
	require.NoError(t, c.Stop())

	rep := readReport(t, cfg.JSONFilename)
	require.Len(t, rep.Calls, 1)
	assert.Equal(t, "work", rep.Calls[0].Function)
}

func TestStop_WhileIdleIsNoOp(t *testing.T) {
	c := newTestController()
	assert.NoError(t, c.Stop())
	assert.NoError(t, c.Stop())
}

func TestStart_InvalidConfigFailsFast(t *testing.T) {
	c := newTestController()
	cfg := testConfig(t)
	cfg.LogLevel = "verbose"

	assert.Error(t, c.Start(cfg))
	assert.False(t, c.Active())
}

func TestStart_DisabledConfigIsNoOp(t *testing.T) {
	c := newTestController()
	cfg := testConfig(t)
	cfg.Enable = false

	require.NoError(t, c.Start(cfg))
	assert.False(t, c.Active())
	assert.Nil(t, c.Enter("work", "main", args(map[string]any{})))
}

func TestEnter_WhileIdleReturnsNil(t *testing.T) {
	c := newTestController()
	assert.Nil(t, c.Enter("work", "main", args(map[string]any{})))
	// Exit with nil handle must be harmless.
	c.Exit(nil, record.Outcome{})
}

func TestEnterExit_RecordedInReport(t *testing.T) {
	c := newTestController()
	cfg := testConfig(t)
	require.NoError(t, c.Start(cfg))

	call := c.Enter("add", "main", args(map[string]any{"a": 3, "b": 7}))
	require.NotNil(t, call)
	c.Exit(call, record.Outcome{Value: 10})

	require.NoError(t, c.Stop())

	rep := readReport(t, cfg.JSONFilename)
	require.Len(t, rep.Calls, 1)
	rec := rep.Calls[0]
	assert.Equal(t, "add", rec.Function)
	assert.Equal(t, []string{"add"}, rec.CallStack)
	assert.Equal(t, record.RootMarker, rec.CalledBy)
	// JSON numbers decode as float64.
	assert.EqualValues(t, 3, rec.EntryArgs["a"])
	assert.EqualValues(t, 10, rec.ReturnValue)
	assert.Empty(t, rec.CallsMade)
}

func TestEnter_FilteredOrigin(t *testing.T) {
	c := newTestController()
	cfg := testConfig(t)
	cfg.IgnoredModules = []string{"net/http"}
	require.NoError(t, c.Start(cfg))

	assert.Nil(t, c.Enter("handler", "net/http", args(map[string]any{})))

	call := c.Enter("work", "main", args(map[string]any{}))
	require.NotNil(t, call)
	c.Exit(call, record.Outcome{})

	require.NoError(t, c.Stop())
	rep := readReport(t, cfg.JSONFilename)
	require.Len(t, rep.Calls, 1)
	assert.Equal(t, "work", rep.Calls[0].Function)
}

func TestStop_TruncatesOpenCalls(t *testing.T) {
	c := newTestController()
	cfg := testConfig(t)
	require.NoError(t, c.Start(cfg))

	outer := c.Enter("outer", "main", args(map[string]any{}))
	inner := c.Enter("inner", "main", args(map[string]any{}))
	require.NotNil(t, outer)
	require.NotNil(t, inner)

	require.NoError(t, c.Stop())

	rep := readReport(t, cfg.JSONFilename)
	require.Len(t, rep.Calls, 1)
	assert.Equal(t, "outer", rep.Calls[0].Function)
	assert.Equal(t, record.TruncatedMarker, rep.Calls[0].ReturnValue)
	require.Len(t, rep.Calls[0].CallsMade, 1)
	assert.Equal(t, record.TruncatedMarker, rep.Calls[0].CallsMade[0].ReturnValue)

	// The in-flight call's own exit after stop is a silent no-op.
	c.Exit(inner, record.Outcome{Value: 1})
	c.Exit(outer, record.Outcome{Value: 2})
}

func TestExit_MismatchedPopFailsClosed(t *testing.T) {
	c := newTestController()
	cfg := testConfig(t)
	require.NoError(t, c.Start(cfg))

	outer := c.Enter("outer", "main", args(map[string]any{}))
	inner := c.Enter("inner", "main", args(map[string]any{}))
	require.NotNil(t, inner)

	// Closing outer before inner corrupts the stack: the session must stop
	// and flush rather than emit corrupted records silently.
	c.Exit(outer, record.Outcome{})

	assert.False(t, c.Active())

	// The flushed report still exists, with the open frames truncated.
	rep := readReport(t, cfg.JSONFilename)
	require.Len(t, rep.Calls, 1)
	assert.Equal(t, "outer", rep.Calls[0].Function)
}

func TestSessionReset_BetweenRuns(t *testing.T) {
	c := newTestController()

	cfg1 := testConfig(t)
	require.NoError(t, c.Start(cfg1))
	call := c.Enter("first", "main", args(map[string]any{}))
	c.Exit(call, record.Outcome{})
	require.NoError(t, c.Stop())

	cfg2 := testConfig(t)
	require.NoError(t, c.Start(cfg2))
	call = c.Enter("second", "main", args(map[string]any{}))
	c.Exit(call, record.Outcome{})
	require.NoError(t, c.Stop())

	rep1 := readReport(t, cfg1.JSONFilename)
	rep2 := readReport(t, cfg2.JSONFilename)

	require.Len(t, rep1.Calls, 1)
	require.Len(t, rep2.Calls, 1)
	assert.Equal(t, "first", rep1.Calls[0].Function)
	assert.Equal(t, "second", rep2.Calls[0].Function)
	assert.NotEqual(t, rep1.SessionID, rep2.SessionID)
}

func TestExecutionTime_CoversChildren(t *testing.T) {
	c := newTestController()
	cfg := testConfig(t)
	require.NoError(t, c.Start(cfg))

	outer := c.Enter("outer", "main", args(map[string]any{}))
	for i := 0; i < 3; i++ {
		child := c.Enter("child", "main", args(map[string]any{}))
		c.Exit(child, record.Outcome{})
	}
	c.Exit(outer, record.Outcome{})
	require.NoError(t, c.Stop())

	rep := readReport(t, cfg.JSONFilename)
	require.Len(t, rep.Calls, 1)
	parent := rep.Calls[0]
	require.Len(t, parent.CallsMade, 3)

	var childSum float64
	for _, ch := range parent.CallsMade {
		childSum += ch.ExecutionTime
	}
	assert.GreaterOrEqual(t, parent.ExecutionTime, childSum)
}
