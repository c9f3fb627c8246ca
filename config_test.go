package workqueue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadOptionsYAML(t *testing.T) {
	path := writeConfig(t, "workers.yaml", `
workers:
  pool_size: 3
  signal_capacity: 64
  overflow: panic
  strict_priority: true
  priorities:
    normal: 15
    HyperCritical: -2
  lock:
    spin_limit: 8
    backoff_initial: 2us
    backoff_max: 1ms
`)

	opts, err := LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, 3, opts.PoolSize)
	assert.Equal(t, int64(64), opts.SignalCapacity)
	assert.Equal(t, OverflowPanic, opts.Overflow)
	assert.True(t, opts.StrictPriority)
	assert.Equal(t, 15, opts.Priority(Normal))
	assert.Equal(t, DefaultPriorities[Critical], opts.Priority(Critical))
	assert.Equal(t, -2, opts.Priority(HyperCritical))
	assert.Equal(t, 8, opts.SpinLimit)
	assert.Equal(t, 2*time.Microsecond, opts.LockBackoffInitial)
	assert.Equal(t, time.Millisecond, opts.LockBackoffMax)
}

func TestLoadOptionsJSONDefaults(t *testing.T) {
	path := writeConfig(t, "workers.json", `{"workers": {"pin_workers": true}}`)

	opts, err := LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultPoolSize, opts.PoolSize)
	assert.Equal(t, int64(DefaultSignalCapacity), opts.SignalCapacity)
	assert.Equal(t, OverflowSaturate, opts.Overflow)
	assert.True(t, opts.PinWorkers)
	assert.Equal(t, DefaultPriorities[:], opts.Priorities)
}

func TestLoadOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"UnsupportedFormat", "workers.toml", `pool_size = 1`},
		{"BrokenYAML", "workers.yaml", "workers: [unterminated"},
		{"UnknownClass", "workers.yaml", "workers:\n  priorities:\n    realtime: 1\n"},
		{"UnknownOverflow", "workers.yaml", "workers:\n  overflow: block\n"},
		{"BadDuration", "workers.yaml", "workers:\n  lock:\n    backoff_max: soon\n"},
		{"PriorityOutOfRange", "workers.json", `{"workers": {"priorities": {"critical": 99}}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadOptions(writeConfig(t, tc.file, tc.body))
			require.Error(t, err)
			assert.True(t, strings.HasPrefix(err.Error(), "workqueue: "), err.Error())
		})
	}

	_, err := LoadOptions(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "workqueue: "), err.Error())
}

func TestLoadOptionsStartsSystem(t *testing.T) {
	path := writeConfig(t, "workers.yml", "workers:\n  pool_size: 2\n  disable_priority: true\n")

	opts, err := LoadOptions(path)
	require.NoError(t, err)

	s, _ := newTestSystem(t, opts.PoolSize, func(o *Options) { *o = opts })
	for _, c := range Classes() {
		assert.Equal(t, 2, s.Stats(c).PoolSize)
	}
}
