package monitor

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatLine(t *testing.T) {
	s, err := ParseStatLine("stat tick=10000 used=2 slot0=5 slot1=2")
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), s.Tick)
	assert.Equal(t, 2, s.Used)
	assert.Equal(t, map[int]uint32{0: 5, 1: 2}, s.Fires)
}

func TestParseStatLineNoSlots(t *testing.T) {
	s, err := ParseStatLine("stat tick=3 used=0")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), s.Tick)
	assert.Empty(t, s.Fires)
}

func TestParseStatLineErrors(t *testing.T) {
	bad := []string{
		"",
		"stat",
		"boot sequence complete",
		"stat tick=abc used=0",
		"stat tick=1 used=x",
		"stat used=1 slot0=2",       // missing tick
		"stat tick=1 slot0=2",       // missing used
		"stat tick=1 used=1 slotx=2",
		"stat tick=1 used=1 slot0",
		"stat tick=1 used=1 bogus=2",
	}
	for _, line := range bad {
		_, err := ParseStatLine(line)
		assert.Error(t, err, "line %q", line)
	}
}

func TestIsStatLine(t *testing.T) {
	assert.True(t, IsStatLine("stat tick=1 used=0"))
	assert.False(t, IsStatLine("status: ok"))
	assert.False(t, IsStatLine("[FIRES] slot=0 tick=12"))
}

func testLogger(buf *bytes.Buffer) zerolog.Logger {
	return zerolog.New(buf).Level(zerolog.DebugLevel)
}

func TestMonitorRun(t *testing.T) {
	var buf bytes.Buffer
	mon := New(testLogger(&buf), 1000, 5)

	stream := strings.Join([]string{
		"boot sequence complete",
		"stat tick=1000 used=2 slot0=2 slot1=0",
		"stat tick=2000 used=2 slot0=4 slot1=0",
		"stat tick=3000 used=1 slot0=6",
	}, "\n")

	err := mon.Run(strings.NewReader(stream))
	require.NoError(t, err)
	assert.Equal(t, 3, mon.Observed())

	out := buf.String()
	// slot0 fires every 500 ticks of a 1000 µs tick: 500 ms observed.
	assert.Contains(t, out, `"period_ms":500`)
	// slot1 disappeared in the last stat.
	assert.Contains(t, out, "slot freed")
	// Console chatter is logged, not parsed.
	assert.Contains(t, out, "boot sequence complete")
}

func TestMonitorStallWarning(t *testing.T) {
	var buf bytes.Buffer
	mon := New(testLogger(&buf), 1000, 2)

	mon.Observe(Stat{Tick: 1000, Used: 1, Fires: map[int]uint32{3: 7}})
	mon.Observe(Stat{Tick: 2000, Used: 1, Fires: map[int]uint32{3: 7}})
	assert.NotContains(t, buf.String(), "slot stalled")
	mon.Observe(Stat{Tick: 3000, Used: 1, Fires: map[int]uint32{3: 7}})
	assert.Contains(t, buf.String(), "slot stalled")

	// Progress clears the stall tracking.
	buf.Reset()
	mon.Observe(Stat{Tick: 4000, Used: 1, Fires: map[int]uint32{3: 9}})
	assert.NotContains(t, buf.String(), "slot stalled")
}

func TestMonitorTickRewind(t *testing.T) {
	var buf bytes.Buffer
	mon := New(testLogger(&buf), 1000, 5)

	mon.Observe(Stat{Tick: 9000, Used: 1, Fires: map[int]uint32{0: 4}})
	mon.Observe(Stat{Tick: 1000, Used: 1, Fires: map[int]uint32{0: 0}})
	assert.Contains(t, buf.String(), "tick counter rewound")
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"device: /dev/ttyUSB1\nbaud: 250000\ntick_us: 500\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Device)
	assert.Equal(t, 250000, cfg.Baud)
	assert.Equal(t, uint32(500), cfg.TickUS)
	// Unset keys keep their defaults.
	assert.Equal(t, 5, cfg.StallAfter)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
