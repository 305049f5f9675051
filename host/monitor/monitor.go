// Package monitor consumes the stat stream a tickmux board prints over
// serial and turns it into per-slot firing rates and health warnings. It
// is a development aid: the firmware's timing happens at interrupt
// priority on the board, the monitor only observes the counters.
package monitor

import (
	"bufio"
	"io"

	"github.com/rs/zerolog"
)

// Monitor tracks per-slot fire counters across consecutive stats.
type Monitor struct {
	log        zerolog.Logger
	tickUS     uint32
	stallAfter int

	prev     *Stat
	stalls   map[int]int
	observed int
}

// New returns a monitor. tickUS is the firmware's hardware tick period in
// microseconds (used to convert tick deltas to wall time); stallAfter is
// how many consecutive no-progress stats flag a slot as stalled.
func New(log zerolog.Logger, tickUS uint32, stallAfter int) *Monitor {
	if tickUS == 0 {
		tickUS = 1000
	}
	if stallAfter <= 0 {
		stallAfter = 5
	}
	return &Monitor{
		log:        log,
		tickUS:     tickUS,
		stallAfter: stallAfter,
		stalls:     make(map[int]int),
	}
}

// Run reads lines from r until EOF or a read error, feeding every stat
// line to Observe. Non-stat lines are logged as firmware console output.
func (m *Monitor) Run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if !IsStatLine(line) {
			if line != "" {
				m.log.Debug().Str("console", line).Msg("firmware")
			}
			continue
		}
		stat, err := ParseStatLine(line)
		if err != nil {
			m.log.Warn().Err(err).Msg("unparseable stat line")
			continue
		}
		m.Observe(stat)
	}
	return sc.Err()
}

// Observe folds one stat into the tracker and logs what changed.
func (m *Monitor) Observe(s Stat) {
	m.observed++
	defer func() { m.prev = &s }()

	if m.prev == nil {
		m.log.Info().Uint64("tick", s.Tick).Int("used", s.Used).Msg("first stat")
		return
	}

	if s.Tick < m.prev.Tick {
		// Counter went backwards: board reset or multiplexer Reset.
		m.log.Warn().Uint64("tick", s.Tick).Uint64("prev", m.prev.Tick).Msg("tick counter rewound")
		m.stalls = make(map[int]int)
		return
	}

	dt := s.Tick - m.prev.Tick
	for idx, fires := range s.Fires {
		prevFires, existed := m.prev.Fires[idx]
		if !existed {
			m.log.Info().Int("slot", idx).Msg("slot appeared")
			continue
		}
		df := fires - prevFires
		if df == 0 {
			m.stalls[idx]++
			if m.stalls[idx] == m.stallAfter {
				m.log.Warn().Int("slot", idx).Int("stats", m.stallAfter).Msg("slot stalled")
			}
			continue
		}
		m.stalls[idx] = 0

		// Observed period, averaged over the stat window. With a healthy
		// board this tracks the configured period within one tick.
		periodMS := float64(dt) / float64(df) * float64(m.tickUS) / 1000.0
		m.log.Info().
			Int("slot", idx).
			Uint32("fires", fires).
			Float64("period_ms", periodMS).
			Msg("slot")
	}

	for idx := range m.prev.Fires {
		if _, ok := s.Fires[idx]; !ok {
			m.log.Info().Int("slot", idx).Msg("slot freed")
			delete(m.stalls, idx)
		}
	}
}

// Observed returns how many stats have been folded in.
func (m *Monitor) Observed() int {
	return m.observed
}
