package monitor

import (
	"fmt"
	"strconv"
	"strings"
)

// Stat is one parsed firmware stat line:
//
//	stat tick=<ticks> used=<n> slot<i>=<fires> ...
//
// The firmware emits one per second from its foreground loop (see
// core.(*Mux).StatLine); everything else on the wire is debug chatter and
// is skipped by the monitor.
type Stat struct {
	Tick  uint64
	Used  int
	Fires map[int]uint32
}

// IsStatLine reports whether the line looks like a stat line, without
// fully parsing it.
func IsStatLine(line string) bool {
	return strings.HasPrefix(line, "stat ")
}

// ParseStatLine parses one stat line.
func ParseStatLine(line string) (Stat, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || fields[0] != "stat" {
		return Stat{}, fmt.Errorf("not a stat line: %q", line)
	}

	s := Stat{Fires: make(map[int]uint32)}
	seenTick, seenUsed := false, false
	for _, f := range fields[1:] {
		key, val, ok := strings.Cut(f, "=")
		if !ok {
			return Stat{}, fmt.Errorf("malformed field %q in %q", f, line)
		}
		switch {
		case key == "tick":
			t, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return Stat{}, fmt.Errorf("bad tick in %q: %w", line, err)
			}
			s.Tick = t
			seenTick = true
		case key == "used":
			n, err := strconv.Atoi(val)
			if err != nil {
				return Stat{}, fmt.Errorf("bad used in %q: %w", line, err)
			}
			s.Used = n
			seenUsed = true
		case strings.HasPrefix(key, "slot"):
			idx, err := strconv.Atoi(key[len("slot"):])
			if err != nil {
				return Stat{}, fmt.Errorf("bad slot field %q in %q", key, line)
			}
			fires, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return Stat{}, fmt.Errorf("bad fires in %q: %w", line, err)
			}
			s.Fires[idx] = uint32(fires)
		default:
			return Stat{}, fmt.Errorf("unknown field %q in %q", key, line)
		}
	}
	if !seenTick || !seenUsed {
		return Stat{}, fmt.Errorf("incomplete stat line: %q", line)
	}
	return s, nil
}
