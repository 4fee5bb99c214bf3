package verbosity

import (
	"fmt"
	"strings"
)

// Policy decides whether a message of a given severity is echoed to the console.
type Policy interface {
	// Echo reports whether a message with severity sev should be echoed.
	Echo(sev Level) bool
	// String describes the policy in config syntax.
	String() string
}

// Mask is the canonical Policy: a set of echoed severities. Bit i-1 stands
// for Level i, so Off has no bit and can never be a member.
type Mask struct {
	bits      uint8
	threshold Level
	fromLevel bool
}

// NewMask returns a policy that echoes exactly the given severities.
// Off is ignored. All is an ordinary member that matches only messages
// whose own severity is All.
func NewMask(levels ...Level) Mask {
	var m Mask
	for _, l := range levels {
		if l > Off && l <= All {
			m.bits |= bit(l)
		}
	}
	return m
}

// Threshold returns a policy that echoes every severity s with
// Error <= s <= level. Threshold(Off) echoes nothing and Threshold(All)
// echoes everything.
func Threshold(level Level) Mask {
	m := Mask{threshold: level, fromLevel: true}
	for l := Error; l <= All && l <= level; l++ {
		m.bits |= bit(l)
	}
	return m
}

func bit(l Level) uint8 {
	return 1 << uint(l-1)
}

// Echo implements Policy.
func (m Mask) Echo(sev Level) bool {
	if sev <= Off || sev > All {
		return false
	}
	return m.bits&bit(sev) != 0
}

// Members returns the echoed severities in ascending order.
func (m Mask) Members() []Level {
	var out []Level
	for l := Error; l <= All; l++ {
		if m.bits&bit(l) != 0 {
			out = append(out, l)
		}
	}
	return out
}

// IsThreshold reports whether m was built from a threshold level.
func (m Mask) IsThreshold() bool {
	return m.fromLevel
}

// Level returns the threshold m was built from, and false for explicit masks.
func (m Mask) Level() (Level, bool) {
	return m.threshold, m.fromLevel
}

// String returns "level=<Level>" for threshold policies and
// "mask=<A,B>" for explicit masks.
func (m Mask) String() string {
	if m.fromLevel {
		return "level=" + m.threshold.String()
	}
	members := m.Members()
	names := make([]string, len(members))
	for i, l := range members {
		names[i] = l.String()
	}
	return "mask=" + strings.Join(names, ",")
}

// ParseMask parses a comma-separated list of level names or integers.
// An empty list is a valid mask that echoes nothing. Off is rejected
// because it is not a mask member.
func ParseMask(s string) (Mask, error) {
	var levels []Level
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		l, err := ParseLevel(part)
		if err != nil {
			return Mask{}, err
		}
		if l == Off {
			return Mask{}, fmt.Errorf("verbosity mask cannot contain %s", Off)
		}
		levels = append(levels, l)
	}
	return NewMask(levels...), nil
}
