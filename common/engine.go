package common

import (
	"fmt"
	"strings"
)

// Engine identifies a browser engine supported by the toolkit.
type Engine string

// Supported browser engines.
const (
	EngineChromium Engine = "chromium"
	EngineFirefox  Engine = "firefox"
	EngineWebKit   Engine = "webkit"
)

// DefaultEngine is used when no engine was selected on the command line.
const DefaultEngine = EngineChromium

// Engines returns the supported engines in their default iteration order.
func Engines() []Engine {
	return []Engine{EngineChromium, EngineFirefox, EngineWebKit}
}

// ParseEngine parses an engine name case-insensitively.
func ParseEngine(s string) (Engine, error) {
	e := Engine(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", fmt.Errorf("invalid browser engine %q (choose from %s)", s, engineChoices())
	}
	return e, nil
}

// Valid returns true if e is one of the supported engines.
func (e Engine) Valid() bool {
	switch e {
	case EngineChromium, EngineFirefox, EngineWebKit:
		return true
	default:
		return false
	}
}

// String returns the engine name.
func (e Engine) String() string {
	return string(e)
}

// DedupEngines returns engines with later duplicates removed,
// preserving the order of first appearance.
func DedupEngines(engines []Engine) []Engine {
	seen := make(map[Engine]bool, len(engines))
	out := make([]Engine, 0, len(engines))
	for _, e := range engines {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// FormatEngines formats engines the way usage errors report them,
// e.g. ('chromium', 'firefox').
func FormatEngines(engines []Engine) string {
	quoted := make([]string, 0, len(engines))
	for _, e := range engines {
		quoted = append(quoted, fmt.Sprintf("'%s'", e))
	}
	if len(quoted) == 1 {
		return "(" + quoted[0] + ",)"
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

func engineChoices() string {
	return FormatEngines(Engines())
}
