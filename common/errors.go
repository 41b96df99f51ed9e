package common

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUsage is wrapped by every error caused by misusing the plugin.
var ErrUsage = errors.New("usage error")

// MarkerUsageError is returned when a keyword-only marker was
// given positional arguments.
type MarkerUsageError struct {
	Marker string
	Test   string
	Args   []any
}

func (e *MarkerUsageError) Error() string {
	return fmt.Sprintf("`%s` only supports keyword args. Test(%s) used args=%s",
		e.Marker, e.Test, FormatArgs(e.Args))
}

// Unwrap allows errors.Is(err, ErrUsage).
func (e *MarkerUsageError) Unwrap() error {
	return ErrUsage
}

// EngineSelectionError is returned when an inclusion marker names no
// engines or an engine outside the allowed engines.
type EngineSelectionError struct {
	Marker  string
	Test    string
	Allowed []Engine
	// Unsupported holds the offending candidates; empty when
	// the marker named no engines at all.
	Unsupported []string
}

func (e *EngineSelectionError) Error() string {
	if len(e.Unsupported) == 0 {
		return fmt.Sprintf("%s has no values on test: %s.", e.Marker, e.Test)
	}
	return fmt.Sprintf("Unsupported browser in %s in %s, supported_engines are=%s",
		e.Marker, e.Test, FormatEngines(e.Allowed))
}

// Unwrap allows errors.Is(err, ErrUsage).
func (e *EngineSelectionError) Unwrap() error {
	return ErrUsage
}

// FormatArgs renders positional arguments as a tuple, e.g. (100, 200)
// or (5000,) for a single argument.
func FormatArgs(args []any) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if s, ok := a.(string); ok {
			parts = append(parts, fmt.Sprintf("'%s'", s))
			continue
		}
		parts = append(parts, fmt.Sprintf("%v", a))
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
