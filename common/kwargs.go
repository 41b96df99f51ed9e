package common

import (
	"fmt"
	"math"
	"strconv"
)

// Kwargs is a set of named parameters handed to the browser toolkit.
type Kwargs = map[string]any

// LaunchConfig holds the parameters used to launch a browser instance.
type LaunchConfig map[string]any

// ContextConfig holds the parameters used to create a browser context.
type ContextConfig map[string]any

// Well known launch parameter names.
const (
	LaunchExecutablePath  = "executable_path"
	LaunchChannel         = "channel"
	LaunchTimeout         = "timeout"
	LaunchHeadless        = "headless"
	LaunchChromiumSandbox = "chromium_sandbox"
	LaunchSlowMo          = "slow_mo"
	LaunchHandleSIGINT    = "handle_sigint"
	LaunchHandleSIGTERM   = "handle_sigterm"
	LaunchHandleSIGHUP    = "handle_sighup"
	LaunchDownloadsPath   = "downloads_path"
	LaunchTracesDir       = "traces_dir"
	LaunchProxyServer     = "proxy_server"
	LaunchProxyBypass     = "proxy_bypass"
	LaunchProxyUsername   = "proxy_username"
	LaunchProxyPassword   = "proxy_password"
)

// Well known context parameter names.
const (
	ContextBaseURL               = "base_url"
	ContextRecordVideoDir        = "record_video_dir"
	ContextRecordVideoSizeWidth  = "record_video_size_width"
	ContextRecordVideoSizeHeight = "record_video_size_height"
)

// Merge returns a new map with the layers applied left to right;
// keys of later layers win.
func Merge[M ~map[string]any](layers ...M) M {
	n := 0
	for _, l := range layers {
		n += len(l)
	}
	out := make(M, n)
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// Clone returns a shallow copy of m. It never returns nil.
func Clone[M ~map[string]any](m M) M {
	return Merge(m)
}

// LookupBool returns the boolean value stored under key.
func (c LaunchConfig) LookupBool(key string) (value bool, ok bool, err error) {
	return lookupBool(c, key)
}

// LookupFloat returns the numeric value stored under key.
func (c LaunchConfig) LookupFloat(key string) (value float64, ok bool, err error) {
	return lookupFloat(c, key)
}

// LookupString returns the string value stored under key.
func (c ContextConfig) LookupString(key string) (value string, ok bool, err error) {
	return lookupString(c, key)
}

func lookupBool(m map[string]any, key string) (bool, bool, error) {
	v, ok := m[key]
	if !ok {
		return false, false, nil
	}
	b, err := toBool(v)
	if err != nil {
		return false, true, fmt.Errorf("parsing %q: %w", key, err)
	}
	return b, true, nil
}

func lookupFloat(m map[string]any, key string) (float64, bool, error) {
	v, ok := m[key]
	if !ok {
		return 0, false, nil
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, true, fmt.Errorf("parsing %q: %w", key, err)
	}
	return f, true, nil
}

func lookupString(m map[string]any, key string) (string, bool, error) {
	v, ok := m[key]
	if !ok {
		return "", false, nil
	}
	s, err := toString(v)
	if err != nil {
		return "", true, fmt.Errorf("parsing %q: %w", key, err)
	}
	return s, true, nil
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, fmt.Errorf("%q is not a boolean", t)
		}
		return b, nil
	default:
		return false, fmt.Errorf("unexpected type %T, want bool", v)
	}
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected type %T, want number", v)
	}
}

func toInt(v any) (int, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", v)
	}
	return int(f), nil
}

func toString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unexpected type %T, want string", v)
	}
}
