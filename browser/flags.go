package browser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"github.com/playwright-enhanced/pwe/common"
)

// EnvPrefix prefixes the environment variable of every option,
// e.g. PWE_BASE_URL for --base-url.
const EnvPrefix = "PWE_"

type optionKind int

const (
	kindString optionKind = iota
	kindBool
	kindList
)

// option describes a single configurable value. The same setter is
// used for the flag, the environment variable and the config file key.
type option struct {
	name  string
	kind  optionKind
	def   string
	usage string
	set   func(o *Options, values []string) error
}

// EnvName returns the environment variable for the option. The pwe-
// prefix of the plugin's own options is not repeated, e.g. PWE_CONFIG.
func (opt option) EnvName() string {
	name := strings.TrimPrefix(opt.name, "pwe-")
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

//nolint:gochecknoglobals
var optionDefs = []option{
	{
		name: "browser", kind: kindList,
		usage: "browser engine to run tests against, repeatable (chromium, firefox, webkit)",
		set: func(o *Options, vs []string) error {
			engines := make([]common.Engine, 0, len(vs))
			for _, v := range vs {
				e, err := common.ParseEngine(v)
				if err != nil {
					return fmt.Errorf("%w: argument --browser: %w", common.ErrUsage, err)
				}
				engines = append(engines, e)
			}
			o.Browsers = engines
			return nil
		},
	},
	{
		name: "headed", kind: kindBool, def: "false",
		usage: "run tests headed",
		set:   setBool(func(o *Options, b bool) { o.Headed = b }),
	},
	{
		name:  "base-url",
		usage: "base URL loaded by pages",
		set:   setNullString(func(o *Options) *null.String { return &o.BaseURL }),
	},
	{
		name:  "device",
		usage: "device to emulate",
		set:   setNullString(func(o *Options) *null.String { return &o.Device }),
	},
	{
		name: "slow-mo", def: "0",
		usage: "delay in milliseconds between toolkit actions",
		set: func(o *Options, vs []string) error {
			n, err := parseInt("slow-mo", last(vs))
			if err != nil {
				return err
			}
			o.SlowMo = null.IntFrom(n)
			return nil
		},
	},
	{
		name: "pw-debug", kind: kindBool, def: "false",
		usage: "allow debugging by setting PWDEBUG=console",
		set:   setBool(func(o *Options, b bool) { o.PWDebug = b }),
	},
	{
		name: "artifacts", def: DefaultArtifactsDir,
		usage: "directory where artifacts are stored",
		set: func(o *Options, vs []string) error {
			o.Artifacts = last(vs)
			return nil
		},
	},
	{
		name: "screenshots-on-fail", def: string(ScreenshotsNo),
		usage: "retain screenshots of failed tests (no, yes, full)",
		set: func(o *Options, vs []string) error {
			m, err := ParseScreenshotMode(last(vs))
			if err != nil {
				return err
			}
			o.ScreenshotsOnFail = m
			return nil
		},
	},
	{
		name: "video-on-fail", def: "no",
		usage: "retain videos of failed tests (no, yes or a size such as 800x640)",
		set: func(o *Options, vs []string) error {
			m, err := ParseVideoMode(last(vs))
			if err != nil {
				return err
			}
			o.VideoOnFail = m
			return nil
		},
	},
	{
		name: "trace-on-fail", kind: kindBool, def: "false",
		usage: "retain traces of failed tests",
		set:   setBool(func(o *Options, b bool) { o.TraceOnFail = b }),
	},
	{
		name:  "selenium-grid",
		usage: "remote grid endpoint (experimental)",
		set:   setNullString(func(o *Options) *null.String { return &o.SeleniumGrid }),
	},
	{
		name:  "download-host",
		usage: "host to download browser binaries from",
		set:   setNullString(func(o *Options) *null.String { return &o.DownloadHost }),
	},
	{
		name:  "drivers-path",
		usage: "directory where browser binaries are stored",
		set:   setNullString(func(o *Options) *null.String { return &o.DriversPath }),
	},
	{
		name: "acquire-drivers", def: AcquireNo,
		usage: "acquire browser binaries before the run (no, yes, with-deps)",
		set: func(o *Options, vs []string) error {
			v, err := choice("acquire-drivers", last(vs), AcquireNo, AcquireYes, AcquireWithDeps)
			if err != nil {
				return err
			}
			o.AcquireDrivers = v
			return nil
		},
	},
	{
		name:  "executable-path",
		usage: "browser executable to use instead of the bundled one",
		set:   setNullString(func(o *Options) *null.String { return &o.ExecutablePath }),
	},
	{
		name:  "channel",
		usage: "browser distribution channel (" + strings.Join(channels, ", ") + ")",
		set: func(o *Options, vs []string) error {
			v, err := choice("channel", last(vs), channels...)
			if err != nil {
				return err
			}
			o.Channel = null.StringFrom(v)
			return nil
		},
	},
	{
		name: "browser-timeout", def: strconv.Itoa(common.DefaultBrowserTimeout),
		usage: "browser launch timeout in milliseconds, 0 disables it",
		set: func(o *Options, vs []string) error {
			n, err := parseInt("browser-timeout", last(vs))
			if err != nil {
				return err
			}
			o.BrowserTimeout = n
			return nil
		},
	},
	{
		name: "chromium-sandbox", kind: kindBool, def: "false",
		usage: "enable the chromium sandbox",
		set:   setBool(func(o *Options, b bool) { o.ChromiumSandbox = b }),
	},
	{
		name:  "pwe-config",
		usage: "YAML config file",
		set: func(o *Options, vs []string) error {
			o.ConfigFile = last(vs)
			return nil
		},
	},
	{
		name: "pwe-log-level", def: "warn",
		usage: "plugin log level (trace, debug, info, warn, error)",
		set: func(o *Options, vs []string) error {
			v, err := choice("pwe-log-level", last(vs), "trace", "debug", "info", "warn", "warning", "error")
			if err != nil {
				return err
			}
			o.LogLevel = v
			return nil
		},
	},
	{
		name:  "pwe-log-filter",
		usage: "only log categories matching this regular expression",
		set: func(o *Options, vs []string) error {
			o.LogFilter = last(vs)
			return nil
		},
	},
	{
		name:  "otel-endpoint",
		usage: "OTLP/HTTP endpoint to export execution spans to",
		set:   setNullString(func(o *Options) *null.String { return &o.OtelEndpoint }),
	},
	{
		name: "otel-insecure", kind: kindBool, def: "false",
		usage: "export spans without TLS",
		set:   setBool(func(o *Options, b bool) { o.OtelInsecure = b }),
	},
}

func lookupOption(name string) (option, bool) {
	for _, opt := range optionDefs {
		if opt.name == name {
			return opt, true
		}
	}
	return option{}, false
}

// NewFlagSet returns a flag set declaring every option. Unknown flags
// are ignored so the flags of the host test binary pass through.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	AddFlags(fs)
	return fs
}

// AddFlags declares every option on fs.
func AddFlags(fs *pflag.FlagSet) {
	for _, opt := range optionDefs {
		switch opt.kind {
		case kindBool:
			fs.Bool(opt.name, opt.def == "true", opt.usage)
		case kindList:
			fs.StringArray(opt.name, nil, opt.usage)
		default:
			fs.String(opt.name, opt.def, opt.usage)
		}
	}
}

// flagValues returns the values given for name on the command line.
func flagValues(fs *pflag.FlagSet, name string) []string {
	f := fs.Lookup(name)
	if f == nil {
		return nil
	}
	if sv, ok := f.Value.(pflag.SliceValue); ok {
		return sv.GetSlice()
	}
	return []string{f.Value.String()}
}

func setBool(apply func(*Options, bool)) func(*Options, []string) error {
	return func(o *Options, vs []string) error {
		v := last(vs)
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", common.ErrUsage, v)
		}
		apply(o, b)
		return nil
	}
}

func setNullString(field func(*Options) *null.String) func(*Options, []string) error {
	return func(o *Options, vs []string) error {
		v := last(vs)
		*field(o) = null.NewString(v, v != "")
		return nil
	}
}

func choice(name, v string, choices ...string) (string, error) {
	for _, c := range choices {
		if v == c {
			return v, nil
		}
	}
	quoted := make([]string, 0, len(choices))
	for _, c := range choices {
		quoted = append(quoted, "'"+c+"'")
	}
	return "", fmt.Errorf("%w: argument --%s: invalid choice: '%s' (choose from %s)",
		common.ErrUsage, name, v, strings.Join(quoted, ", "))
}

func parseInt(name, v string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: argument --%s: invalid int value: '%s'", common.ErrUsage, name, v)
	}
	return n, nil
}

func last(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}
