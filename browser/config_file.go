package browser

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/playwright-enhanced/pwe/common"
)

// OverrideRule attaches markers to every test whose name matches Tests.
// Test names are matched with glob patterns where '/' separates subtests,
// e.g. "TestLogin/*" or "Test*Checkout".
type OverrideRule struct {
	Tests          string         `yaml:"tests"`
	BrowserKwargs  map[string]any `yaml:"browser_kwargs"`
	ContextKwargs  map[string]any `yaml:"context_kwargs"`
	OnlyOnBrowsers []string       `yaml:"only_on_browsers"`

	matcher glob.Glob
}

func (r *OverrideRule) compile() error {
	if r.matcher != nil {
		return nil
	}
	if r.Tests == "" {
		return fmt.Errorf("%w: override rule without a tests pattern", common.ErrUsage)
	}
	g, err := glob.Compile(r.Tests, '/')
	if err != nil {
		return fmt.Errorf("%w: compiling override pattern %q: %w", common.ErrUsage, r.Tests, err)
	}
	r.matcher = g
	return nil
}

// Match returns true if the rule applies to the test named name.
func (r *OverrideRule) Match(name string) bool {
	if err := r.compile(); err != nil {
		return false
	}
	return r.matcher.Match(name)
}

// Markers returns the markers the rule attaches to a test.
func (r *OverrideRule) Markers() []*common.Marker {
	var ms []*common.Marker
	if r.BrowserKwargs != nil {
		ms = append(ms, common.NewMarker(common.MarkerBrowserKwargs).WithKwargs(r.BrowserKwargs))
	}
	if r.ContextKwargs != nil {
		ms = append(ms, common.NewMarker(common.MarkerContextKwargs).WithKwargs(r.ContextKwargs))
	}
	if r.OnlyOnBrowsers != nil {
		args := make([]any, 0, len(r.OnlyOnBrowsers))
		for _, b := range r.OnlyOnBrowsers {
			args = append(args, b)
		}
		ms = append(ms, common.NewMarker(common.MarkerOnlyOnBrowsers, args...))
	}
	return ms
}

// OverrideMarkers returns the markers of every rule matching name,
// in the order the rules were declared.
func (o *Options) OverrideMarkers(name string) []*common.Marker {
	var ms []*common.Marker
	for _, r := range o.Overrides {
		if r.Match(name) {
			ms = append(ms, r.Markers()...)
		}
	}
	return ms
}

// configFile is the layout of the YAML config file. Every other top
// level key is named after a flag, e.g.
//
//	browser: [chromium, firefox]
//	base-url: http://localhost:8000
//	overrides:
//	  - tests: "TestCheckout*"
//	    browser_kwargs: {slow_mo: 100}
type configFile struct {
	Overrides []*OverrideRule `yaml:"overrides"`
}

// readConfigFile returns the option values and override rules of the
// YAML config file at path.
func readConfigFile(path string) (map[string][]string, []*OverrideRule, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, nil, fmt.Errorf("reading config file: %w", err)
	}
	return parseConfigFile(data)
}

func parseConfigFile(data []byte) (map[string][]string, []*OverrideRule, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: parsing config file: %w", common.ErrUsage, err)
	}
	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, nil, fmt.Errorf("%w: parsing config file overrides: %w", common.ErrUsage, err)
	}
	for i, r := range cf.Overrides {
		if r == nil {
			return nil, nil, fmt.Errorf("%w: empty override rule at index %d", common.ErrUsage, i)
		}
	}

	values := make(map[string][]string, len(raw))
	for k, v := range raw {
		if k == "overrides" || v == nil {
			continue
		}
		if _, ok := lookupOption(k); !ok {
			return nil, nil, fmt.Errorf("%w: unknown config file key %q", common.ErrUsage, k)
		}
		values[k] = yamlValues(v)
	}
	return values, cf.Overrides, nil
}

func yamlValues(v any) []string {
	switch t := v.(type) {
	case []any:
		vs := make([]string, 0, len(t))
		for _, e := range t {
			vs = append(vs, fmt.Sprint(e))
		}
		return vs
	default:
		return []string{fmt.Sprint(t)}
	}
}

// LoadOptions builds the run options from the command line arguments,
// the environment and the config file. Command line arguments win over
// environment variables, which win over the config file.
func LoadOptions(args []string, lookupEnv func(string) (string, bool)) (*Options, error) {
	fs := NewFlagSet("pwe")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUsage, err)
	}
	return LoadOptionsFromFlags(fs, lookupEnv)
}

// LoadOptionsFromFlags is LoadOptions for a flag set that was declared
// with AddFlags and already parsed. Flags that are not options are
// ignored.
func LoadOptionsFromFlags(fs *pflag.FlagSet, lookupEnv func(string) (string, bool)) (*Options, error) {
	opts := NewOptions()

	path := ""
	configOpt, _ := lookupOption("pwe-config")
	if fs.Changed(configOpt.name) {
		path = last(flagValues(fs, configOpt.name))
	} else if v, ok := lookupEnv(configOpt.EnvName()); ok {
		path = v
	}
	if path != "" {
		values, overrides, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := applyValues(opts, values, "config file key"); err != nil {
			return nil, err
		}
		opts.ConfigFile = path
		opts.Overrides = overrides
	}

	envValues := make(map[string][]string)
	for _, opt := range optionDefs {
		v, ok := lookupEnv(opt.EnvName())
		if !ok {
			continue
		}
		if opt.kind == kindList {
			envValues[opt.name] = splitList(v)
		} else {
			envValues[opt.name] = []string{v}
		}
	}
	if err := applyValues(opts, envValues, "environment variable for"); err != nil {
		return nil, err
	}

	flagVals := make(map[string][]string)
	fs.Visit(func(f *pflag.Flag) {
		flagVals[f.Name] = flagValues(fs, f.Name)
	})
	if err := applyValues(opts, flagVals, "flag"); err != nil {
		return nil, err
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// applyValues applies values sorted by option name.
func applyValues(o *Options, values map[string][]string, source string) error {
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		opt, ok := lookupOption(name)
		if !ok {
			continue
		}
		if err := opt.set(o, values[name]); err != nil {
			if !errors.Is(err, common.ErrUsage) {
				err = fmt.Errorf("%w: %w", common.ErrUsage, err)
			}
			return fmt.Errorf("%s %s: %w", source, name, err)
		}
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
