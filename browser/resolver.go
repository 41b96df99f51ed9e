package browser

import (
	"github.com/playwright-enhanced/pwe/common"
)

// Resolver computes the effective launch and context configuration of
// a test execution from the run options, the debug detector and the
// markers attached to the test.
type Resolver struct {
	opts  *Options
	debug DebugDetector
}

// NewResolver returns a resolver over opts. A nil debug detector never
// reports a debugger.
func NewResolver(opts *Options, debug DebugDetector) *Resolver {
	if debug == nil {
		debug = noDebugger{}
	}
	return &Resolver{opts: opts, debug: debug}
}

// LaunchConfig returns the launch parameters of item running on engine.
//
// When a debugger is attached the browser is forced headed, unless a
// browser_kwargs marker sets headless again.
func (r *Resolver) LaunchConfig(item *common.Item, engine common.Engine) (common.LaunchConfig, error) {
	defaults := r.opts.CLIDefaults(engine)

	debugging, err := r.debug.IsDebugging()
	if err != nil {
		return nil, err
	}
	if debugging {
		defaults[common.LaunchHeadless] = false
	}

	overrides, err := resolveMarkerKwargs(item, common.MarkerBrowserKwargs, nil)
	if err != nil {
		return nil, err
	}
	return common.Merge(defaults, common.LaunchConfig(overrides)), nil
}

// ContextConfig returns the context parameters of item.
func (r *Resolver) ContextConfig(item *common.Item) (common.ContextConfig, error) {
	overrides, err := resolveMarkerKwargs(item, common.MarkerContextKwargs, nil)
	if err != nil {
		return nil, err
	}
	return common.Merge(r.opts.CLIContextDefaults(), common.ContextConfig(overrides)), nil
}

// SlowMo returns the slow motion delay of item in milliseconds,
// honouring a slow_mo set by a browser_kwargs marker.
func (r *Resolver) SlowMo(item *common.Item) (float64, error) {
	overrides, err := resolveMarkerKwargs(item, common.MarkerBrowserKwargs, nil)
	if err != nil {
		return 0, err
	}
	v, ok, err := common.LaunchConfig(overrides).LookupFloat(common.LaunchSlowMo)
	if err != nil {
		return 0, err
	}
	if ok {
		return v, nil
	}
	return float64(r.opts.SlowMo.ValueOrZero()), nil
}
