package browser

import (
	"errors"
	"testing"

	"github.com/playwright-enhanced/pwe/common"
)

// TestBuilder attaches markers to a test before running it once per
// allowed browser engine.
//
// The builder keeps a single browser_kwargs and a single context_kwargs
// marker: static keyword arguments and callbacks of the same family are
// set on it, so a callback only overrides the keys it returns.
type TestBuilder struct {
	t       tester
	p       *Plugin
	markers []*common.Marker
	kwargs  map[string]*common.Marker
}

// tester is the part of *testing.T the builder drives.
type tester interface {
	testing.TB
	Run(name string, fn func(t *testing.T)) bool
}

// Test returns a builder for t bound to the run started by Main.
func Test(t *testing.T) *TestBuilder {
	t.Helper()

	p := current.Load()
	if p == nil {
		t.Fatal("browser: no run in progress, call browser.Main from TestMain")
		return nil
	}
	return p.Test(t)
}

// Test returns a builder for t bound to the run.
func (p *Plugin) Test(t *testing.T) *TestBuilder {
	return p.newTestBuilder(t)
}

func (p *Plugin) newTestBuilder(t tester) *TestBuilder {
	return &TestBuilder{t: t, p: p, kwargs: make(map[string]*common.Marker)}
}

// Mark attaches m to the test. Markers attached later are closer to
// the test and win over earlier ones.
func (b *TestBuilder) Mark(m *common.Marker) *TestBuilder {
	b.markers = append(b.markers, m)
	return b
}

// family returns the builder marker named name, attaching it on first use.
func (b *TestBuilder) family(name string) *common.Marker {
	m, ok := b.kwargs[name]
	if !ok {
		m = common.NewMarker(name)
		b.kwargs[name] = m
		b.Mark(m)
	}
	return m
}

// BrowserKwargs overrides launch parameters of the test. Repeated calls
// add to the same overrides.
func (b *TestBuilder) BrowserKwargs(kw map[string]any) *TestBuilder {
	b.family(common.MarkerBrowserKwargs).WithKwargs(kw)
	return b
}

// BrowserKwargsFunc overrides launch parameters of the test with the
// result of cb, computed once per engine. Keys returned by cb win over
// the ones given to BrowserKwargs.
func (b *TestBuilder) BrowserKwargsFunc(cb common.KwargsCallback) *TestBuilder {
	b.family(common.MarkerBrowserKwargs).With(common.CallbackKwarg, cb)
	return b
}

// ContextKwargs overrides context parameters of the test. Repeated
// calls add to the same overrides.
func (b *TestBuilder) ContextKwargs(kw map[string]any) *TestBuilder {
	b.family(common.MarkerContextKwargs).WithKwargs(kw)
	return b
}

// ContextKwargsFunc overrides context parameters of the test with the
// result of cb. Keys returned by cb win over the ones given to
// ContextKwargs.
func (b *TestBuilder) ContextKwargsFunc(cb common.KwargsCallback) *TestBuilder {
	b.family(common.MarkerContextKwargs).With(common.CallbackKwarg, cb)
	return b
}

// OnlyOnBrowsers restricts the test to the named engines.
func (b *TestBuilder) OnlyOnBrowsers(names ...string) *TestBuilder {
	args := make([]any, 0, len(names))
	for _, n := range names {
		args = append(args, n)
	}
	return b.Mark(common.NewMarker(common.MarkerOnlyOnBrowsers, args...))
}

// Item returns the test and its markers: the ones of matching config
// file overrides first, then the ones attached to the builder.
func (b *TestBuilder) Item() *common.Item {
	name := b.t.Name()
	markers := b.p.opts.OverrideMarkers(name)
	markers = append(markers, b.markers...)
	return common.NewItem(name, markers...)
}

// Run runs fn as one subtest per allowed engine, named after the
// engine, in the order the engines were allowed.
func (b *TestBuilder) Run(fn func(t *testing.T, f *Fixtures)) {
	b.t.Helper()

	item := b.Item()
	if n := len(item.IterMarkers(common.MarkerOnlyOnBrowsers)); n > 1 {
		b.p.logger.Warnf("browser:Run", "%s has %d %s markers, the last one decides the engines",
			item.Name(), n, common.MarkerOnlyOnBrowsers)
	}

	engines, err := AllowedEngines(item, b.p.opts.Engines())
	if err != nil {
		b.p.fail(b.t, err)
		return
	}

	for _, engine := range engines {
		b.t.Run(engine.String(), func(t *testing.T) {
			t.Helper()
			f, err := b.p.newFixtures(t, item, engine)
			if err != nil {
				b.p.fail(t, err)
				return
			}
			fn(t, f)
		})
	}
}

// fail fails t with err, counting misuses of the plugin for the exit
// code of the run.
func (p *Plugin) fail(t testing.TB, err error) {
	t.Helper()

	if errors.Is(err, common.ErrUsage) {
		p.usageErrors.Add(1)
	}
	t.Fatal(err)
}
