package browser

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/playwright-enhanced/pwe/api"
	"github.com/playwright-enhanced/pwe/browserprocess"
	"github.com/playwright-enhanced/pwe/common"
)

// Fixtures gives a test execution access to its resolved configuration
// and to a browser, a context and a page created on first use.
// Everything created is closed when the execution ends.
type Fixtures struct {
	t      *testing.T
	p      *Plugin
	item   *common.Item
	engine common.Engine

	ctx         context.Context
	executionID string

	launch  common.LaunchConfig
	context common.ContextConfig
	slowMo  float64

	browser    api.Browser
	unregister func()
	bctx       api.BrowserContext
	page       api.Page

	pagesMu sync.Mutex
	pages   []api.Page
}

// newFixtures resolves the configuration of item on engine and
// registers the teardown of the execution on t.
func (p *Plugin) newFixtures(t *testing.T, item *common.Item, engine common.Engine) (*Fixtures, error) {
	launch, err := p.resolver.LaunchConfig(item, engine)
	if err != nil {
		return nil, err
	}
	contextCfg, err := p.resolver.ContextConfig(item)
	if err != nil {
		return nil, err
	}
	slowMo, err := p.resolver.SlowMo(item)
	if err != nil {
		return nil, err
	}

	f := &Fixtures{
		t:           t,
		p:           p,
		item:        item,
		engine:      engine,
		executionID: t.Name(),
		launch:      launch,
		context:     contextCfg,
		slowMo:      slowMo,
	}
	f.ctx = browserprocess.WithExecutionID(p.ctx, f.executionID)
	f.ctx, _ = p.tracer.TraceExecution(f.ctx, f.executionID, item.Name(), engine.String())

	p.logger.Debugf("Fixtures:new", "eid:%s launch:%v context:%v", f.executionID, launch, contextCfg)

	t.Cleanup(f.teardown)
	return f, nil
}

// Engine returns the engine of the execution.
func (f *Fixtures) Engine() common.Engine { return f.engine }

// IsChromium returns true when the execution runs on chromium.
func (f *Fixtures) IsChromium() bool { return f.engine == common.EngineChromium }

// IsFirefox returns true when the execution runs on firefox.
func (f *Fixtures) IsFirefox() bool { return f.engine == common.EngineFirefox }

// IsWebKit returns true when the execution runs on webkit.
func (f *Fixtures) IsWebKit() bool { return f.engine == common.EngineWebKit }

// Headed returns true when the browser is launched with a visible window.
func (f *Fixtures) Headed() bool {
	headless, ok, err := f.launch.LookupBool(common.LaunchHeadless)
	return err == nil && ok && !headless
}

// SlowMo returns the delay between toolkit actions in milliseconds.
func (f *Fixtures) SlowMo() float64 { return f.slowMo }

// BaseURL returns the base URL of the context, empty when none is set.
func (f *Fixtures) BaseURL() string {
	v, _, _ := f.context.LookupString(common.ContextBaseURL)
	return v
}

// Device returns the name of the emulated device, empty when none is.
func (f *Fixtures) Device() string { return GetOptions(f.ctx).Device.ValueOrZero() }

// ArtifactsDir returns the directory artifacts of the run are kept in.
func (f *Fixtures) ArtifactsDir() string { return f.p.policy.Dir() }

// LaunchConfig returns a copy of the resolved launch parameters.
func (f *Fixtures) LaunchConfig() common.LaunchConfig { return common.Clone(f.launch) }

// ContextConfig returns a copy of the resolved context parameters.
func (f *Fixtures) ContextConfig() common.ContextConfig { return common.Clone(f.context) }

// Browser returns the browser of the execution, launching it on first use.
func (f *Fixtures) Browser() api.Browser {
	f.t.Helper()

	b, err := f.getBrowser()
	if err != nil {
		f.p.fail(f.t, err)
	}
	return b
}

// Context returns the browser context of the execution, creating it on
// first use.
func (f *Fixtures) Context() api.BrowserContext {
	f.t.Helper()

	c, err := f.getContext()
	if err != nil {
		f.p.fail(f.t, err)
	}
	return c
}

// Page returns the page of the execution, opening it on first use.
func (f *Fixtures) Page() api.Page {
	f.t.Helper()

	pg, err := f.getPage()
	if err != nil {
		f.p.fail(f.t, err)
	}
	return pg
}

func (f *Fixtures) getBrowser() (api.Browser, error) {
	if f.browser != nil {
		return f.browser, nil
	}

	_, span := f.p.tracer.TraceStep(f.ctx, f.executionID, "browser.launch",
		oteltrace.WithAttributes(attribute.String("browser.engine", f.engine.String())))
	defer span.End()

	bt, err := f.p.launcherFor(f.engine)
	if err != nil {
		return nil, errors.Wrap(err, "starting the browser toolkit")
	}
	hooks := GetHooks(f.ctx)
	proxy, err := hooks.Proxy.Proxy(f.engine)
	if err != nil {
		return nil, err
	}
	env, err := hooks.Env.BrowserEnv(f.engine)
	if err != nil {
		return nil, err
	}

	opts, err := common.Merge(common.LaunchConfig(proxy), f.launch).ToLaunchOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUsage, err)
	}
	if env != nil {
		opts.Env = env
	}

	b, err := bt.Launch(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to launch a %s browser instance", f.engine)
	}
	f.browser = b
	f.unregister = browserprocess.Register(f.ctx, f.p.logger, b)

	f.p.logger.Debugf("Fixtures:getBrowser", "eid:%s launched %s %s", f.executionID, f.engine, b.Version())

	return b, nil
}

func (f *Fixtures) getContext() (api.BrowserContext, error) {
	if f.bctx != nil {
		return f.bctx, nil
	}

	b, err := f.getBrowser()
	if err != nil {
		return nil, err
	}

	_, span := f.p.tracer.TraceStep(f.ctx, f.executionID, "browser.new_context")
	defer span.End()

	device := common.ContextConfig{}
	if name := GetOptions(f.ctx).Device; name.Valid {
		if device, err = f.p.device(name.String); err != nil {
			return nil, err
		}
	}
	cfg := common.Merge(device, f.context, f.p.policy.ContextKwargs())
	opts, err := cfg.ToContextOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUsage, err)
	}

	c, err := b.NewContext(opts)
	if err != nil {
		return nil, errors.Wrap(err, "creating a browser context")
	}
	f.bctx = c
	c.OnPage(f.track)

	if f.p.policy.Trace() {
		err := c.StartTracing(playwright.TracingStartOptions{
			Screenshots: playwright.Bool(true),
			Snapshots:   playwright.Bool(true),
			Sources:     playwright.Bool(true),
		})
		if err != nil {
			return nil, errors.Wrap(err, "starting tracing")
		}
	}

	return c, nil
}

func (f *Fixtures) getPage() (api.Page, error) {
	if f.page != nil {
		return f.page, nil
	}

	c, err := f.getContext()
	if err != nil {
		return nil, err
	}

	_, span := f.p.tracer.TraceStep(f.ctx, f.executionID, "browser.new_page")
	defer span.End()

	pg, err := c.NewPage()
	if err != nil {
		return nil, errors.Wrap(err, "opening a page")
	}
	f.page = pg
	f.track(pg)

	return pg, nil
}

// track records pg once, in opening order. Pages opened by the test
// through the toolkit are tracked as well.
func (f *Fixtures) track(pg api.Page) {
	f.pagesMu.Lock()
	defer f.pagesMu.Unlock()

	for _, x := range f.pages {
		if x == pg {
			return
		}
	}
	f.pages = append(f.pages, pg)
}

func (f *Fixtures) trackedPages() []api.Page {
	f.pagesMu.Lock()
	defer f.pagesMu.Unlock()

	return append([]api.Page(nil), f.pages...)
}

// teardown closes what the execution created and keeps its artifacts
// when the policy retains them.
func (f *Fixtures) teardown() {
	failed := f.t.Failed()
	retain := f.p.policy.Retain(failed)
	defer f.p.tracer.EndExecution(f.executionID, failed)

	var errs []error
	if f.bctx != nil {
		errs = append(errs, f.closeContext(retain)...)
	}
	if f.browser != nil {
		if err := f.browser.Close(); err != nil {
			errs = append(errs, errors.Wrapf(err, "closing the %s browser", f.engine))
		}
		f.unregister()
	}

	for _, err := range errs {
		f.t.Errorf("tearing down %s: %v", f.executionID, err)
	}
}

func (f *Fixtures) closeContext(retain bool) []error {
	var (
		errs   []error
		pages  = f.trackedPages()
		policy = f.p.policy
		name   = f.item.Name()
	)

	if retain && policy.Screenshots() != ScreenshotsNo {
		full := policy.Screenshots() == ScreenshotsFull
		persister := f.p.dir.Persister()
		for i, pg := range pages {
			if pg.IsClosed() {
				continue
			}
			data, err := pg.Screenshot(full)
			if err != nil {
				errs = append(errs, errors.Wrap(err, "taking a screenshot"))
				continue
			}
			path := policy.ScreenshotPath(name, f.engine, i+1)
			if err := persister.Persist(f.p.ctx, path, bytes.NewReader(data)); err != nil {
				errs = append(errs, errors.Wrap(err, "saving a screenshot"))
			}
		}
	}

	if policy.Trace() {
		path := ""
		if retain {
			path = policy.TracePath(name, f.engine)
		}
		if err := f.bctx.StopTracing(path); err != nil {
			errs = append(errs, errors.Wrap(err, "stopping tracing"))
		}
	}

	videos := make([]api.Video, 0, len(pages))
	for _, pg := range pages {
		if v := pg.Video(); v != nil {
			videos = append(videos, v)
		}
	}

	if err := f.bctx.Close(); err != nil {
		errs = append(errs, errors.Wrap(err, "closing the browser context"))
	}

	for i, v := range videos {
		if retain {
			if err := v.SaveAs(policy.VideoPath(name, f.engine, i+1)); err != nil {
				errs = append(errs, errors.Wrap(err, "saving a video"))
			}
		}
		if err := v.Delete(); err != nil {
			errs = append(errs, errors.Wrap(err, "deleting a video"))
		}
	}

	return errs
}
