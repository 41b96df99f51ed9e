// Package browser provides browser fixtures and command line
// configuration to tests run with go test.
//
// A test binary hands control to the plugin from TestMain:
//
//	func TestMain(m *testing.M) {
//		os.Exit(browser.Main(m))
//	}
//
// and tests ask for fixtures with Test:
//
//	func TestLogin(t *testing.T) {
//		browser.Test(t).
//			OnlyOnBrowsers("chromium", "firefox").
//			Run(func(t *testing.T, f *browser.Fixtures) {
//				_ = f.Page().Goto("/login")
//			})
//	}
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/playwright-enhanced/pwe/api"
	"github.com/playwright-enhanced/pwe/browserprocess"
	"github.com/playwright-enhanced/pwe/common"
	"github.com/playwright-enhanced/pwe/osext"
	"github.com/playwright-enhanced/pwe/otel"
	"github.com/playwright-enhanced/pwe/storage"
	"github.com/playwright-enhanced/pwe/toolkit"
	"github.com/playwright-enhanced/pwe/trace"
)

const version = "0.1.0"

// Exit codes returned by Main besides the ones of the test binary.
const (
	// ExitUsage is returned when the plugin could not be configured.
	ExitUsage = 4
	// ExitInterrupted replaces a failing exit code when tests failed
	// because the plugin was misused.
	ExitInterrupted = 2
)

// Version returns the plugin version.
func Version() string {
	return version
}

// M is the part of testing.M used by Main.
type M interface {
	Run() int
}

type config struct {
	args      []string
	lookupEnv func(string) (string, bool)
	dotenv    []string
	hooks     *Hooks
	stderr    io.Writer

	newToolkit func() (api.Toolkit, error)
}

// Option configures Main and Start.
type Option func(*config)

// UseArgs makes the plugin read its flags from args instead of os.Args.
func UseArgs(args ...string) Option {
	return func(c *config) { c.args = args }
}

// UseEnv makes the plugin read environment variables through lookup.
func UseEnv(lookup func(string) (string, bool)) Option {
	return func(c *config) { c.lookupEnv = lookup }
}

// UseDotEnv loads the given .env files into the process environment
// before the options are read. Missing files are skipped.
func UseDotEnv(files ...string) Option {
	return func(c *config) { c.dotenv = files }
}

// UseHooks replaces the default hooks. Nil fields keep their default.
func UseHooks(h Hooks) Option {
	return func(c *config) { c.hooks = &h }
}

// UseToolkit replaces the function starting the browser toolkit.
func UseToolkit(fn func() (api.Toolkit, error)) Option {
	return func(c *config) { c.newToolkit = fn }
}

//nolint:gochecknoglobals
var current atomic.Pointer[Plugin]

// Main starts the plugin, runs the tests and shuts the plugin down.
// Its result is the exit code of the test binary.
func Main(m M, opts ...Option) int {
	p, err := Start(context.Background(), opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pwe: %v\n", err)
		if errors.Is(err, common.ErrUsage) {
			return ExitUsage
		}
		return 1
	}
	current.Store(p)
	defer func() {
		current.CompareAndSwap(p, nil)
		if err := p.Close(); err != nil {
			p.logger.Errorf("browser:Main", "shutting down: %v", err)
		}
	}()

	return p.ExitCode(m.Run())
}

// Plugin is the state of a single run.
type Plugin struct {
	ctx      context.Context
	opts     *Options
	hooks    *Hooks
	logger   *common.Logger
	runID    string
	dir      *storage.Dir
	policy   *ArtifactPolicy
	resolver *Resolver
	scope    *osext.Scope
	tp       otel.TraceProvider
	tracer   *trace.Tracer

	newToolkit  func() (api.Toolkit, error)
	toolkitOnce sync.Once
	toolkit     api.Toolkit
	launchers   *common.Launchers
	toolkitErr  error

	usageErrors atomic.Int64
}

// Start configures a run: it reads the options, prepares the artifacts
// directory, acquires the browser binaries when asked to and sets the
// environment the toolkit expects. Close undoes it.
func Start(ctx context.Context, opts ...Option) (*Plugin, error) { //nolint:funlen
	c := &config{
		args:      testBinaryArgs(os.Args[1:]),
		lookupEnv: os.LookupEnv,
		dotenv:    []string{".env"},
		stderr:    os.Stderr,
	}
	for _, o := range opts {
		o(c)
	}

	if err := loadDotEnv(c.dotenv); err != nil {
		return nil, err
	}

	options, err := LoadOptions(c.args, c.lookupEnv)
	if err != nil {
		return nil, err
	}
	logger, err := common.NewStderrLogger(options.LogLevel, options.LogFilter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUsage, err)
	}
	logger.SetOutput(c.stderr)

	p := &Plugin{
		opts:       options,
		logger:     logger,
		runID:      uuid.NewString(),
		newToolkit: c.newToolkit,
	}
	p.hooks = c.hooks.withDefaults(logger)
	if p.newToolkit == nil {
		p.newToolkit = func() (api.Toolkit, error) {
			tk, err := toolkit.Run(nil)
			if err != nil {
				return nil, err
			}
			return tk, nil
		}
	}

	ctx = osext.WithRunID(ctx, p.runID)
	ctx = WithOptions(ctx, options)
	ctx = WithHooks(ctx, p.hooks)
	p.ctx = ctx

	logger.Debugf("browser:Start", "rid:%s engines:%v artifacts:%q", p.runID, options.Engines(), options.Artifacts)

	if p.dir, err = storage.PrepareDir(options.Artifacts, p.runID); err != nil {
		if errors.Is(err, storage.ErrUnsafeDir) {
			err = fmt.Errorf("%w: argument --artifacts: %w", common.ErrUsage, err)
		}
		return nil, err
	}
	p.policy = NewArtifactPolicy(options, p.dir.Path())
	p.resolver = NewResolver(options, p.hooks.Debug)

	if p.scope, err = osext.Acquire(ctx, logger, options.Environ()); err != nil {
		return nil, err
	}

	if options.AcquireDrivers != AcquireNo {
		engines := options.Engines()
		if len(engines) == 0 {
			engines = common.Engines()
		}
		if err := p.hooks.Binaries.Acquire(ctx, options.AcquireDrivers, engines); err != nil {
			_ = p.scope.Release()
			return nil, err
		}
	}

	if options.OtelEndpoint.Valid {
		p.tp, err = otel.NewTraceProvider(ctx, otel.Config{
			Endpoint:   options.OtelEndpoint.String,
			Insecure:   options.OtelInsecure,
			Attributes: map[string]string{"run.id": p.runID},
		})
		if err != nil {
			_ = p.scope.Release()
			return nil, fmt.Errorf("starting trace provider: %w", err)
		}
	} else {
		p.tp = otel.NewNoopTraceProvider()
	}
	p.tracer = trace.NewTracer(logger, p.tp)

	return p, nil
}

// Options returns the options of the run.
func (p *Plugin) Options() *Options { return p.opts }

// RunID returns the unique identifier of the run.
func (p *Plugin) RunID() string { return p.runID }

// ArtifactsDir returns the absolute path of the artifacts directory.
func (p *Plugin) ArtifactsDir() string { return p.dir.Path() }

// ExitCode returns the exit code of the run given the exit code of
// the tests.
func (p *Plugin) ExitCode(code int) int {
	if code == 1 && p.usageErrors.Load() > 0 {
		return ExitInterrupted
	}
	return code
}

// Close closes browsers left open, stops the toolkit and restores the
// environment.
func (p *Plugin) Close() error {
	browserprocess.ForceShutdown(p.ctx)

	var errs []error
	if p.toolkit != nil {
		if err := p.toolkit.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.tp.Shutdown(p.ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down trace provider: %w", err))
	}
	if err := p.scope.Release(); err != nil {
		errs = append(errs, err)
	}
	osext.ForceRelease(p.ctx)

	return errors.Join(errs...)
}

// launcherFor returns the launcher of engine, starting the toolkit
// on first use.
func (p *Plugin) launcherFor(engine common.Engine) (api.BrowserType, error) {
	p.toolkitOnce.Do(func() {
		p.toolkit, p.toolkitErr = p.newToolkit()
		if p.toolkitErr != nil {
			return
		}
		p.launchers, p.toolkitErr = common.NewLaunchers(p.toolkit)
	})
	if p.toolkitErr != nil {
		return nil, p.toolkitErr
	}
	return p.launchers.For(engine), nil
}

func (p *Plugin) device(name string) (common.ContextConfig, error) {
	if _, err := p.launcherFor(common.DefaultEngine); err != nil {
		return nil, err
	}
	d, ok := p.toolkit.Device(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown device %q", common.ErrUsage, name)
	}
	return common.DeviceContextConfig(d), nil
}

// testBinaryArgs drops the flags of the go test binary, they are not
// ours to parse.
func testBinaryArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if strings.HasPrefix(a, "-test.") || strings.HasPrefix(a, "--test.") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func loadDotEnv(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("loading %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}
