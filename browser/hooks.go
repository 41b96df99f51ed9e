package browser

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/playwright-community/playwright-go"

	"github.com/playwright-enhanced/pwe/common"
	"github.com/playwright-enhanced/pwe/osext"
)

// EnvNoDebug disables debugger detection when set, e.g. while
// collecting coverage under a tracing tool.
const EnvNoDebug = "PWE_COVERAGE_NO_DEBUG"

// DebugDetector reports whether an interactive debugger is attached.
type DebugDetector interface {
	IsDebugging() (bool, error)
}

// BinaryAcquirer downloads the browser binaries before the run.
type BinaryAcquirer interface {
	Acquire(ctx context.Context, mode string, engines []common.Engine) error
}

// ProxyProvider returns the proxy launch parameters for an engine.
// It returns nil when no proxy is used.
type ProxyProvider interface {
	Proxy(engine common.Engine) (common.LaunchConfig, error)
}

// BrowserEnvProvider returns the environment of launched browsers.
// A nil environment inherits the environment of the test process.
type BrowserEnvProvider interface {
	BrowserEnv(engine common.Engine) (map[string]string, error)
}

// Hooks are the override points of the plugin, one per capability.
// Nil hooks fall back to the defaults.
type Hooks struct {
	Debug    DebugDetector
	Binaries BinaryAcquirer
	Proxy    ProxyProvider
	Env      BrowserEnvProvider
}

// withDefaults returns a copy of h where every nil hook is replaced
// by its default implementation.
func (h *Hooks) withDefaults(logger *common.Logger) *Hooks {
	out := &Hooks{}
	if h != nil {
		*out = *h
	}
	if out.Debug == nil {
		out.Debug = &TracerDebugDetector{LookupEnv: os.LookupEnv}
	}
	if out.Binaries == nil {
		out.Binaries = &PlaywrightBinaryAcquirer{logger: logger}
	}
	if out.Proxy == nil {
		out.Proxy = noProxy{}
	}
	if out.Env == nil {
		out.Env = inheritEnv{}
	}
	return out
}

// TracerDebugDetector reports a debugger when the process is being
// traced, which is how debuggers such as delve attach on Linux.
type TracerDebugDetector struct {
	LookupEnv func(string) (string, bool)
}

// IsDebugging implements DebugDetector.
func (d *TracerDebugDetector) IsDebugging() (bool, error) {
	if d.LookupEnv != nil {
		if _, ok := d.LookupEnv(EnvNoDebug); ok {
			return false, nil
		}
	}
	pid, err := osext.TracerPID()
	if err != nil {
		return false, err
	}
	return pid != 0, nil
}

type noDebugger struct{}

func (noDebugger) IsDebugging() (bool, error) { return false, nil }

// PlaywrightBinaryAcquirer installs the toolkit driver and browsers.
type PlaywrightBinaryAcquirer struct {
	logger *common.Logger
	// Stdout receives the installer output. It is discarded when nil.
	Stdout io.Writer
}

// NewPlaywrightBinaryAcquirer returns an acquirer logging to logger and
// writing the installer output to stdout.
func NewPlaywrightBinaryAcquirer(logger *common.Logger, stdout io.Writer) *PlaywrightBinaryAcquirer {
	return &PlaywrightBinaryAcquirer{logger: logger, Stdout: stdout}
}

// Acquire implements BinaryAcquirer.
func (a *PlaywrightBinaryAcquirer) Acquire(_ context.Context, mode string, engines []common.Engine) error {
	browsers := make([]string, 0, len(engines))
	for _, e := range engines {
		browsers = append(browsers, e.String())
	}
	out := a.Stdout
	if out == nil {
		out = io.Discard
	}
	ro := &playwright.RunOptions{
		Browsers: browsers,
		Verbose:  a.Stdout != nil,
		Stdout:   out,
		Stderr:   out,
	}

	a.logger.Infof("hooks:Acquire", "acquiring binaries mode:%s browsers:%v", mode, browsers)

	switch mode {
	case AcquireYes:
		if err := playwright.Install(ro); err != nil {
			return fmt.Errorf("installing browser binaries: %w", err)
		}
	case AcquireWithDeps:
		ro.SkipInstallBrowsers = true
		driver, err := playwright.NewDriver(ro)
		if err != nil {
			return fmt.Errorf("creating driver: %w", err)
		}
		if err := driver.Install(); err != nil {
			return fmt.Errorf("installing driver: %w", err)
		}
		cmd := driver.Command(append([]string{"install", "--with-deps"}, browsers...)...)
		cmd.Stdout = out
		cmd.Stderr = out
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("problem downloading playwright driver binaries: %w", err)
		}
	}
	return nil
}

type noProxy struct{}

func (noProxy) Proxy(common.Engine) (common.LaunchConfig, error) { return nil, nil }

type inheritEnv struct{}

func (inheritEnv) BrowserEnv(common.Engine) (map[string]string, error) { return nil, nil } //nolint:nilnil

// StaticProxy is a ProxyProvider returning the same proxy for every engine.
type StaticProxy struct {
	Server, Bypass, Username, Password string
}

// Proxy implements ProxyProvider.
func (p StaticProxy) Proxy(common.Engine) (common.LaunchConfig, error) {
	if p.Server == "" {
		return nil, nil
	}
	cfg := common.LaunchConfig{common.LaunchProxyServer: p.Server}
	if p.Bypass != "" {
		cfg[common.LaunchProxyBypass] = p.Bypass
	}
	if p.Username != "" {
		cfg[common.LaunchProxyUsername] = p.Username
	}
	if p.Password != "" {
		cfg[common.LaunchProxyPassword] = p.Password
	}
	return cfg, nil
}
