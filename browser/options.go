package browser

import (
	"fmt"

	"gopkg.in/guregu/null.v3"

	"github.com/playwright-enhanced/pwe/common"
)

// Environment variables prepared for the toolkit during a run.
const (
	EnvPWDebug           = "PWDEBUG"
	EnvDownloadHost      = "PLAYWRIGHT_DOWNLOAD_HOST"
	EnvBrowsersPath      = "PLAYWRIGHT_BROWSERS_PATH"
	EnvSeleniumRemoteURL = "SELENIUM_REMOTE_URL"
)

// Binary acquisition modes.
const (
	AcquireNo       = "no"
	AcquireYes      = "yes"
	AcquireWithDeps = "with-deps"
)

// DefaultArtifactsDir is where artifacts are collected unless told otherwise.
const DefaultArtifactsDir = "playwright-enhanced-results/"

//nolint:gochecknoglobals
var channels = []string{
	"chrome", "chrome-beta", "chrome-dev", "chrome-canary",
	"msedge", "msedge-beta", "msedge-dev", "msedge-canary",
}

// Options is the run-wide configuration built from the command line,
// the environment and the config file. It is built once per run and
// must not be modified once the run started.
type Options struct {
	Browsers          []common.Engine
	Headed            bool
	BaseURL           null.String
	Device            null.String
	SlowMo            null.Int
	PWDebug           bool
	Artifacts         string
	ScreenshotsOnFail ScreenshotMode
	VideoOnFail       VideoMode
	TraceOnFail       bool
	SeleniumGrid      null.String
	DownloadHost      null.String
	DriversPath       null.String
	AcquireDrivers    string
	ExecutablePath    null.String
	Channel           null.String
	BrowserTimeout    int64
	ChromiumSandbox   bool

	ConfigFile   string
	LogLevel     string
	LogFilter    string
	OtelEndpoint null.String
	OtelInsecure bool

	// Overrides are the marker rules read from the config file.
	Overrides []*OverrideRule
}

// NewOptions returns the default options.
func NewOptions() *Options {
	return &Options{
		Artifacts:         DefaultArtifactsDir,
		ScreenshotsOnFail: ScreenshotsNo,
		VideoOnFail:       VideoMode{},
		AcquireDrivers:    AcquireNo,
		BrowserTimeout:    common.DefaultBrowserTimeout,
		LogLevel:          "warn",
	}
}

// Engines returns the engines requested on the command line, without
// duplicates. It is empty when none were requested.
func (o *Options) Engines() []common.Engine {
	return common.DedupEngines(o.Browsers)
}

// CLIDefaults returns the launch parameters derived from the run-wide
// options, filtered for engine.
func (o *Options) CLIDefaults(engine common.Engine) common.LaunchConfig {
	cfg := common.LaunchConfig{
		common.LaunchTimeout:       o.BrowserTimeout,
		common.LaunchHandleSIGINT:  true,
		common.LaunchHandleSIGTERM: true,
		common.LaunchHandleSIGHUP:  true,
	}
	if o.ExecutablePath.Valid {
		cfg[common.LaunchExecutablePath] = o.ExecutablePath.String
	}
	if o.Channel.Valid {
		cfg[common.LaunchChannel] = o.Channel.String
	}
	if o.Headed {
		cfg[common.LaunchHeadless] = false
	}
	if o.ChromiumSandbox {
		cfg[common.LaunchChromiumSandbox] = true
	}
	if o.SlowMo.Valid && o.SlowMo.Int64 > 0 {
		cfg[common.LaunchSlowMo] = o.SlowMo.Int64
	}

	return common.FilterLaunchConfig(engine, cfg)
}

// CLIContextDefaults returns the context parameters derived from the
// run-wide options.
func (o *Options) CLIContextDefaults() common.ContextConfig {
	cfg := common.ContextConfig{}
	if o.BaseURL.Valid {
		cfg[common.ContextBaseURL] = o.BaseURL.String
	}
	return cfg
}

// Environ returns the environment variables the toolkit expects for
// this run. Variables for options that were not given are left out.
func (o *Options) Environ() map[string]string {
	env := make(map[string]string)
	if o.PWDebug {
		env[EnvPWDebug] = "console"
	}
	if o.DownloadHost.Valid {
		env[EnvDownloadHost] = o.DownloadHost.String
	}
	if o.DriversPath.Valid {
		env[EnvBrowsersPath] = o.DriversPath.String
	}
	if o.SeleniumGrid.Valid {
		env[EnvSeleniumRemoteURL] = o.SeleniumGrid.String
	}
	return env
}

// Validate checks the options for values no single setter can catch.
func (o *Options) Validate() error {
	if o.Artifacts == "" {
		return fmt.Errorf("%w: artifacts directory must not be empty", common.ErrUsage)
	}
	if o.BrowserTimeout < 0 {
		return fmt.Errorf("%w: browser-timeout must not be negative", common.ErrUsage)
	}
	if o.SlowMo.Valid && o.SlowMo.Int64 < 0 {
		return fmt.Errorf("%w: slow-mo must not be negative", common.ErrUsage)
	}
	for _, r := range o.Overrides {
		if err := r.compile(); err != nil {
			return err
		}
	}
	return nil
}
