package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/playwright-enhanced/pwe/common"
)

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pwe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadOptionsDefaults(t *testing.T) {
	t.Parallel()

	opts, err := LoadOptions(nil, noEnv)
	require.NoError(t, err)

	assert.Empty(t, opts.Browsers)
	assert.False(t, opts.Headed)
	assert.False(t, opts.BaseURL.Valid)
	assert.Equal(t, DefaultArtifactsDir, opts.Artifacts)
	assert.Equal(t, ScreenshotsNo, opts.ScreenshotsOnFail)
	assert.Equal(t, VideoMode{}, opts.VideoOnFail)
	assert.Equal(t, AcquireNo, opts.AcquireDrivers)
	assert.Equal(t, int64(common.DefaultBrowserTimeout), opts.BrowserTimeout)
	assert.Equal(t, "warn", opts.LogLevel)
}

func TestLoadOptionsFlags(t *testing.T) {
	t.Parallel()

	opts, err := LoadOptions([]string{
		"--browser", "firefox", "--browser=WebKit",
		"--headed",
		"--base-url", "http://localhost:8000",
		"--slow-mo", "250",
		"--video-on-fail", "800x640",
		"--screenshots-on-fail", "full",
		"--trace-on-fail",
		"--channel", "chrome-beta",
		"--unknown-flag", "-test.v",
	}, noEnv)
	require.NoError(t, err)

	assert.Equal(t, []common.Engine{common.EngineFirefox, common.EngineWebKit}, opts.Browsers)
	assert.True(t, opts.Headed)
	assert.Equal(t, null.StringFrom("http://localhost:8000"), opts.BaseURL)
	assert.Equal(t, null.IntFrom(250), opts.SlowMo)
	assert.Equal(t, VideoMode{Enabled: true, Width: 800, Height: 640}, opts.VideoOnFail)
	assert.Equal(t, ScreenshotsFull, opts.ScreenshotsOnFail)
	assert.True(t, opts.TraceOnFail)
	assert.Equal(t, null.StringFrom("chrome-beta"), opts.Channel)
}

func TestLoadOptionsPrecedence(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
browser: [webkit]
base-url: http://from-file
slow-mo: 10
headed: true
artifacts: file-results
`)
	env := envOf(map[string]string{
		"PWE_CONFIG":   path,
		"PWE_BASE_URL": "http://from-env",
		"PWE_SLOW_MO":  "20",
		"PWE_BROWSER":  "chromium, firefox",
	})

	opts, err := LoadOptions([]string{"--slow-mo", "30"}, env)
	require.NoError(t, err)

	assert.Equal(t, path, opts.ConfigFile)
	assert.Equal(t, null.IntFrom(30), opts.SlowMo, "flags win over the environment")
	assert.Equal(t, null.StringFrom("http://from-env"), opts.BaseURL, "the environment wins over the file")
	assert.Equal(t, []common.Engine{common.EngineChromium, common.EngineFirefox}, opts.Browsers)
	assert.True(t, opts.Headed, "the file wins over defaults")
	assert.Equal(t, "file-results", opts.Artifacts)
}

func TestLoadOptionsConfigFlag(t *testing.T) {
	t.Parallel()

	fromEnv := writeConfig(t, "base-url: http://env-file\n")
	fromFlag := writeConfig(t, "base-url: http://flag-file\n")

	opts, err := LoadOptions([]string{"--pwe-config", fromFlag}, envOf(map[string]string{"PWE_CONFIG": fromEnv}))
	require.NoError(t, err)
	assert.Equal(t, null.StringFrom("http://flag-file"), opts.BaseURL)
}

func TestLoadOptionsOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
overrides:
  - tests: "TestCheckout/*"
    browser_kwargs: {slow_mo: 100}
    only_on_browsers: [firefox]
  - tests: "Test**"
    context_kwargs: {locale: fr-FR}
`)
	opts, err := LoadOptions([]string{"--pwe-config", path}, noEnv)
	require.NoError(t, err)
	require.Len(t, opts.Overrides, 2)

	ms := opts.OverrideMarkers("TestCheckout/guest")
	require.Len(t, ms, 3)
	assert.Equal(t, common.MarkerBrowserKwargs, ms[0].Name)
	assert.Equal(t, 100, ms[0].Kwargs["slow_mo"])
	assert.Equal(t, common.MarkerOnlyOnBrowsers, ms[1].Name)
	assert.Equal(t, []any{"firefox"}, ms[1].Args)
	assert.Equal(t, common.MarkerContextKwargs, ms[2].Name)

	assert.Len(t, opts.OverrideMarkers("TestLogin"), 1)
	assert.Empty(t, opts.OverrideMarkers("BenchmarkLogin"))
}

func TestLoadOptionsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		env     map[string]string
		config  string
		wantErr string
	}{
		{
			name:    "invalid browser",
			args:    []string{"--browser", "netscape"},
			wantErr: `flag browser: usage error: argument --browser: invalid browser engine "netscape"`,
		},
		{
			name:    "invalid channel",
			args:    []string{"--channel", "safari"},
			wantErr: "argument --channel: invalid choice: 'safari' (choose from 'chrome', 'chrome-beta'",
		},
		{
			name:    "invalid acquire mode",
			env:     map[string]string{"PWE_ACQUIRE_DRIVERS": "maybe"},
			wantErr: "environment variable for acquire-drivers: usage error: argument --acquire-drivers: invalid choice: 'maybe' (choose from 'no', 'yes', 'with-deps')",
		},
		{
			name:    "invalid video",
			args:    []string{"--video-on-fail", "big"},
			wantErr: "can only be 'yes', 'no' or a width x height string such as '800x640'",
		},
		{
			name:    "invalid video size",
			args:    []string{"--video-on-fail", "800xabc"},
			wantErr: "width x height option must both be valid integers",
		},
		{
			name:    "invalid slow-mo",
			args:    []string{"--slow-mo", "fast"},
			wantErr: "argument --slow-mo: invalid int value: 'fast'",
		},
		{
			name:    "negative timeout",
			args:    []string{"--browser-timeout=-1"},
			wantErr: "browser-timeout must not be negative",
		},
		{
			name:    "unknown config key",
			config:  "browsers: [firefox]\n",
			wantErr: `unknown config file key "browsers"`,
		},
		{
			name:    "empty override rule",
			config:  "overrides:\n  - tests: TestA*\n  - ~\n",
			wantErr: "empty override rule at index 1",
		},
		{
			name:    "headed set to empty in config file",
			config:  "headed: \"\"\n",
			wantErr: `config file key headed: usage error: "" is not a boolean`,
		},
		{
			name:    "headed set to empty in environment",
			env:     map[string]string{"PWE_HEADED": ""},
			wantErr: `environment variable for headed: usage error: "" is not a boolean`,
		},
		{
			name:    "bad override pattern",
			config:  "overrides:\n  - tests: \"Test[\"\n",
			wantErr: `compiling override pattern "Test["`,
		},
		{
			name:    "override without pattern",
			config:  "overrides:\n  - browser_kwargs: {slow_mo: 1}\n",
			wantErr: "override rule without a tests pattern",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := tt.env
			if tt.config != "" {
				env = map[string]string{"PWE_CONFIG": writeConfig(t, tt.config)}
			}
			_, err := LoadOptions(tt.args, envOf(env))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrUsage)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadOptionsMissingConfig(t *testing.T) {
	t.Parallel()

	_, err := LoadOptions([]string{"--pwe-config", filepath.Join(t.TempDir(), "nope.yaml")}, noEnv)
	require.Error(t, err)
	assert.ErrorContains(t, err, "reading config file")
}

func TestOptionEnvName(t *testing.T) {
	t.Parallel()

	opt, ok := lookupOption("screenshots-on-fail")
	require.True(t, ok)
	assert.Equal(t, "PWE_SCREENSHOTS_ON_FAIL", opt.EnvName())

	for name, want := range map[string]string{
		"pwe-config":     "PWE_CONFIG",
		"pwe-log-level":  "PWE_LOG_LEVEL",
		"pwe-log-filter": "PWE_LOG_FILTER",
	} {
		opt, ok := lookupOption(name)
		require.True(t, ok, name)
		assert.Equal(t, want, opt.EnvName())
	}

	_, ok = lookupOption("nope")
	assert.False(t, ok)
}
