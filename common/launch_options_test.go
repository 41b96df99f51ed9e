package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchConfigToLaunchOptions(t *testing.T) {
	t.Parallel()

	opts, err := LaunchConfig{
		LaunchHeadless:        false,
		LaunchTimeout:         DefaultBrowserTimeout,
		LaunchChromiumSandbox: true,
		LaunchHandleSIGINT:    true,
		LaunchSlowMo:          "250",
		LaunchChannel:         "chrome",
		LaunchProxyServer:     "http://proxy:3128",
		LaunchProxyBypass:     "localhost",
	}.ToLaunchOptions()
	require.NoError(t, err)

	require.NotNil(t, opts.Headless)
	assert.False(t, *opts.Headless)
	require.NotNil(t, opts.Timeout)
	assert.Equal(t, 30000.0, *opts.Timeout)
	require.NotNil(t, opts.ChromiumSandbox)
	assert.True(t, *opts.ChromiumSandbox)
	require.NotNil(t, opts.SlowMo)
	assert.Equal(t, 250.0, *opts.SlowMo)
	require.NotNil(t, opts.Channel)
	assert.Equal(t, "chrome", *opts.Channel)
	require.NotNil(t, opts.Proxy)
	assert.Equal(t, "http://proxy:3128", opts.Proxy.Server)
	require.NotNil(t, opts.Proxy.Bypass)
	assert.Equal(t, "localhost", *opts.Proxy.Bypass)
	assert.Nil(t, opts.ExecutablePath)
}

func TestLaunchConfigToLaunchOptionsErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		cfg    LaunchConfig
		errMsg string
	}{
		{
			name:   "unknown_key",
			cfg:    LaunchConfig{"devtools": true},
			errMsg: `unsupported launch option "devtools"`,
		},
		{
			name:   "wrong_type",
			cfg:    LaunchConfig{LaunchHeadless: "maybe"},
			errMsg: `parsing launch option "headless": "maybe" is not a boolean`,
		},
		{
			name:   "proxy_without_server",
			cfg:    LaunchConfig{LaunchProxyUsername: "u"},
			errMsg: `launch option "proxy_server" is required`,
		},
	}
	for _, tt := range testCases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.cfg.ToLaunchOptions()
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
