package common

import (
	"fmt"
	"sort"

	"github.com/playwright-community/playwright-go"
)

// DefaultBrowserTimeout is the browser launch timeout in milliseconds.
const DefaultBrowserTimeout = 30_000

// ToLaunchOptions converts the launch configuration to the toolkit
// launch options. Unknown keys and values of the wrong type are errors.
func (c LaunchConfig) ToLaunchOptions() (playwright.BrowserTypeLaunchOptions, error) { //nolint:funlen,cyclop
	var (
		opts  playwright.BrowserTypeLaunchOptions
		proxy playwright.Proxy
		err   error
	)

	for _, k := range sortedKeys(c) {
		v := c[k]
		switch k {
		case LaunchHeadless:
			opts.Headless, err = boolPtr(v)
		case LaunchExecutablePath:
			opts.ExecutablePath, err = stringPtr(v)
		case LaunchChannel:
			opts.Channel, err = stringPtr(v)
		case LaunchTimeout:
			opts.Timeout, err = floatPtr(v)
		case LaunchChromiumSandbox:
			opts.ChromiumSandbox, err = boolPtr(v)
		case LaunchSlowMo:
			opts.SlowMo, err = floatPtr(v)
		case LaunchHandleSIGINT:
			opts.HandleSIGINT, err = boolPtr(v)
		case LaunchHandleSIGTERM:
			opts.HandleSIGTERM, err = boolPtr(v)
		case LaunchHandleSIGHUP:
			opts.HandleSIGHUP, err = boolPtr(v)
		case LaunchDownloadsPath:
			opts.DownloadsPath, err = stringPtr(v)
		case LaunchTracesDir:
			opts.TracesDir, err = stringPtr(v)
		case LaunchProxyServer:
			proxy.Server, err = toString(v)
		case LaunchProxyBypass:
			proxy.Bypass, err = stringPtr(v)
		case LaunchProxyUsername:
			proxy.Username, err = stringPtr(v)
		case LaunchProxyPassword:
			proxy.Password, err = stringPtr(v)
		default:
			return opts, fmt.Errorf("unsupported launch option %q", k)
		}
		if err != nil {
			return opts, fmt.Errorf("parsing launch option %q: %w", k, err)
		}
	}

	if proxy.Server != "" {
		opts.Proxy = &proxy
	} else if proxy.Bypass != nil || proxy.Username != nil || proxy.Password != nil {
		return opts, fmt.Errorf("launch option %q is required by the other proxy options", LaunchProxyServer)
	}

	return opts, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func boolPtr(v any) (*bool, error) {
	b, err := toBool(v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func floatPtr(v any) (*float64, error) {
	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func stringPtr(v any) (*string, error) {
	s, err := toString(v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
