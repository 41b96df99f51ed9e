package common

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// Context parameter names translated by ToContextOptions,
// in addition to the ones declared in kwargs.go.
const (
	contextAcceptDownloads   = "accept_downloads"
	contextBypassCSP         = "bypass_csp"
	contextColorScheme       = "color_scheme"
	contextDeviceScaleFactor = "device_scale_factor"
	contextExtraHTTPHeaders  = "extra_http_headers"
	contextGeoLatitude       = "geolocation_latitude"
	contextGeoLongitude      = "geolocation_longitude"
	contextGeoAccuracy       = "geolocation_accuracy"
	contextHasTouch          = "has_touch"
	contextHTTPUsername      = "http_credentials_username"
	contextHTTPPassword      = "http_credentials_password"
	contextIgnoreHTTPSErrors = "ignore_https_errors"
	contextIsMobile          = "is_mobile"
	contextJavaScriptEnabled = "java_script_enabled"
	contextLocale            = "locale"
	contextOffline           = "offline"
	contextPermissions       = "permissions"
	contextReducedMotion     = "reduced_motion"
	contextScreenWidth       = "screen_width"
	contextScreenHeight      = "screen_height"
	contextStorageState      = "storage_state"
	contextTimezoneID        = "timezone_id"
	contextUserAgent         = "user_agent"
	contextViewportWidth     = "viewport_width"
	contextViewportHeight    = "viewport_height"
)

// Geolocation represents a geolocation.
type Geolocation struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// Validate validates the geolocation.
func (g *Geolocation) Validate() error {
	if g == nil {
		return nil // nothing to validate
	}

	if g.Accuracy < 0 {
		return fmt.Errorf(`invalid accuracy "%.2f": precondition 0 <= ACCURACY failed`, g.Accuracy)
	}
	if g.Latitude < -90 || g.Latitude > 90 {
		return fmt.Errorf(`invalid latitude "%.2f": precondition -90 <= LATITUDE <= 90 failed`, g.Latitude)
	}
	if g.Longitude < -180 || g.Longitude > 180 {
		return fmt.Errorf(`invalid longitude "%.2f": precondition -180 <= LONGITUDE <= 180 failed`, g.Longitude)
	}

	return nil
}

// DeviceContextConfig returns the context parameters emulating device.
func DeviceContextConfig(device *playwright.DeviceDescriptor) ContextConfig {
	if device == nil {
		return ContextConfig{}
	}
	cfg := ContextConfig{
		contextUserAgent:         device.UserAgent,
		contextDeviceScaleFactor: device.DeviceScaleFactor,
		contextIsMobile:          device.IsMobile,
		contextHasTouch:          device.HasTouch,
	}
	if device.Viewport != nil {
		cfg[contextViewportWidth] = device.Viewport.Width
		cfg[contextViewportHeight] = device.Viewport.Height
	}
	if device.Screen != nil {
		cfg[contextScreenWidth] = device.Screen.Width
		cfg[contextScreenHeight] = device.Screen.Height
	}
	return cfg
}

// ToContextOptions converts the context configuration to the toolkit
// browser context options. Unknown keys and values of the wrong type are errors.
func (c ContextConfig) ToContextOptions() (playwright.BrowserNewContextOptions, error) { //nolint:funlen,gocognit,cyclop
	var (
		opts     playwright.BrowserNewContextOptions
		geoloc   *Geolocation
		creds    *playwright.HttpCredentials
		viewport sizeBuilder
		screen   sizeBuilder
		video    sizeBuilder
		videoDir string
		err      error
	)

	geo := func() *Geolocation {
		if geoloc == nil {
			geoloc = &Geolocation{}
		}
		return geoloc
	}
	cred := func() *playwright.HttpCredentials {
		if creds == nil {
			creds = &playwright.HttpCredentials{}
		}
		return creds
	}

	for _, k := range sortedKeys(c) {
		v := c[k]
		switch k {
		case ContextBaseURL:
			opts.BaseURL, err = stringPtr(v)
		case contextAcceptDownloads:
			opts.AcceptDownloads, err = boolPtr(v)
		case contextBypassCSP:
			opts.BypassCSP, err = boolPtr(v)
		case contextColorScheme:
			var s string
			if s, err = toString(v); err == nil {
				cs := playwright.ColorScheme(s)
				opts.ColorScheme = &cs
			}
		case contextDeviceScaleFactor:
			opts.DeviceScaleFactor, err = floatPtr(v)
		case contextExtraHTTPHeaders:
			opts.ExtraHttpHeaders, err = toStringMap(v)
		case contextGeoLatitude:
			geo().Latitude, err = toFloat(v)
		case contextGeoLongitude:
			geo().Longitude, err = toFloat(v)
		case contextGeoAccuracy:
			geo().Accuracy, err = toFloat(v)
		case contextHasTouch:
			opts.HasTouch, err = boolPtr(v)
		case contextHTTPUsername:
			cred().Username, err = toString(v)
		case contextHTTPPassword:
			cred().Password, err = toString(v)
		case contextIgnoreHTTPSErrors:
			opts.IgnoreHttpsErrors, err = boolPtr(v)
		case contextIsMobile:
			opts.IsMobile, err = boolPtr(v)
		case contextJavaScriptEnabled:
			opts.JavaScriptEnabled, err = boolPtr(v)
		case contextLocale:
			opts.Locale, err = stringPtr(v)
		case contextOffline:
			opts.Offline, err = boolPtr(v)
		case contextPermissions:
			opts.Permissions, err = toStringSlice(v)
		case contextReducedMotion:
			var s string
			if s, err = toString(v); err == nil {
				rm := playwright.ReducedMotion(s)
				opts.ReducedMotion = &rm
			}
		case contextScreenWidth:
			screen.width, err = intPtr(v)
		case contextScreenHeight:
			screen.height, err = intPtr(v)
		case contextStorageState:
			opts.StorageStatePath, err = stringPtr(v)
		case contextTimezoneID:
			opts.TimezoneId, err = stringPtr(v)
		case contextUserAgent:
			opts.UserAgent, err = stringPtr(v)
		case contextViewportWidth:
			viewport.width, err = intPtr(v)
		case contextViewportHeight:
			viewport.height, err = intPtr(v)
		case ContextRecordVideoDir:
			videoDir, err = toString(v)
		case ContextRecordVideoSizeWidth:
			video.width, err = intPtr(v)
		case ContextRecordVideoSizeHeight:
			video.height, err = intPtr(v)
		default:
			return opts, fmt.Errorf("unsupported context option %q", k)
		}
		if err != nil {
			return opts, fmt.Errorf("parsing context option %q: %w", k, err)
		}
	}

	if opts.Viewport, err = viewport.build("viewport"); err != nil {
		return opts, err
	}
	if opts.Screen, err = screen.build("screen"); err != nil {
		return opts, err
	}
	if geoloc != nil {
		if err := geoloc.Validate(); err != nil {
			return opts, fmt.Errorf("validating geolocation option: %w", err)
		}
		accuracy := geoloc.Accuracy
		opts.Geolocation = &playwright.Geolocation{
			Latitude:  geoloc.Latitude,
			Longitude: geoloc.Longitude,
			Accuracy:  &accuracy,
		}
	}
	opts.HttpCredentials = creds

	size, err := video.build("record_video_size")
	if err != nil {
		return opts, err
	}
	switch {
	case videoDir != "":
		opts.RecordVideo = &playwright.RecordVideo{Dir: videoDir, Size: size}
	case size != nil:
		return opts, fmt.Errorf("context option %q is required to record video", ContextRecordVideoDir)
	}

	return opts, nil
}

// sizeBuilder collects the width and height parameters of a size
// given as two separate keys.
type sizeBuilder struct {
	width, height *int
}

func (s sizeBuilder) build(name string) (*playwright.Size, error) {
	switch {
	case s.width == nil && s.height == nil:
		return nil, nil //nolint:nilnil
	case s.width == nil || s.height == nil:
		return nil, fmt.Errorf("%s requires both %s_width and %s_height", name, name, name)
	default:
		return &playwright.Size{Width: *s.width, Height: *s.height}, nil
	}
}

func intPtr(v any) (*int, error) {
	i, err := toInt(v)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func toStringSlice(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, fmt.Sprintf("%v", e))
		}
		return out, nil
	case string:
		if t == "" {
			return []string{}, nil
		}
		parts := strings.Split(t, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	default:
		return nil, fmt.Errorf("unexpected type %T, want list of strings", v)
	}
}

func toStringMap(v any) (map[string]string, error) {
	switch t := v.(type) {
	case map[string]string:
		return t, nil
	case map[string]any:
		out := make(map[string]string, len(t))
		for k, e := range t {
			out[k] = fmt.Sprintf("%v", e)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected type %T, want map of strings", v)
	}
}
