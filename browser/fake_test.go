package browser

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"

	"github.com/playwright-enhanced/pwe/api"
	"github.com/playwright-enhanced/pwe/common"
)

type fakeDebug struct {
	debugging bool
	err       error
}

func (d fakeDebug) IsDebugging() (bool, error) { return d.debugging, d.err }

type fakeToolkit struct {
	mu       sync.Mutex
	launched []playwright.BrowserTypeLaunchOptions
	browsers []*fakeBrowser
	stopped  bool

	launchErr error
}

func (tk *fakeToolkit) BrowserType(name string) (api.BrowserType, bool) {
	if !common.Engine(name).Valid() {
		return nil, false
	}
	return &fakeBrowserType{tk: tk, name: name}, true
}

func (tk *fakeToolkit) Device(name string) (*playwright.DeviceDescriptor, bool) {
	if name != "Pixel 5" {
		return nil, false
	}
	return &playwright.DeviceDescriptor{
		UserAgent:         "fake-pixel",
		Viewport:          &playwright.Size{Width: 393, Height: 851},
		DeviceScaleFactor: 2.75,
		IsMobile:          true,
		HasTouch:          true,
	}, true
}

func (tk *fakeToolkit) Stop() error {
	tk.mu.Lock()
	defer tk.mu.Unlock()

	tk.stopped = true
	return nil
}

type fakeBrowserType struct {
	tk   *fakeToolkit
	name string
}

func (bt *fakeBrowserType) Launch(opts playwright.BrowserTypeLaunchOptions) (api.Browser, error) {
	bt.tk.mu.Lock()
	defer bt.tk.mu.Unlock()

	if bt.tk.launchErr != nil {
		return nil, bt.tk.launchErr
	}
	bt.tk.launched = append(bt.tk.launched, opts)
	b := &fakeBrowser{name: bt.name}
	bt.tk.browsers = append(bt.tk.browsers, b)
	return b, nil
}

func (bt *fakeBrowserType) Name() string { return bt.name }

type fakeBrowser struct {
	name     string
	closed   int
	contexts []*fakeContext
	options  []playwright.BrowserNewContextOptions
}

func (b *fakeBrowser) Close() error            { b.closed++; return nil }
func (b *fakeBrowser) IsConnected() bool       { return b.closed == 0 }
func (b *fakeBrowser) Raw() playwright.Browser { return nil }
func (b *fakeBrowser) Version() string         { return "1.0" }

func (b *fakeBrowser) NewContext(opts playwright.BrowserNewContextOptions) (api.BrowserContext, error) {
	c := &fakeContext{record: opts.RecordVideo != nil}
	b.contexts = append(b.contexts, c)
	b.options = append(b.options, opts)
	return c, nil
}

type fakeContext struct {
	record bool
	closed int
	pages  []api.Page
	onPage []func(api.Page)

	tracing     bool
	tracePath   string
	traceStops  int
	traceStarts int
}

func (c *fakeContext) Close() error                   { c.closed++; return nil }
func (c *fakeContext) OnPage(fn func(api.Page))       { c.onPage = append(c.onPage, fn) }
func (c *fakeContext) Pages() []api.Page              { return c.pages }
func (c *fakeContext) Raw() playwright.BrowserContext { return nil }

func (c *fakeContext) NewPage() (api.Page, error) {
	pg := &fakePage{}
	if c.record {
		pg.video = &fakeVideo{}
	}
	c.pages = append(c.pages, pg)
	for _, fn := range c.onPage {
		fn(pg)
	}
	return pg, nil
}

func (c *fakeContext) StartTracing(playwright.TracingStartOptions) error {
	c.tracing = true
	c.traceStarts++
	return nil
}

func (c *fakeContext) StopTracing(path string) error {
	c.tracing = false
	c.tracePath = path
	c.traceStops++
	if path == "" {
		return nil
	}
	return os.WriteFile(path, []byte("zip"), 0o600)
}

type fakePage struct {
	url         string
	closed      bool
	screenshots []bool
	video       *fakeVideo
}

func (pg *fakePage) Close() error          { pg.closed = true; return nil }
func (pg *fakePage) Goto(url string) error { pg.url = url; return nil }
func (pg *fakePage) IsClosed() bool        { return pg.closed }
func (pg *fakePage) Raw() playwright.Page  { return nil }
func (pg *fakePage) URL() string           { return pg.url }

func (pg *fakePage) Screenshot(fullPage bool) ([]byte, error) {
	pg.screenshots = append(pg.screenshots, fullPage)
	return []byte("png"), nil
}

func (pg *fakePage) Video() api.Video {
	if pg.video == nil {
		return nil
	}
	return pg.video
}

type fakeVideo struct {
	savedAs string
	deleted bool
}

func (v *fakeVideo) SaveAs(path string) error {
	v.savedAs = path
	return os.WriteFile(path, []byte("webm"), 0o600)
}

func (v *fakeVideo) Delete() error { v.deleted = true; return nil }

func noEnv(string) (string, bool) { return "", false }

// startPlugin starts a run over a fake toolkit with artifacts in a
// temporary directory.
func startPlugin(t *testing.T, args ...string) (*Plugin, *fakeToolkit) {
	t.Helper()
	return startPluginWithHooks(t, Hooks{Debug: fakeDebug{}}, args...)
}

func startPluginWithHooks(t *testing.T, h Hooks, args ...string) (*Plugin, *fakeToolkit) {
	t.Helper()

	tk := &fakeToolkit{}
	args = append([]string{"--artifacts", t.TempDir()}, args...)
	p, err := Start(context.Background(),
		UseArgs(args...),
		UseEnv(noEnv),
		UseDotEnv(),
		UseHooks(h),
		UseToolkit(func() (api.Toolkit, error) { return tk, nil }),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, p.Close()) })

	return p, tk
}
