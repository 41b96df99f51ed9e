// Package toolkit adapts playwright-go to the api interfaces.
package toolkit

import (
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/playwright-enhanced/pwe/api"
	"github.com/playwright-enhanced/pwe/common"
)

// Toolkit is a running playwright driver.
type Toolkit struct {
	pw *playwright.Playwright
}

var _ api.Toolkit = &Toolkit{}

// Run starts the playwright driver. Driver output goes to out,
// or is discarded when out is nil.
func Run(out io.Writer) (*Toolkit, error) {
	if out == nil {
		out = io.Discard
	}
	pw, err := playwright.Run(&playwright.RunOptions{
		Verbose: false,
		Stdout:  out,
		Stderr:  out,
	})
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}
	return &Toolkit{pw: pw}, nil
}

// BrowserType implements api.Toolkit.
func (t *Toolkit) BrowserType(name string) (api.BrowserType, bool) {
	var bt playwright.BrowserType
	switch common.Engine(name) {
	case common.EngineChromium:
		bt = t.pw.Chromium
	case common.EngineFirefox:
		bt = t.pw.Firefox
	case common.EngineWebKit:
		bt = t.pw.WebKit
	}
	if bt == nil {
		return nil, false
	}
	return &browserType{bt: bt}, true
}

// Device implements api.Toolkit.
func (t *Toolkit) Device(name string) (*playwright.DeviceDescriptor, bool) {
	d, ok := t.pw.Devices[name]
	return d, ok && d != nil
}

// Stop implements api.Toolkit.
func (t *Toolkit) Stop() error {
	if err := t.pw.Stop(); err != nil {
		return fmt.Errorf("stopping playwright: %w", err)
	}
	return nil
}

type browserType struct {
	bt playwright.BrowserType
}

func (b *browserType) Launch(opts playwright.BrowserTypeLaunchOptions) (api.Browser, error) {
	br, err := b.bt.Launch(opts)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &browser{b: br}, nil
}

func (b *browserType) Name() string { return b.bt.Name() }

type browser struct {
	b playwright.Browser
}

func (b *browser) Close() error            { return b.b.Close() }
func (b *browser) IsConnected() bool       { return b.b.IsConnected() }
func (b *browser) Raw() playwright.Browser { return b.b }
func (b *browser) Version() string         { return b.b.Version() }

func (b *browser) NewContext(opts playwright.BrowserNewContextOptions) (api.BrowserContext, error) {
	c, err := b.b.NewContext(opts)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &browserContext{c: c, pages: make(map[playwright.Page]*page)}, nil
}

type browserContext struct {
	c playwright.BrowserContext

	mu    sync.Mutex
	pages map[playwright.Page]*page
}

// wrap returns the same adapter for the same page every time.
func (c *browserContext) wrap(p playwright.Page) *page {
	c.mu.Lock()
	defer c.mu.Unlock()

	if w, ok := c.pages[p]; ok {
		return w
	}
	w := &page{p: p}
	c.pages[p] = w
	return w
}

func (c *browserContext) Close() error                   { return c.c.Close() }
func (c *browserContext) Raw() playwright.BrowserContext { return c.c }

func (c *browserContext) NewPage() (api.Page, error) {
	p, err := c.c.NewPage()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return c.wrap(p), nil
}

func (c *browserContext) OnPage(fn func(api.Page)) {
	c.c.OnPage(func(p playwright.Page) {
		fn(c.wrap(p))
	})
}

func (c *browserContext) Pages() []api.Page {
	raw := c.c.Pages()
	pages := make([]api.Page, 0, len(raw))
	for _, p := range raw {
		pages = append(pages, c.wrap(p))
	}
	return pages
}

func (c *browserContext) StartTracing(opts playwright.TracingStartOptions) error {
	return c.c.Tracing().Start(opts) //nolint:wrapcheck
}

func (c *browserContext) StopTracing(path string) error {
	if path == "" {
		return c.c.Tracing().Stop() //nolint:wrapcheck
	}
	return c.c.Tracing().Stop(path) //nolint:wrapcheck
}

type page struct {
	p playwright.Page
}

func (p *page) Close() error         { return p.p.Close() }
func (p *page) IsClosed() bool       { return p.p.IsClosed() }
func (p *page) Raw() playwright.Page { return p.p }
func (p *page) URL() string          { return p.p.URL() }

func (p *page) Goto(url string) error {
	_, err := p.p.Goto(url)
	return err //nolint:wrapcheck
}

func (p *page) Screenshot(fullPage bool) ([]byte, error) {
	return p.p.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
	})
}

func (p *page) Video() api.Video {
	v := p.p.Video()
	if v == nil {
		return nil
	}
	return v
}
