package api

import (
	"github.com/playwright-community/playwright-go"
)

// Browser is the public interface of a launched browser.
type Browser interface {
	Close() error
	IsConnected() bool
	NewContext(opts playwright.BrowserNewContextOptions) (BrowserContext, error)
	// Raw returns the toolkit browser for full automation access.
	Raw() playwright.Browser
	Version() string
}

// BrowserContext is the public interface of an isolated browsing session.
type BrowserContext interface {
	Close() error
	NewPage() (Page, error)
	OnPage(fn func(Page))
	Pages() []Page
	Raw() playwright.BrowserContext
	StartTracing(opts playwright.TracingStartOptions) error
	StopTracing(path string) error
}

// Page is the public interface of a browser tab.
type Page interface {
	Close() error
	Goto(url string) error
	IsClosed() bool
	Raw() playwright.Page
	Screenshot(fullPage bool) ([]byte, error)
	URL() string
	// Video returns nil when the page is not being recorded.
	Video() Video
}

// Video is a recording attached to a page. It is only
// available once the owning context has been closed.
type Video interface {
	Delete() error
	SaveAs(path string) error
}
