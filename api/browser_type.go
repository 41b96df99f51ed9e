package api

import (
	"github.com/playwright-community/playwright-go"
)

// BrowserType is the public interface of a browser engine launcher.
type BrowserType interface {
	Launch(opts playwright.BrowserTypeLaunchOptions) (Browser, error)
	Name() string
}

// Toolkit is the running browser automation toolkit.
type Toolkit interface {
	BrowserType(name string) (BrowserType, bool)
	Device(name string) (*playwright.DeviceDescriptor, bool)
	Stop() error
}
