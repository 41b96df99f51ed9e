//go:build integration

package toolkit_test

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/mccutchen/go-httpbin/httpbin"
	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playwright-enhanced/pwe/api"
	"github.com/playwright-enhanced/pwe/common"
	"github.com/playwright-enhanced/pwe/toolkit"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(httpbin.New().Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestToolkit(t *testing.T) {
	srv := newServer(t)

	tk, err := toolkit.Run(nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, tk.Stop()) }()

	_, ok := tk.BrowserType("netscape")
	assert.False(t, ok)
	d, ok := tk.Device("Pixel 5")
	require.True(t, ok)
	assert.True(t, d.IsMobile)

	bt, ok := tk.BrowserType(common.EngineChromium.String())
	require.True(t, ok)
	assert.Equal(t, "chromium", bt.Name())

	b, err := bt.Launch(playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(true)})
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()
	assert.True(t, b.IsConnected())

	dir := t.TempDir()
	bctx, err := b.NewContext(playwright.BrowserNewContextOptions{
		BaseURL:     playwright.String(srv.URL),
		RecordVideo: &playwright.RecordVideo{Dir: dir},
	})
	require.NoError(t, err)

	var opened []string
	bctx.OnPage(func(p api.Page) { opened = append(opened, p.URL()) })
	require.NoError(t, bctx.StartTracing(playwright.TracingStartOptions{Screenshots: playwright.Bool(true)}))

	p, err := bctx.NewPage()
	require.NoError(t, err)
	require.NoError(t, p.Goto("/html"))
	assert.Equal(t, srv.URL+"/html", p.URL())
	assert.Same(t, p, bctx.Pages()[0], "pages keep their adapter")

	png, err := p.Screenshot(true)
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	trace := filepath.Join(dir, "trace.zip")
	require.NoError(t, bctx.StopTracing(trace))
	assert.FileExists(t, trace)

	v := p.Video()
	require.NotNil(t, v)
	require.NoError(t, bctx.Close())
	video := filepath.Join(dir, "page.webm")
	require.NoError(t, v.SaveAs(video))
	assert.FileExists(t, video)
	require.NoError(t, v.Delete())
	assert.Len(t, opened, 1)
}
