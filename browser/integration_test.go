//go:build integration

package browser

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/mccutchen/go-httpbin/httpbin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playwright-enhanced/pwe/browserprocess"
)

func TestIntegrationRun(t *testing.T) {
	srv := httptest.NewServer(httpbin.New().Handler())
	defer srv.Close()

	p, err := Start(context.Background(),
		UseArgs(
			"--artifacts", t.TempDir(),
			"--browser", "chromium", "--browser", "firefox",
			"--base-url", srv.URL,
			"--screenshots-on-fail", "yes", "--video-on-fail", "yes", "--trace-on-fail",
		),
		UseEnv(noEnv),
		UseDotEnv(),
	)
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Close()) }()

	p.Test(t).
		ContextKwargs(map[string]any{"locale": "fr-FR"}).
		Run(func(t *testing.T, f *Fixtures) {
			pg := f.Page()
			require.NoError(t, pg.Goto("/headers"))
			assert.Equal(t, srv.URL+"/headers", pg.URL())
			assert.True(t, f.Browser().IsConnected())

			lang, err := pg.Raw().Evaluate("navigator.language")
			require.NoError(t, err)
			assert.Equal(t, "fr-FR", lang)
		})

	assert.Zero(t, browserprocess.Count(p.ctx))
	entries, err := os.ReadDir(p.ArtifactsDir())
	require.NoError(t, err)
	assert.Empty(t, entries, "passing tests leave no artifacts")
}
