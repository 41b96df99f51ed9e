package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkerUsageError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		args []any
		want string
	}{
		{
			args: []any{100, 200},
			want: "`browser_kwargs` only supports keyword args. Test(test_login) used args=(100, 200)",
		},
		{
			args: []any{5000},
			want: "`browser_kwargs` only supports keyword args. Test(test_login) used args=(5000,)",
		},
		{
			args: []any{"a", true},
			want: "`browser_kwargs` only supports keyword args. Test(test_login) used args=('a', true)",
		},
	}
	for _, tt := range testCases {
		err := &MarkerUsageError{Marker: MarkerBrowserKwargs, Test: "test_login", Args: tt.args}
		assert.EqualError(t, err, tt.want)
		assert.True(t, errors.Is(err, ErrUsage))
	}
}

func TestEngineSelectionError(t *testing.T) {
	t.Parallel()

	err := &EngineSelectionError{
		Marker:      MarkerOnlyOnBrowsers,
		Test:        "test_a",
		Allowed:     []Engine{EngineChromium, EngineFirefox},
		Unsupported: []string{"webkit"},
	}
	assert.EqualError(t, err,
		"Unsupported browser in pw_only_on_browsers in test_a, supported_engines are=('chromium', 'firefox')")
	assert.ErrorIs(t, err, ErrUsage)

	empty := &EngineSelectionError{Marker: MarkerOnlyOnBrowsers, Test: "test_a"}
	assert.EqualError(t, empty, "pw_only_on_browsers has no values on test: test_a.")

	var target *EngineSelectionError
	assert.True(t, errors.As(error(empty), &target))
}
