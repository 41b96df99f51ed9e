package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemMarkers(t *testing.T) {
	t.Parallel()

	first := NewMarker(MarkerBrowserKwargs).With("slow_mo", 1)
	other := NewMarker(MarkerOnlyOnBrowsers, "chromium")
	last := NewMarker(MarkerBrowserKwargs).WithKwargs(map[string]any{"slow_mo": 2})

	item := NewItem("test_x", first, other)
	item.AddMarker(last)

	m, ok := item.ClosestMarker(MarkerBrowserKwargs)
	require.True(t, ok)
	assert.Same(t, last, m)

	_, ok = item.ClosestMarker(MarkerContextKwargs)
	assert.False(t, ok)

	assert.Equal(t, []*Marker{first, last}, item.IterMarkers(MarkerBrowserKwargs))
	assert.Len(t, item.IterMarkers(""), 3)
	assert.Equal(t, "test_x", item.Name())
}
