package common

// Marker names understood by the resolver and the engine iterator.
const (
	MarkerBrowserKwargs  = "browser_kwargs"
	MarkerContextKwargs  = "context_kwargs"
	MarkerOnlyOnBrowsers = "pw_only_on_browsers"

	// CallbackKwarg is the keyword holding a dynamic override callback.
	CallbackKwarg = "callback"
)

// KwargsCallback computes overrides for a test at resolution time.
type KwargsCallback func(item *Item) (map[string]any, error)

// Marker is a named annotation attached to a test.
type Marker struct {
	Name   string
	Args   []any
	Kwargs map[string]any
}

// NewMarker returns a marker with the given positional arguments.
func NewMarker(name string, args ...any) *Marker {
	return &Marker{
		Name:   name,
		Args:   args,
		Kwargs: make(map[string]any),
	}
}

// With sets a keyword argument on the marker and returns it.
func (m *Marker) With(key string, value any) *Marker {
	if m.Kwargs == nil {
		m.Kwargs = make(map[string]any)
	}
	m.Kwargs[key] = value
	return m
}

// WithKwargs copies kw into the marker keyword arguments.
func (m *Marker) WithKwargs(kw map[string]any) *Marker {
	for k, v := range kw {
		m.With(k, v)
	}
	return m
}

// Item is a single declared test and the markers attached to it.
// Markers are kept in attachment order; later markers are closer
// to the test than earlier ones.
type Item struct {
	name    string
	markers []*Marker
}

// NewItem returns an item named name carrying markers.
func NewItem(name string, markers ...*Marker) *Item {
	return &Item{name: name, markers: markers}
}

// Name returns the display name of the test.
func (i *Item) Name() string {
	return i.name
}

// AddMarker attaches m to the item.
func (i *Item) AddMarker(m *Marker) {
	i.markers = append(i.markers, m)
}

// ClosestMarker returns the most recently attached marker named name.
func (i *Item) ClosestMarker(name string) (*Marker, bool) {
	for idx := len(i.markers) - 1; idx >= 0; idx-- {
		if i.markers[idx].Name == name {
			return i.markers[idx], true
		}
	}
	return nil, false
}

// IterMarkers returns the markers named name in attachment order.
// An empty name returns every marker.
func (i *Item) IterMarkers(name string) []*Marker {
	var ms []*Marker
	for _, m := range i.markers {
		if name == "" || m.Name == name {
			ms = append(ms, m)
		}
	}
	return ms
}
