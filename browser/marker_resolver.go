package browser

import (
	"fmt"

	"github.com/playwright-enhanced/pwe/common"
)

// resolveMarkerKwargs returns the overrides the closest marker named
// name declares for item, or def when item carries no such marker.
//
// A marker only takes keyword arguments. Its static keyword arguments
// are merged with the output of its callback, the callback winning on
// conflicting keys. The callback keyword itself is not part of the
// result. Callback errors are returned unchanged.
func resolveMarkerKwargs(item *common.Item, name string, def map[string]any) (map[string]any, error) {
	m, ok := item.ClosestMarker(name)
	if !ok {
		return def, nil
	}
	if len(m.Args) > 0 {
		return nil, &common.MarkerUsageError{
			Marker: name,
			Test:   item.Name(),
			Args:   m.Args,
		}
	}

	static := make(map[string]any, len(m.Kwargs))
	var cb any
	for k, v := range m.Kwargs {
		if k == common.CallbackKwarg {
			cb = v
			continue
		}
		static[k] = v
	}
	if cb == nil {
		return static, nil
	}

	dynamic, err := invokeCallback(cb, item)
	if err != nil {
		return nil, err
	}
	return common.Merge(static, dynamic), nil
}

func invokeCallback(cb any, item *common.Item) (map[string]any, error) {
	switch fn := cb.(type) {
	case common.KwargsCallback:
		return fn(item)
	case func(*common.Item) (map[string]any, error):
		return fn(item)
	case func(*common.Item) map[string]any:
		return fn(item), nil
	default:
		return nil, fmt.Errorf("%w: `%s` of test %s is not callable: %T",
			common.ErrUsage, common.CallbackKwarg, item.Name(), cb)
	}
}
