package browser

import (
	"fmt"
	"strings"

	"github.com/playwright-enhanced/pwe/common"
)

// AllowedEngines returns the engines item runs on, in order.
//
// It starts from the engines requested on the command line, chromium
// when none were. Every pw_only_on_browsers marker, in attachment order,
// narrows the list down to its arguments; naming an engine outside the
// current list, or no engine at all, is a usage error.
func AllowedEngines(item *common.Item, cli []common.Engine) ([]common.Engine, error) {
	allowed := common.DedupEngines(cli)
	if len(allowed) == 0 {
		allowed = []common.Engine{common.DefaultEngine}
	}

	for _, m := range item.IterMarkers(common.MarkerOnlyOnBrowsers) {
		if len(m.Args) == 0 {
			return nil, &common.EngineSelectionError{
				Marker:  common.MarkerOnlyOnBrowsers,
				Test:    item.Name(),
				Allowed: allowed,
			}
		}

		var (
			engines     = make([]common.Engine, 0, len(m.Args))
			unsupported []string
		)
		for _, a := range m.Args {
			name := strings.ToLower(fmt.Sprint(a))
			e := common.Engine(name)
			if !containsEngine(allowed, e) {
				unsupported = append(unsupported, name)
				continue
			}
			engines = append(engines, e)
		}
		if len(unsupported) > 0 {
			return nil, &common.EngineSelectionError{
				Marker:      common.MarkerOnlyOnBrowsers,
				Test:        item.Name(),
				Allowed:     allowed,
				Unsupported: unsupported,
			}
		}
		allowed = common.DedupEngines(engines)
	}

	return allowed, nil
}

func containsEngine(engines []common.Engine, e common.Engine) bool {
	for _, x := range engines {
		if x == e {
			return true
		}
	}
	return false
}
