package common

import (
	"fmt"

	"github.com/playwright-enhanced/pwe/api"
)

// Launchers maps every supported engine to the toolkit launcher for it.
type Launchers struct {
	table map[Engine]api.BrowserType
}

// NewLaunchers builds the launcher dispatch table from the toolkit.
// It fails if the toolkit cannot launch one of the supported engines.
func NewLaunchers(tk api.Toolkit) (*Launchers, error) {
	table := make(map[Engine]api.BrowserType, len(Engines()))
	for _, e := range Engines() {
		bt, ok := tk.BrowserType(e.String())
		if !ok || bt == nil {
			return nil, fmt.Errorf("toolkit has no launcher for browser engine %q", e)
		}
		table[e] = bt
	}
	return &Launchers{table: table}, nil
}

// For returns the launcher for engine.
//
// It panics for unknown engines, they are rejected before
// a launcher is ever requested.
func (l *Launchers) For(engine Engine) api.BrowserType {
	bt, ok := l.table[engine]
	if !ok {
		panic(fmt.Sprintf("no launcher for browser engine %q", engine))
	}
	return bt
}
