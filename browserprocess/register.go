// Package browserprocess keeps track of the browsers launched during a
// run so they can be shut down when a test execution ends abnormally.
package browserprocess

import (
	"context"
	"sync"

	"github.com/playwright-enhanced/pwe/api"
	"github.com/playwright-enhanced/pwe/common"
	"github.com/playwright-enhanced/pwe/osext"
)

type browserState struct {
	runID       string
	executionID string
	browser     api.Browser
}

// matches returns true if the browser belongs to the execution attached
// to ctx, or to its run when ctx carries no execution ID. A context
// carrying neither matches every browser.
func (s *browserState) matches(ctx context.Context) bool {
	if eID := GetExecutionID(ctx); eID != "" {
		return s.executionID == eID
	}
	if rID := osext.GetRunID(ctx); rID != "" {
		return s.runID == rID
	}
	return true
}

var (
	browserRegister   = map[int64]*browserState{} //nolint:gochecknoglobals
	browserRegisterMu = sync.Mutex{}              //nolint:gochecknoglobals
	browserSeq        int64                       //nolint:gochecknoglobals
)

// Register records a launched browser for the execution attached to
// ctx. The returned function removes it from the register again and
// must be called once the browser has been closed.
func Register(ctx context.Context, logger *common.Logger, b api.Browser) (unregister func()) {
	browserRegisterMu.Lock()
	defer browserRegisterMu.Unlock()

	eID := GetExecutionID(ctx)
	browserSeq++
	key := browserSeq

	logger.Debugf("BrowserProcess:register", "registered browser %d eid:%s", key, eID)

	browserRegister[key] = &browserState{
		runID:       osext.GetRunID(ctx),
		executionID: eID,
		browser:     b,
	}

	return func() {
		browserRegisterMu.Lock()
		defer browserRegisterMu.Unlock()

		delete(browserRegister, key)
	}
}

// Count returns the number of registered browsers matching ctx.
func Count(ctx context.Context) int {
	browserRegisterMu.Lock()
	defer browserRegisterMu.Unlock()

	n := 0
	for _, s := range browserRegister {
		if s.matches(ctx) {
			n++
		}
	}
	return n
}

// ForceShutdown closes the registered browsers of the execution
// attached to ctx. Without an execution ID, it closes the browsers of
// the run attached to ctx, or every registered browser.
func ForceShutdown(ctx context.Context) {
	browserRegisterMu.Lock()
	defer browserRegisterMu.Unlock()

	for k, s := range browserRegister {
		if !s.matches(ctx) {
			continue
		}
		// no need to check the error as the browser is being
		// discarded either way.
		_ = s.browser.Close()
		delete(browserRegister, k)
	}
}
