// Package osext scopes process-wide operating system state, such as
// environment variables, to the lifetime of a run.
package osext

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/playwright-enhanced/pwe/common"
)

type prevValue struct {
	value string
	set   bool
}

// Scope holds environment variables set for a run and restores their
// previous values on Release.
type Scope struct {
	mu       sync.Mutex
	runID    string
	logger   *common.Logger
	prev     map[string]prevValue
	released bool
}

var (
	scopeRegister   = map[string][]*Scope{} //nolint:gochecknoglobals
	scopeRegisterMu = sync.Mutex{}          //nolint:gochecknoglobals
)

// Setenv, Unsetenv and LookupEnv access the process environment. They are only
// exported so tests can observe changes without touching the real
// environment.
var (
	Setenv    = os.Setenv    //nolint:gochecknoglobals
	Unsetenv  = os.Unsetenv  //nolint:gochecknoglobals
	LookupEnv = os.LookupEnv //nolint:gochecknoglobals
)

// Acquire sets every variable of env and returns the scope restoring
// them. Variables are set in name order. If one cannot be set, the ones
// already set are restored before the error is returned.
func Acquire(ctx context.Context, logger *common.Logger, env map[string]string) (*Scope, error) {
	s := &Scope{
		runID:  GetRunID(ctx),
		logger: logger,
		prev:   make(map[string]prevValue, len(env)),
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, ok := LookupEnv(k)
		if err := Setenv(k, env[k]); err != nil {
			_ = s.Release()
			return nil, fmt.Errorf("setting environment variable %q: %w", k, err)
		}
		s.prev[k] = prevValue{value: v, set: ok}
		logger.Debugf("osext:Acquire", "rid:%s set %s", s.runID, k)
	}

	register(s)

	return s, nil
}

// Release restores the environment variables set by the scope.
// Calling Release more than once is a no-op.
func (s *Scope) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil
	}
	s.released = true
	unregister(s)

	var firstErr error
	for k, p := range s.prev {
		var err error
		if p.set {
			err = Setenv(k, p.value)
		} else {
			err = Unsetenv(k)
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("restoring environment variable %q: %w", k, err)
		}
		s.logger.Debugf("osext:Release", "rid:%s restored %s", s.runID, k)
	}
	return firstErr
}

// Keys returns the names of the variables held by the scope.
func (s *Scope) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.prev))
	for k := range s.prev {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func register(s *Scope) {
	scopeRegisterMu.Lock()
	defer scopeRegisterMu.Unlock()

	scopeRegister[s.runID] = append(scopeRegister[s.runID], s)
}

func unregister(s *Scope) {
	scopeRegisterMu.Lock()
	defer scopeRegisterMu.Unlock()

	scopes := scopeRegister[s.runID]
	for i, x := range scopes {
		if x == s {
			scopeRegister[s.runID] = append(scopes[:i], scopes[i+1:]...)
			break
		}
	}
	if len(scopeRegister[s.runID]) == 0 {
		delete(scopeRegister, s.runID)
	}
}

// ForceRelease releases every scope acquired for the run attached to
// ctx. It should be called when the run is shutting down abnormally.
func ForceRelease(ctx context.Context) {
	rID := GetRunID(ctx)

	scopeRegisterMu.Lock()
	scopes := append([]*Scope(nil), scopeRegister[rID]...)
	scopeRegisterMu.Unlock()

	// release in reverse order so nested scopes restore correctly.
	for i := len(scopes) - 1; i >= 0; i-- {
		_ = scopes[i].Release()
	}
}
