package common

import "fmt"

// launchStrategy removes launch parameters a given engine does not accept.
type launchStrategy func(LaunchConfig) LaunchConfig

//nolint:gochecknoglobals
var launchStrategies = map[Engine]launchStrategy{
	EngineChromium: func(cfg LaunchConfig) LaunchConfig { return cfg },
	EngineFirefox:  withoutKeys(LaunchChromiumSandbox),
	EngineWebKit:   withoutKeys(LaunchChromiumSandbox),
}

func withoutKeys(keys ...string) launchStrategy {
	return func(cfg LaunchConfig) LaunchConfig {
		for _, k := range keys {
			delete(cfg, k)
		}
		return cfg
	}
}

// FilterLaunchConfig returns a copy of cfg without the parameters that
// are not valid for engine. cfg is left untouched.
//
// It panics if engine is unknown. Engines are validated when the
// command line is parsed, so this is a programming error.
func FilterLaunchConfig(engine Engine, cfg LaunchConfig) LaunchConfig {
	s, ok := launchStrategies[engine]
	if !ok {
		panic(fmt.Sprintf("no launch strategy for browser engine %q", engine))
	}
	return s(Clone(cfg))
}
