package config

// Default returns a config with sensible defaults. Values match what a fresh
// install behaves like with no gosniff.yaml present.
func Default() *Config {
	return &Config{
		Enable:       true,
		LogLevel:     "info",
		LogToFile:    true,
		LogFilename:  "gosniff_log.txt",
		EntryValue:   false,
		ReturnValue:  false,
		EnableLog:    true,
		EnableJSON:   true,
		JSONFilename: "gosniff_calls.json",
		IgnoredModules: []string{
			"runtime",
			"reflect",
			"testing",
			"gosniff",
		},
	}
}
