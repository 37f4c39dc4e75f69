// Package config provides configuration loading and management.
package config

// DefaultConfigFile is the config file name looked up in the working directory.
const DefaultConfigFile = "gosniff.yaml"

// Config holds all tracing session settings. Fields map one-to-one to keys in
// gosniff.yaml; environment variables override file values.
type Config struct {
	// Enable is the master switch. When false, Start() is a no-op.
	Enable bool `yaml:"enable" env:"GOSNIFF_ENABLE"`

	// LogLevel is the minimum severity forwarded to the log sink.
	LogLevel string `yaml:"log_level" env:"GOSNIFF_LOG_LEVEL"`

	// LogToFile mirrors log output to LogFilename.
	LogToFile   bool   `yaml:"log_to_file" env:"GOSNIFF_LOG_TO_FILE"`
	LogFilename string `yaml:"log_filename" env:"GOSNIFF_LOG_FILENAME"`

	// EntryValue captures actual argument values. When false, only type names are stored.
	EntryValue bool `yaml:"entry_value" env:"GOSNIFF_ENTRY_VALUE"`

	// ReturnValue captures actual return values. When false, only type names are stored.
	ReturnValue bool `yaml:"return_value" env:"GOSNIFF_RETURN_VALUE"`

	// EnableLog routes completed records to the log sink.
	EnableLog bool `yaml:"enable_log" env:"GOSNIFF_ENABLE_LOG"`

	// EnableJSON writes the JSON report on session stop.
	EnableJSON   bool   `yaml:"enable_json" env:"GOSNIFF_ENABLE_JSON"`
	JSONFilename string `yaml:"json_filename" env:"GOSNIFF_JSON_FILENAME"`

	// IgnoredModules lists origins (package paths or their base names) excluded
	// from tracing.
	IgnoredModules []string `yaml:"ignored_modules" env:"GOSNIFF_IGNORED_MODULES"`
}
