package config

import (
	"fmt"
)

var validLogLevels = map[string]struct{}{
	"trace": {},
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks the configuration for values that would make a session
// unusable. A failing config prevents a session from becoming active.
func (c *Config) Validate() error {
	if _, ok := validLogLevels[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log_level %q: must be one of trace, debug, info, warn, error", c.LogLevel)
	}
	if c.LogToFile && c.LogFilename == "" {
		return fmt.Errorf("log_to_file is enabled but log_filename is empty")
	}
	if c.EnableJSON && c.JSONFilename == "" {
		return fmt.Errorf("enable_json is enabled but json_filename is empty")
	}
	return nil
}
