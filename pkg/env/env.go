// Package env reads process environment variables for the few knobs that are
// resolved before (or outside) the envconfig-backed configuration, such as
// the platform-injected PORT and the log format.
package env

import "os"

// Get returns the variable's value, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
