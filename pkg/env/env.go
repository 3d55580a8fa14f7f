// Package env reads process environment variables with fallbacks, for the
// few knobs that are looked up before config is loaded.
package env

import "os"

// Get returns the variable's value, or fallback when it is unset or empty.
// Empty is treated the same as unset so that `VAR=` in a .env file does not
// silently blank out a default.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
