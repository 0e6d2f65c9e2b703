// Package sense reads the few environment switches the logging layer honors.
// Nothing in the proof-of-work core consults the environment.
package sense

import (
	"fmt"
	"os"
	"strings"
)

var lookupEnv = os.LookupEnv // allow test package to override

// FeatureEnabled returns true if any of the named env variables is truthy
func FeatureEnabled(envnames ...string) bool {
	if len(envnames) == 0 {
		panic("FeatureEnabled called with no args")
	}
	for _, name := range envnames {
		if EnvBool(name) {
			return true
		}
	}
	return false
}

func boolString(s string, unset bool, unparsable bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return unset
	case "true", "yes", "1", "on", "enabled", "enable":
		return true
	case "false", "no", "0", "off", "disabled", "disable":
		return false
	default:
		fmt.Fprintf(os.Stderr, "warn: unknown bool string: %q\n", s)
		return unparsable
	}
}

// EnvBool returns false if empty/unset/falsy, true if otherwise non-empty
func EnvBool(name string) bool {
	x, ok := lookupEnv(name)
	if !ok {
		return false
	}
	return boolString(x, false, true)
}

// EnvBoolDisabled returns true only if nonempty+falsy (such as "0" or "false")
//
// a bit different logic than !EnvBool
func EnvBoolDisabled(name string) bool {
	x, ok := lookupEnv(name)
	if !ok {
		return false
	}
	return !boolString(x, true, true)
}

// Getenv returns the trimmed value of the environment variable, or "" if unset
func Getenv(name string) string {
	x, _ := lookupEnv(name)
	return strings.TrimSpace(x)
}

// EnvOr returns the value of the environment variable, or the default if unset
func EnvOr(name, def string) string {
	x, ok := lookupEnv(name)
	if !ok {
		return def
	}
	return x
}
