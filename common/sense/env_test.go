package sense

import (
	"testing"
)

func fakeEnv(vars map[string]string) func() {
	old := lookupEnv
	lookupEnv = func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
	return func() { lookupEnv = old }
}

func TestEnvBool(t *testing.T) {
	defer fakeEnv(map[string]string{
		"YES":   "yes",
		"ONE":   " 1 ",
		"OFF":   "off",
		"EMPTY": "",
		"JUNK":  "maybe",
	})()

	for name, want := range map[string]bool{
		"YES":   true,
		"ONE":   true,
		"OFF":   false,
		"EMPTY": false,
		"JUNK":  true, // unparsable but set
		"UNSET": false,
	} {
		if got := EnvBool(name); got != want {
			t.Errorf("EnvBool(%s) = %v, want %v", name, got, want)
		}
	}
}

func TestEnvBoolDisabled(t *testing.T) {
	defer fakeEnv(map[string]string{"NO_LOGSYNC": "0", "ON": "on", "EMPTY": ""})()

	if !EnvBoolDisabled("NO_LOGSYNC") {
		t.Fatalf("0 should be disabled")
	}
	if EnvBoolDisabled("ON") {
		t.Fatalf("on should not be disabled")
	}
	if EnvBoolDisabled("EMPTY") {
		t.Fatalf("empty should not count as disabled")
	}
	if EnvBoolDisabled("UNSET") {
		t.Fatalf("unset should not count as disabled")
	}
}

func TestFeatureEnabled(t *testing.T) {
	defer fakeEnv(map[string]string{"JSONLOG": "false", "jsonlog": "true"})()

	if !FeatureEnabled("JSONLOG", "jsonlog") {
		t.Fatalf("second name should enable the feature")
	}
	if FeatureEnabled("JSONLOG") {
		t.Fatalf("falsy env enabled the feature")
	}
}

func TestGetenv(t *testing.T) {
	defer fakeEnv(map[string]string{"LOGLEVEL": " debug\n"})()

	if got := Getenv("LOGLEVEL"); got != "debug" {
		t.Fatalf("Getenv = %q", got)
	}
	if got := EnvOr("MISSING", "info"); got != "info" {
		t.Fatalf("EnvOr = %q", got)
	}
}
