package config

import (
	"os"
	"testing"
)

func TestLoadUsesLibraryDefaultsWhenUnset(t *testing.T) {
	os.Unsetenv("ASLHARNESS_BASE_PATH")
	os.Unsetenv("ASLHARNESS_TOP_LEVEL_STEP_LIMIT")
	os.Unsetenv("ASLHARNESS_SUB_STEP_LIMIT")
	os.Unsetenv("ASLHARNESS_DEBUG")

	cfg := Load()

	if cfg.BasePath != "." {
		t.Errorf("BasePath = %q, want \".\"", cfg.BasePath)
	}
	if cfg.TopLevelStepLimit != 1000 {
		t.Errorf("TopLevelStepLimit = %d, want 1000", cfg.TopLevelStepLimit)
	}
	if cfg.SubStepLimit != 100 {
		t.Errorf("SubStepLimit = %d, want 100", cfg.SubStepLimit)
	}
	if cfg.Debug {
		t.Error("Debug = true, want false")
	}
}

func TestLoadEnvVarOverridesLibraryDefault(t *testing.T) {
	os.Setenv("ASLHARNESS_TOP_LEVEL_STEP_LIMIT", "42")
	defer os.Unsetenv("ASLHARNESS_TOP_LEVEL_STEP_LIMIT")

	cfg := Load()

	if cfg.TopLevelStepLimit != 42 {
		t.Errorf("TopLevelStepLimit = %d, want 42", cfg.TopLevelStepLimit)
	}
}

func TestGetEnvIntOrDefaultIgnoresUnparseable(t *testing.T) {
	os.Setenv("ASLHARNESS_TEST_INT", "not-a-number")
	defer os.Unsetenv("ASLHARNESS_TEST_INT")

	got := getEnvIntOrDefault("ASLHARNESS_TEST_INT", 7)
	if got != 7 {
		t.Errorf("got %d, want fallback 7", got)
	}
}

func TestGetEnvBoolOrDefault(t *testing.T) {
	os.Setenv("ASLHARNESS_TEST_BOOL", "true")
	defer os.Unsetenv("ASLHARNESS_TEST_BOOL")

	if !getEnvBoolOrDefault("ASLHARNESS_TEST_BOOL", false) {
		t.Error("expected true")
	}
	if !getEnvBoolOrDefault("ASLHARNESS_UNSET_BOOL", true) {
		t.Error("expected fallback true for unset var")
	}
}
