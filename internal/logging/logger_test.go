package logging

import "testing"

func TestIsDebugEnabledTracksInitializeMode(t *testing.T) {
	Initialize(false)
	if IsDebugEnabled() {
		t.Error("expected debug disabled after Initialize(false)")
	}

	Initialize(true)
	if !IsDebugEnabled() {
		t.Error("expected debug enabled after Initialize(true)")
	}
}

func TestLoggingFunctionsDoNotPanicBeforeInitialize(t *testing.T) {
	globalLogger = nil
	Info("hello", "k", "v")
	Debug("hello")
	Error("hello")
}
