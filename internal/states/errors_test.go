package states

import "testing"

func TestTaskErrorMatchesWildcard(t *testing.T) {
	err := &TaskError{Type: "States.TaskFailed"}
	if !err.Matches([]string{ErrorAll}) {
		t.Error("expected States.ALL to match any error type")
	}
	if !err.Matches([]string{"Custom.Other", "States.TaskFailed"}) {
		t.Error("expected exact type match")
	}
	if err.Matches([]string{"Custom.Other"}) {
		t.Error("expected no match for unrelated error type")
	}
}

func TestTaskErrorMessageFormatting(t *testing.T) {
	withMsg := &TaskError{Type: "Custom.Error", Message: "bad input"}
	if withMsg.Error() != "Custom.Error: bad input" {
		t.Errorf("unexpected error string: %q", withMsg.Error())
	}

	bare := &TaskError{Type: "Custom.Error"}
	if bare.Error() != "Custom.Error" {
		t.Errorf("unexpected error string: %q", bare.Error())
	}
}
