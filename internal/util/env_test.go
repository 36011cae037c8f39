package util

import "testing"

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_ENV_STRING", "set")
	if got := GetEnvString("TEST_ENV_STRING", "fallback"); got != "set" {
		t.Fatalf("expected %q, got %q", "set", got)
	}
	if got := GetEnvString("TEST_ENV_STRING_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}

	t.Setenv("TEST_ENV_STRING_EMPTY", "")
	if got := GetEnvString("TEST_ENV_STRING_EMPTY", "fallback"); got != "" {
		t.Fatalf("explicitly empty value should win over fallback, got %q", got)
	}
}

func TestGetEnvNumeric(t *testing.T) {
	t.Setenv("TEST_ENV_NUMERIC", "2.5")
	if got := GetEnvNumeric("TEST_ENV_NUMERIC", 7); got != 2.5 {
		t.Fatalf("expected 2.5, got %v", got)
	}

	t.Setenv("TEST_ENV_NUMERIC_BAD", "not-a-number")
	if got := GetEnvNumeric("TEST_ENV_NUMERIC_BAD", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %v", got)
	}
	if got := GetEnvNumeric("TEST_ENV_NUMERIC_MISSING", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %v", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_ENV_BOOL", "true")
	if !GetEnvBool("TEST_ENV_BOOL", false) {
		t.Fatalf("expected true")
	}

	t.Setenv("TEST_ENV_BOOL", "false")
	if GetEnvBool("TEST_ENV_BOOL", true) {
		t.Fatalf("expected false")
	}

	t.Setenv("TEST_ENV_BOOL", "yes")
	if GetEnvBool("TEST_ENV_BOOL", false) {
		t.Fatalf("unrecognized value should yield the fallback")
	}
}
