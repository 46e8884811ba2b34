package main

import (
	"testing"
)

func TestIntEnv_UsesFallbackWhenUnsetOrInvalid(t *testing.T) {
	t.Setenv("DAYPLAN_TEST_INT", "")
	if got := intEnv("DAYPLAN_TEST_INT", 30); got != 30 {
		t.Fatalf("intEnv unset: got=%d want=30", got)
	}
	t.Setenv("DAYPLAN_TEST_INT", "not-a-number")
	if got := intEnv("DAYPLAN_TEST_INT", 30); got != 30 {
		t.Fatalf("intEnv invalid: got=%d want=30", got)
	}
}

func TestIntEnv_ParsesValue(t *testing.T) {
	t.Setenv("DAYPLAN_TEST_INT", " 45 ")
	if got := intEnv("DAYPLAN_TEST_INT", 30); got != 45 {
		t.Fatalf("intEnv: got=%d want=45", got)
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("DAYPLAN_TEST_ADDR", "")
	if got := envOr("DAYPLAN_TEST_ADDR", ":8080"); got != ":8080" {
		t.Fatalf("envOr fallback: got=%q", got)
	}
	t.Setenv("DAYPLAN_TEST_ADDR", ":9090")
	if got := envOr("DAYPLAN_TEST_ADDR", ":8080"); got != ":9090" {
		t.Fatalf("envOr value: got=%q", got)
	}
}

func TestMustBuildDeps_InMemoryWhenNoDSN(t *testing.T) {
	t.Setenv("DAYPLAN_DB_DSN", "")
	d := mustBuildDeps()
	if d.Actions == nil || d.Conversations == nil || d.Users == nil ||
		d.Profiles == nil || d.Vault == nil || d.Calendar == nil || d.TxManager == nil {
		t.Fatalf("in-memory deps not fully wired: %+v", d)
	}
}
