package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_RedactsCredentials(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewWithCore(core).With("component", "test")

	l.Info("login", "username", "alice", "password", "hunter22", "access_token", "abc")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["username"] != "alice" || fields["component"] != "test" {
		t.Fatalf("fields = %v", fields)
	}
	if fields["password"] != "[REDACTED]" || fields["access_token"] != "[REDACTED]" {
		t.Fatalf("credentials leaked: %v", fields)
	}
}

func TestLogger_OddKeyValues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	NewWithCore(core).Warn("dangling", "claim_id")
	if logs.FilterMessage("dangling").Len() != 1 {
		t.Fatalf("entry not written: %v", logs.All())
	}
}

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.Debug("ok")
	}
	NewNop().Error("discarded")
}
