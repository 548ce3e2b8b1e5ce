package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeRedactsSecrets(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := &Logger{SugaredLogger: zap.New(core).Sugar()}

	log.Info("contact submitted", "email", "alice@example.com", "api_key", "re_123", "page", "home")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["email"] != "a***@example.com" {
		t.Fatalf("expected masked email, got %v", fields["email"])
	}
	if fields["api_key"] != "[REDACTED]" {
		t.Fatalf("expected redacted api key, got %v", fields["api_key"])
	}
	if fields["page"] != "home" {
		t.Fatalf("expected untouched field, got %v", fields["page"])
	}
}

func TestMaskEmailWithoutDomain(t *testing.T) {
	if got := maskEmail("nobody"); got != "[REDACTED]" {
		t.Fatalf("unexpected mask: %q", got)
	}
}
