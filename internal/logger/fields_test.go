package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFields(t *testing.T) {
	fields := Fields("  ai_provider  ", "  gemini  ", "ignored", "   ", "   ", "empty key", "dangling")

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "ai_provider" || fields[0].String != "gemini" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}

	if len(Fields()) != 0 {
		t.Fatalf("expected no fields")
	}
}

func TestWithNilLogger(t *testing.T) {
	l := With(nil, zap.String("baz", "qux"))
	if l == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Logging with the fallback logger must not panic.
	l.Info("another log")
	ForRun(nil, "run", "alex").Info("run log")
}

func TestScopedLoggers(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ForProvider(base, "gemini", "gemini-2.5-flash").Info("provider")
	ForCandidate(ForRun(base, "run-1", " alex "), "sam").Info("candidate")
	ForRun(base, "", "").Info("no fields")

	entries := observed.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	provider := entries[0].ContextMap()
	if provider[FieldProvider] != "gemini" || provider[FieldModel] != "gemini-2.5-flash" {
		t.Fatalf("unexpected provider fields: %v", provider)
	}

	candidate := entries[1].ContextMap()
	if candidate[FieldRunID] != "run-1" || candidate[FieldSubjectID] != "alex" || candidate[FieldCandidateID] != "sam" {
		t.Fatalf("unexpected candidate fields: %v", candidate)
	}

	if len(entries[2].Context) != 0 {
		t.Fatalf("expected no fields for empty values, got %v", entries[2].Context)
	}
}
