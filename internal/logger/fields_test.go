package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  groq  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "groq" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	enriched.Info("another log")
}

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	WithCommonFields(logger, "groq", "llama3-8b-8192").Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "groq" {
		t.Fatalf("expected provider field to be groq, got %q", ctx[FieldProvider])
	}

	if ctx[FieldModel] != "llama3-8b-8192" {
		t.Fatalf("expected model field, got %q", ctx[FieldModel])
	}

	if fields := CommonFields("", ""); len(fields) != 0 {
		t.Fatalf("expected empty fields, got %d", len(fields))
	}
}

func TestItemFields(t *testing.T) {
	fields := ItemFields(3, " https://example.com/cv.pdf ")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldItem || fields[0].Integer != 3 {
		t.Fatalf("unexpected item field: %+v", fields[0])
	}

	if fields[1].Key != FieldURL || fields[1].String != "https://example.com/cv.pdf" {
		t.Fatalf("unexpected url field: %+v", fields[1])
	}

	if fields := ItemFields(0, ""); len(fields) != 1 {
		t.Fatalf("expected url field to be dropped, got %d fields", len(fields))
	}
}

func TestNewBuildsLoggerForBothEncodings(t *testing.T) {
	for _, json := range []bool{false, true} {
		logger, err := New(Options{JSON: json, Debug: true, Output: "stderr"})
		if err != nil {
			t.Fatalf("building logger (json=%v): %v", json, err)
		}

		if !logger.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("expected debug level to be enabled (json=%v)", json)
		}
	}
}
