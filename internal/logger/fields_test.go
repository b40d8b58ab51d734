package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	t.Parallel()

	fields := StringFields(
		StringField{Key: "  job_id  ", Value: "  j1  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "job_id" || fields[0].String != "j1" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	WithFields(log, zap.String("foo", "bar")).Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if got := entries[0].ContextMap()["foo"]; got != "bar" {
		t.Fatalf("expected field to be bar, got %q", got)
	}

	fallback := WithFields(nil, zap.String("baz", "qux"))
	if fallback == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
	fallback.Info("another log")
}

func TestMatchAndSessionFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields []zap.Field
		expect map[string]string
	}{
		{
			name:   "match",
			fields: MatchFields("j1", "c7"),
			expect: map[string]string{FieldJob: "j1", FieldCandidate: "c7"},
		},
		{
			name:   "match without candidate",
			fields: MatchFields("j1", ""),
			expect: map[string]string{FieldJob: "j1"},
		},
		{
			name:   "session",
			fields: SessionFields("s-1", "j2"),
			expect: map[string]string{FieldSession: "s-1", FieldJob: "j2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if len(tt.fields) != len(tt.expect) {
				t.Fatalf("expected %d fields, got %d", len(tt.expect), len(tt.fields))
			}
			for _, f := range tt.fields {
				if tt.expect[f.Key] != f.String {
					t.Fatalf("field %s: expected %q, got %q", f.Key, tt.expect[f.Key], f.String)
				}
			}
		})
	}
}

func TestWithCommonFields(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", "model-x").Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider field to be gemini, got %q", ctx[FieldProvider])
	}
	if ctx[FieldModel] != "model-x" {
		t.Fatalf("expected model field to be model-x, got %q", ctx[FieldModel])
	}

	if len(CommonFields("", "")) != 0 {
		t.Fatalf("expected no fields for empty provider and model")
	}
}
