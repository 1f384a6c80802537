package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithUserID(ctx, "8e1c2a9f")

	log.Error(ctx, "boom", errors.New("boom"))

	for _, field := range []string{`"request_id"`, `"user_id"`, `"stack"`} {
		if !bytes.Contains(buf.Bytes(), []byte(field)) {
			t.Fatalf("expected %s in entry; got %s", field, buf.String())
		}
	}
}

func TestWarnStackToggle(t *testing.T) {
	withStack := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: withStack, WarnStack: true})
	log.Warn(context.Background(), "warny")
	if !bytes.Contains(withStack.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("expected stack when warn stack enabled; got %s", withStack.String())
	}

	without := &bytes.Buffer{}
	log = New(Options{ServiceName: "test", Output: without})
	log.Warn(context.Background(), "warny")
	if bytes.Contains(without.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("did not expect stack by default; got %s", without.String())
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected info for empty level, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.InfoLevel {
		t.Fatalf("expected info fallback for unknown level, got %v", lvl)
	}
	if lvl := ParseLevel("WARN"); lvl != zerolog.WarnLevel {
		t.Fatalf("expected case-insensitive parse, got %v", lvl)
	}
}
