package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestStdLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)
	l.SetLevel(WarnLevel)

	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info line to be filtered, got %q", out)
	}
	if !strings.Contains(out, "WARN shown") {
		t.Fatalf("expected warn line, got %q", out)
	}
}

func TestWithFieldsMergesAndSortsKeys(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf).WithFields(Fields{"component": "sampler"})

	l.Error(errors.New("boom"), "setup failed", Fields{"bins": 128})

	out := buf.String()
	want := "ERROR setup failed bins=128 component=sampler error=boom"
	if !strings.Contains(out, want) {
		t.Fatalf("expected %q in %q", want, out)
	}
}

func TestDerivedLoggerSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	root := New(&buf)
	child := root.WithFields(Fields{"k": "v"})

	root.SetLevel(ErrorLevel)
	child.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected derived logger to honour parent level, got %q", buf.String())
	}
}

func TestSetDefaultNilDiscards(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	SetDefault(nil)
	if _, ok := Default().(NoOpLogger); !ok {
		t.Fatalf("expected NoOpLogger, got %T", Default())
	}
}
