package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/olivier-w/mngviz/internal/config"
	"github.com/olivier-w/mngviz/internal/media"
	"github.com/olivier-w/mngviz/internal/player"
	"github.com/olivier-w/mngviz/internal/session"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestParseArgsFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "variant: 3d\ntheme: neon\nfps: 30\nvolume: 0.4\n")

	cfg, source, err := parseArgs([]string{"-config", path, "-fps", "24", "-theme", "MATRIX", "song.mp3"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}
	if source != "song.mp3" {
		t.Fatalf("expected positional source, got %q", source)
	}
	if cfg.Variant != config.Variant3D || cfg.Volume != 0.4 {
		t.Fatalf("expected file values to survive, got %+v", cfg)
	}
	if cfg.FPS != 24 || cfg.Theme != "matrix" {
		t.Fatalf("expected flag overrides, got fps=%d theme=%q", cfg.FPS, cfg.Theme)
	}
}

func TestParseArgsDefaultsWithoutConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, source, err := parseArgs(nil, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs returned error: %v", err)
	}
	if source != "" || cfg.Variant != config.Variant2D || cfg.FPS != 60 || cfg.Volume != 0.7 {
		t.Fatalf("unexpected defaults: source=%q cfg=%+v", source, cfg)
	}
}

func TestParseArgsRejectsBadValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cases := [][]string{
		{"-variant", "4d"},
		{"-theme", "disco"},
		{"-volume", "1.5"},
		{"-fps", "0"},
		{"a.mp3", "b.mp3"},
	}
	for _, args := range cases {
		if _, _, err := parseArgs(args, io.Discard); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestCheckSource(t *testing.T) {
	dir := t.TempDir()
	song := filepath.Join(dir, "song.wav")
	notes := filepath.Join(dir, "notes.txt")
	for _, p := range []string{song, notes} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := checkSource(song); err != nil {
		t.Fatalf("expected wav to pass, got %v", err)
	}
	if err := checkSource(notes); !errors.Is(err, player.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	if err := checkSource(dir); err == nil || !strings.Contains(err.Error(), "directory") {
		t.Fatalf("expected directory error, got %v", err)
	}
	if err := checkSource("https://example.com/live"); err != nil {
		t.Fatalf("expected URL to pass, got %v", err)
	}
	if err := checkSource(media.DemoSource); err != nil {
		t.Fatalf("expected demo to pass, got %v", err)
	}
}

func TestRenderFramesWritesPNGs(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.FPS = 120
	cfg.RecordDir = dir
	cfg.HeadlessFrames = 3

	loader := func(string) (session.Transport, error) { return player.NewDemo(nil), nil }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	if err := renderFrames(ctx, cfg, media.DemoSource, loader, &out); err != nil {
		t.Fatalf("renderFrames returned error: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "frame-*.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(files))
	}
	if !strings.Contains(out.String(), "wrote 3 frames") {
		t.Fatalf("unexpected summary %q", out.String())
	}
}

func TestRenderFramesLoadFailure(t *testing.T) {
	cfg := config.Default()
	cfg.RecordDir = t.TempDir()
	cfg.HeadlessFrames = 1

	boom := errors.New("no device")
	loader := func(string) (session.Transport, error) { return nil, boom }

	err := renderFrames(context.Background(), cfg, "x.mp3", loader, io.Discard)
	if !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
}
