package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestLoadFileOverlaysFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := "variant: 3d\ntheme: neon\nfps: 30\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Default()
	if err := c.LoadFile(path); err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if c.Variant != Variant3D || c.Theme != "neon" || c.FPS != 30 {
		t.Fatalf("unexpected config after load: %+v", c)
	}
	if c.Volume != 0.7 {
		t.Fatalf("expected untouched volume to keep default, got %g", c.Volume)
	}
}

func TestLoadFileRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("fps: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Default().LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejectsBadFields(t *testing.T) {
	c := Default()
	c.Variant = "4d"
	if err := c.Validate(); !errors.Is(err, ErrVariant) {
		t.Fatalf("expected ErrVariant, got %v", err)
	}

	c = Default()
	c.FPS = 0
	if err := c.Validate(); !errors.Is(err, ErrFPS) {
		t.Fatalf("expected ErrFPS, got %v", err)
	}

	c = Default()
	c.Volume = 1.5
	if err := c.Validate(); !errors.Is(err, ErrVolume) {
		t.Fatalf("expected ErrVolume, got %v", err)
	}
}
