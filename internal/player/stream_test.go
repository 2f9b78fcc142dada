package player

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"
)

// fakeFFmpeg puts a script named ffmpeg first on PATH that writes n zero
// bytes to stdout and exits.
func fakeFFmpeg(t *testing.T, n int) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	dir := t.TempDir()
	script := "#!/bin/sh\nhead -c " + strconv.Itoa(n) + " /dev/zero\n"
	if err := os.WriteFile(filepath.Join(dir, "ffmpeg"), []byte(script), 0o755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestStreamDecoderKeepsTailAfterExit(t *testing.T) {
	fakeFFmpeg(t, 60000)

	d, err := newStreamDecoder("https://example.com/radio.mp3")
	if err != nil {
		t.Fatalf("newStreamDecoder returned error: %v", err)
	}
	defer d.Close()

	// Let the process exit with its output still sitting in the pipe.
	time.Sleep(300 * time.Millisecond)

	data, err := io.ReadAll(d)
	if err != nil {
		t.Fatalf("expected clean EOF, got %v", err)
	}
	if len(data) != 60000 {
		t.Fatalf("expected 60000 bytes, got %d", len(data))
	}
}

func TestStreamDecoderCloseIsIdempotent(t *testing.T) {
	fakeFFmpeg(t, 16)

	d, err := newStreamDecoder("https://example.com/live")
	if err != nil {
		t.Fatalf("newStreamDecoder returned error: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	if n, err := d.Read(make([]byte, 4)); n != 0 || err != io.EOF {
		t.Fatalf("expected EOF after close, got n=%d err=%v", n, err)
	}
	if _, err := d.Seek(0, io.SeekStart); !errors.Is(err, ErrNotSeekable) {
		t.Fatalf("expected ErrNotSeekable, got %v", err)
	}
}

func TestStreamDecoderMissingFFmpeg(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if _, err := newStreamDecoder("https://example.com/x"); !errors.Is(err, errFFmpegNotFound) {
		t.Fatalf("expected errFFmpegNotFound, got %v", err)
	}
}
