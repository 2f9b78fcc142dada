package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
)

// ErrNotSeekable is returned by Seek on live sources.
var ErrNotSeekable = errors.New("live stream is not seekable")

var errFFmpegNotFound = errors.New("ffmpeg not found (required for URL playback)")

// streamDecoder adapts an ffmpeg decode subprocess to the audioDecoder
// interface so URLs feed the same graph as local files. The process is
// only waited on from Close, after reading has stopped.
type streamDecoder struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	cancel context.CancelFunc
	closed bool
	mu     sync.Mutex
}

func ffmpegArgs(url string) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-vn",
		"-ac", strconv.Itoa(outChannels),
		"-ar", strconv.Itoa(contextRate),
		"-f", "s16le",
		"pipe:1",
	}
}

func newStreamDecoder(url string) (*streamDecoder, error) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, errFFmpegNotFound
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, ffmpeg, ffmpegArgs(url)...)
	cmd.Stdin = nil
	cmd.Stderr = io.Discard

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setting up ffmpeg stream: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("starting ffmpeg stream: %w", err)
	}

	return &streamDecoder{cmd: cmd, stdout: stdout, cancel: cancel}, nil
}

func (d *streamDecoder) Read(p []byte) (int, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return 0, io.EOF
	}
	stdout := d.stdout
	d.mu.Unlock()

	return stdout.Read(p)
}

func (d *streamDecoder) Seek(int64, int) (int64, error) {
	return 0, ErrNotSeekable
}

func (d *streamDecoder) Length() int64     { return -1 }
func (d *streamDecoder) SampleRate() int   { return contextRate }
func (d *streamDecoder) ChannelCount() int { return outChannels }

// Close stops ffmpeg and reaps it. Safe to call twice.
func (d *streamDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.cancel()
	// Wait closes stdout; errors from the cancelled process are expected.
	_ = d.cmd.Wait()
	return nil
}
