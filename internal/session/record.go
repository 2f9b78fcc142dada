package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
)

// Recorder writes published frames to numbered PNG files.
type Recorder struct {
	dir string
	n   int
}

// NewRecorder creates dir if needed.
func NewRecorder(dir string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating record dir: %w", err)
	}
	return &Recorder{dir: dir}, nil
}

// Save writes p as the next frame and returns the file path.
func (r *Recorder) Save(p Published) (string, error) {
	if p.Image == nil {
		return "", fmt.Errorf("frame %d has no image", r.n)
	}
	path := filepath.Join(r.dir, fmt.Sprintf("frame-%06d.png", r.n))
	if err := gg.SavePNG(path, p.Image); err != nil {
		return "", fmt.Errorf("saving %s: %w", path, err)
	}
	r.n++
	return path, nil
}

// Count returns how many frames have been written.
func (r *Recorder) Count() int { return r.n }
