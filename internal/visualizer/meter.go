package visualizer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/olivier-w/mngviz/internal/spectrum"
)

const (
	meterFrequency = 8.0
	meterDamping   = 0.9
	peakDecay      = 0.01
)

var meterLabels = [3]string{"BASS", "MID", "TREBLE"}

var meterColors = [3]rgb{
	0x3b82f6, // bass
	0x93c5fd, // mid
	0xe2e8f0, // treble
}

// Meters shows bass, mid and treble as spring-smoothed bars with peak hold.
type Meters struct {
	spring harmonica.Spring
	pos    [3]float64
	vel    [3]float64
	peak   [3]float64
	target [3]float64
}

// NewMeters returns meters stepped at fps updates per second.
func NewMeters(fps int) *Meters {
	if fps <= 0 {
		fps = 60
	}
	return &Meters{spring: harmonica.NewSpring(harmonica.FPS(fps), meterFrequency, meterDamping)}
}

// Update eases each bar toward the given levels by one step.
func (m *Meters) Update(l spectrum.Levels) {
	m.target = [3]float64{l.Bass, l.Mid, l.Treble}
	for i, t := range m.target {
		m.pos[i], m.vel[i] = m.spring.Update(m.pos[i], m.vel[i], t)
		v := clamp01(m.pos[i])
		if v > m.peak[i] {
			m.peak[i] = v
		} else {
			m.peak[i] = max(0, m.peak[i]-peakDecay)
		}
	}
}

// Reset drops the meters back to zero.
func (m *Meters) Reset() {
	m.pos, m.vel, m.peak, m.target = [3]float64{}, [3]float64{}, [3]float64{}, [3]float64{}
}

// Display returns the smoothed value of each bar.
func (m *Meters) Display() [3]float64 {
	var out [3]float64
	for i := range out {
		out[i] = clamp01(m.pos[i])
	}
	return out
}

// View renders one line per band. The percentage is the unsmoothed level.
func (m *Meters) View(width int) string {
	return m.view(width, currentColorProfile())
}

func (m *Meters) view(width int, p colorProfile) string {
	barWidth := max(width-15, 10)
	lines := make([]string, 3)
	for i := range lines {
		bar := renderMeterBar(clamp01(m.pos[i]), m.peak[i], barWidth, meterColors[i], p)
		lines[i] = fmt.Sprintf(" %-6s %s %3d%%", meterLabels[i], bar, int(m.target[i]*100+0.5))
	}
	return strings.Join(lines, "\n")
}

func renderMeterBar(level, peak float64, width int, c rgb, p colorProfile) string {
	filled := int(level * float64(width))
	peakPos := min(int(peak*float64(width)), width-1)

	var sb strings.Builder
	state := newANSIState(p)
	for i := range width {
		switch {
		case i < filled:
			state.set(&sb, fg, c)
			sb.WriteRune('█')
		case i == peakPos && peakPos > 0:
			state.set(&sb, fg, 0xfffcd2)
			sb.WriteRune('│')
		default:
			state.set(&sb, fg, 0x334155)
			sb.WriteRune('─')
		}
	}
	state.reset(&sb)
	return sb.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
