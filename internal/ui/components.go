package ui

import (
	"fmt"
	"strings"
	"time"
)

func renderProgressBar(elapsed, total float64, width int) string {
	if width < 10 {
		width = 10
	}
	barWidth := width - 2

	var ratio float64
	if total > 0 {
		ratio = elapsed / total
	}
	ratio = max(0, min(ratio, 1))

	filled := int(ratio * float64(barWidth))
	return strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100+0.5))
}

// formatDuration renders d as m:ss, or h:mm:ss past an hour.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// canvasCells returns the half-block grid that fits a window, keeping the
// frame's aspect ratio. Each cell covers two vertical pixels.
func canvasCells(winW, winH, reserved int, aspect float64) (cols, rows int) {
	maxCols := winW - 4
	maxRows := winH - reserved
	if maxCols < 8 || maxRows < 4 || aspect <= 0 {
		return 0, 0
	}
	cols = maxCols
	rows = int(float64(cols)/aspect/2 + 0.5)
	if rows > maxRows {
		rows = maxRows
		cols = int(float64(rows)*2*aspect + 0.5)
	}
	return max(cols, 1), max(rows, 1)
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	return strings.Repeat(" ", n)
}
