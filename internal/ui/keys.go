package ui

import tea "github.com/charmbracelet/bubbletea"

const volumeStep = 0.1

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(threeD bool) string {
	s := "space play/pause  +/- volume  v 2d/3d"
	if threeD {
		s += "  t theme"
	}
	s += "  o open  q quit"
	return s
}
