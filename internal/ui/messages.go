package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/mngviz/internal/player"
	"github.com/olivier-w/mngviz/internal/session"
)

type tickMsg time.Time
type frameMsg session.Published
type framesClosedMsg struct{}
type playbackEndedMsg struct{ source string }
type sourceLoadedMsg struct {
	source string
	meta   player.Metadata
	err    error
}

func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitFrame blocks until the session publishes the next frame.
func waitFrame(frames <-chan session.Published) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-frames
		if !ok {
			return framesClosedMsg{}
		}
		return frameMsg(p)
	}
}
