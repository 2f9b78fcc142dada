package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/mngviz/internal/config"
	"github.com/olivier-w/mngviz/internal/logging"
	"github.com/olivier-w/mngviz/internal/media"
	"github.com/olivier-w/mngviz/internal/player"
	"github.com/olivier-w/mngviz/internal/session"
	"github.com/olivier-w/mngviz/internal/visualizer"
	"github.com/olivier-w/mngviz/internal/visualizer/scene3d"
)

// Controller is the session surface the model drives.
type Controller interface {
	Frames() <-chan session.Published
	LoadSource(source string) error
	Source() string
	Transport() session.Transport
	Play() error
	Pause()
	Playing() bool
	SetVolume(v float64)
	Volume() float64
	SelectTheme(name string) error
	Theme() scene3d.Theme
	SetVariant(v config.Variant) error
	Variant() config.Variant
	Resize(width, height int)
	Close() error
}

// timeline is implemented by transports with a known position.
type timeline interface {
	Position() time.Duration
	Duration() time.Duration
}

// finisher is implemented by transports that signal the end of a track.
type finisher interface {
	Done() <-chan struct{}
}

// Options configure the model.
type Options struct {
	// Source is loaded on Init when set.
	Source string
	// AutoPlay starts playback after each successful load.
	AutoPlay bool
	// Recorder, when set, receives every frame.
	Recorder *session.Recorder
	FPS      int
}

// reservedRows is the chrome around the canvas: header, title, meters,
// progress, status and help.
const reservedRows = 14

// sceneScale is how many viewport pixels back one half-block pixel.
const sceneScale = 4

// Model is the Bubbletea model for the visualizer screen.
type Model struct {
	ctl      Controller
	opts     Options
	meters   *visualizer.Meters
	metadata player.Metadata
	log      logging.Logger

	canvas   string
	frame    session.Published
	elapsed  time.Duration
	duration time.Duration
	width    int
	height   int

	loading   bool
	browsing  bool
	browser   BrowserModel
	status    string
	statusErr bool
	statusAt  time.Time
	quitting  bool
}

// New creates a new Model over ctl.
func New(ctl Controller, opts Options) Model {
	return Model{
		ctl:    ctl,
		opts:   opts,
		meters: visualizer.NewMeters(opts.FPS),
		log:    logging.Component("ui"),
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(), waitFrame(m.ctl.Frames()), tea.SetWindowTitle(appName)}
	if m.opts.Source != "" {
		cmds = append(cmds, loadCmd(m.ctl, m.opts.Source))
	}
	return tea.Batch(cmds...)
}

func loadCmd(ctl Controller, source string) tea.Cmd {
	return func() tea.Msg {
		if err := ctl.LoadSource(source); err != nil {
			return sourceLoadedMsg{source: source, err: err}
		}
		return sourceLoadedMsg{source: source, meta: metadataFor(source)}
	}
}

func metadataFor(source string) player.Metadata {
	if media.IsDemo(source) {
		return player.Metadata{Title: "Demo signal"}
	}
	return player.ReadMetadata(source)
}

func checkDone(source string, t session.Transport) tea.Cmd {
	f, ok := t.(finisher)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		<-f.Done()
		return playbackEndedMsg{source: source}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.browsing {
		return m.updateBrowser(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		m.handleFrame(session.Published(msg))
		return m, waitFrame(m.ctl.Frames())

	case framesClosedMsg:
		return m, nil

	case sourceLoadedMsg:
		return m.handleLoaded(msg)

	case playbackEndedMsg:
		if msg.source == m.ctl.Source() {
			m.ctl.Pause()
			m.setStatus("playback ended", false)
		}
		return m, nil

	case tickMsg:
		if tl, ok := m.ctl.Transport().(timeline); ok {
			m.elapsed = tl.Position()
			m.duration = tl.Duration()
		} else {
			m.elapsed, m.duration = 0, 0
		}
		if m.status != "" && time.Since(m.statusAt) > 5*time.Second {
			m.status = ""
		}
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeScene()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isQuit(msg) {
		m.quitting = true
		if err := m.ctl.Close(); err != nil {
			m.log.Error(err, "closing session")
		}
		return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
	}

	switch msg.String() {
	case " ":
		if m.ctl.Playing() {
			m.ctl.Pause()
			return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, true))
		}
		if err := m.ctl.Play(); err != nil {
			m.setStatus(fmt.Sprintf("play failed: %v", err), true)
			return m, nil
		}
		return m, tea.SetWindowTitle(windowTitle(m.metadata.Title, false))
	case "+", "=", "up":
		m.ctl.SetVolume(m.ctl.Volume() + volumeStep)
	case "-", "_", "down":
		m.ctl.SetVolume(m.ctl.Volume() - volumeStep)
	case "t":
		next := m.ctl.Theme().Next()
		if err := m.ctl.SelectTheme(string(next)); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.setStatus("theme "+string(next), false)
		}
	case "v":
		next := config.Variant3D
		if m.ctl.Variant() == config.Variant3D {
			next = config.Variant2D
		}
		if err := m.ctl.SetVariant(next); err != nil {
			m.setStatus(err.Error(), true)
		}
	case "o":
		m.browser = NewEmbeddedBrowser()
		if m.browser.HasError() {
			m.setStatus(m.browser.Error().Error(), true)
			return m, nil
		}
		m.browsing = true
		model, _ := m.browser.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		m.browser = model.(BrowserModel)
	}
	return m, nil
}

func (m Model) updateBrowser(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case BrowserSelectedMsg:
		m.browsing = false
		m.loading = true
		m.setStatus("loading "+msg.Path, false)
		return m, loadCmd(m.ctl, msg.Path)
	case BrowserCancelledMsg:
		m.browsing = false
		return m, tea.SetWindowTitle(appName)
	case frameMsg:
		// Keep draining so the session's newest frame is ready on return.
		m.handleFrame(session.Published(msg))
		return m, waitFrame(m.ctl.Frames())
	case tickMsg:
		return m, tickCmd()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeScene()
	}

	model, cmd := m.browser.Update(msg)
	m.browser = model.(BrowserModel)
	return m, cmd
}

func (m Model) handleLoaded(msg sourceLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	if msg.err != nil {
		m.metadata = player.Metadata{}
		m.setStatus(fmt.Sprintf("load failed: %v", msg.err), true)
		return m, tea.SetWindowTitle(appName)
	}

	m.metadata = msg.meta
	m.meters.Reset()
	m.setStatus("", false)
	cmds := []tea.Cmd{checkDone(msg.source, m.ctl.Transport())}
	paused := true
	if m.opts.AutoPlay {
		if err := m.ctl.Play(); err != nil {
			m.setStatus(fmt.Sprintf("play failed: %v", err), true)
		} else {
			paused = false
		}
	}
	cmds = append(cmds, tea.SetWindowTitle(windowTitle(m.metadata.Title, paused)))
	return m, tea.Batch(cmds...)
}

func (m *Model) handleFrame(p session.Published) {
	m.frame = p
	m.meters.Update(p.Frame.Levels)
	if m.opts.Recorder != nil {
		if _, err := m.opts.Recorder.Save(p); err != nil {
			m.log.Error(err, "recording frame")
		}
	}
	m.canvas = m.renderCanvas()
}

func (m Model) renderCanvas() string {
	img := m.frame.Image
	if img == nil {
		return ""
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}
	cols, rows := canvasCells(m.width, m.height, reservedRows, float64(b.Dx())/float64(b.Dy()))
	if cols == 0 {
		return ""
	}
	return visualizer.HalfBlocks(img, cols, rows)
}

// resizeScene sizes the 3D viewport to the space the canvas can take.
func (m *Model) resizeScene() {
	cols := m.width - 4
	rows := m.height - reservedRows
	if cols < 8 || rows < 4 {
		return
	}
	m.ctl.Resize(cols*sceneScale, rows*2*sceneScale)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
	m.statusAt = time.Now()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.browsing {
		return m.browser.View()
	}

	w := m.width
	if w < 30 {
		w = 50
	}

	var b strings.Builder
	b.WriteString("\n  " + headerStyle.Render(appName) + "\n\n")

	title := m.metadata.Title
	if title == "" {
		title = "no source  (press o to open)"
	}
	b.WriteString("  " + titleStyle.Render(title) + "\n")
	if sub := subtitle(m.metadata); sub != "" {
		b.WriteString("  " + artistStyle.Render(sub) + "\n")
	}
	b.WriteString("\n")

	if m.canvas != "" {
		b.WriteString(indent(canvasStyle.Render(m.canvas), "  ") + "\n")
	}
	b.WriteString(m.meters.View(w-4) + "\n\n")

	if m.duration > 0 {
		el, du := formatDuration(m.elapsed), formatDuration(m.duration)
		bar := renderProgressBar(m.elapsed.Seconds(), m.duration.Seconds(), w-len(el)-len(du)-6)
		b.WriteString(fmt.Sprintf("  %s %s %s\n\n", timeStyle.Render(el), bar, timeStyle.Render(du)))
	}

	b.WriteString("  " + m.statusLine(w) + "\n")
	if m.status != "" {
		style := helpStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString("  " + style.Render(m.status) + "\n")
	}
	b.WriteString("\n  " + helpStyle.Render(helpText(m.ctl.Variant() == config.Variant3D)) + "\n")
	return b.String()
}

func (m Model) statusLine(w int) string {
	icon, text := "❚❚", "paused"
	switch {
	case m.loading:
		icon, text = "…", "loading"
	case m.ctl.Playing():
		icon, text = "▶", "playing"
	}

	left := fmt.Sprintf("%s  %s  %s", icon, text, m.ctl.Variant())
	if m.ctl.Variant() == config.Variant3D {
		left += "  " + string(m.ctl.Theme())
	}
	if m.opts.Recorder != nil {
		left += fmt.Sprintf("  ● rec %d", m.opts.Recorder.Count())
	}
	right := renderVolumePercent(m.ctl.Volume())

	gap := max(w-len([]rune(left))-len(right)-4, 2)
	return statusStyle.Render(left) + spaces(gap) + statusStyle.Render(right)
}

func subtitle(meta player.Metadata) string {
	switch {
	case meta.Artist != "" && meta.Album != "":
		return fmt.Sprintf("%s - %s", meta.Artist, meta.Album)
	case meta.Artist != "":
		return meta.Artist
	default:
		return meta.Album
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func windowTitle(title string, paused bool) string {
	if title == "" {
		return appName
	}
	if paused {
		return "⏸ " + title + " - " + appName
	}
	return "▶ " + title + " - " + appName
}
