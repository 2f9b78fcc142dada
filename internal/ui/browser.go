package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/mngviz/internal/media"
)

// BrowserResult holds the outcome of the standalone file browser.
type BrowserResult struct {
	Path      string
	Cancelled bool
}

// BrowserSelectedMsg is sent by an embedded browser when a source is picked.
type BrowserSelectedMsg struct{ Path string }

// BrowserCancelledMsg is sent by an embedded browser when it is dismissed.
type BrowserCancelledMsg struct{}

type fileItem struct {
	name string
	ext  string
}

func (i fileItem) Title() string       { return i.name }
func (i fileItem) Description() string { return i.ext }
func (i fileItem) FilterValue() string { return i.name }

type urlItem struct{}

func (i urlItem) Title() string       { return "Play from URL..." }
func (i urlItem) Description() string { return "enter a URL to stream" }
func (i urlItem) FilterValue() string { return "url" }

type demoItem struct{}

func (i demoItem) Title() string       { return "Demo signal" }
func (i demoItem) Description() string { return "synthetic oscillators, no audio device" }
func (i demoItem) FilterValue() string { return "demo" }

// BrowserModel picks a local file, a URL, or the demo signal.
type BrowserModel struct {
	list     list.Model
	input    textinput.Model
	urlMode  bool
	embedded bool
	result   *BrowserResult
	err      error
}

// NewBrowser returns a standalone browser that quits the program once a
// choice is made. Read the choice with Result.
func NewBrowser() BrowserModel {
	return newBrowser(false)
}

// NewEmbeddedBrowser returns a browser that reports its choice with
// BrowserSelectedMsg or BrowserCancelledMsg instead of quitting.
func NewEmbeddedBrowser() BrowserModel {
	return newBrowser(true)
}

func newBrowser(embedded bool) BrowserModel {
	entries, err := os.ReadDir(".")
	if err != nil {
		return BrowserModel{embedded: embedded, err: fmt.Errorf("cannot read directory: %w", err)}
	}

	items := []list.Item{urlItem{}, demoItem{}}
	for _, e := range entries {
		if e.IsDir() || !media.IsSupportedFile(e.Name()) {
			continue
		}
		ext := filepath.Ext(e.Name())
		items = append(items, fileItem{name: strings.TrimSuffix(e.Name(), ext), ext: ext})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#1e3a8a", Dark: "#dbeafe"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#3b82f6", Dark: "#93c5fd"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#475569", Dark: "#94a3b8"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#3b82f6", Dark: "#93c5fd"})

	l := list.New(items, delegate, 80, 20)
	l.Title = appName
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = headerStyle

	ti := textinput.New()
	ti.Placeholder = "https://..."
	ti.CharLimit = 2048
	ti.Width = 60

	return BrowserModel{list: l, input: ti, embedded: embedded}
}

// HasError returns true if the browser could not be initialized.
func (m BrowserModel) HasError() bool {
	return m.err != nil
}

// Error returns the initialization error, if any.
func (m BrowserModel) Error() error {
	return m.err
}

// Result returns the standalone browser result after the program finishes.
func (m BrowserModel) Result() BrowserResult {
	if m.result != nil {
		return *m.result
	}
	return BrowserResult{Cancelled: true}
}

func (m BrowserModel) Init() tea.Cmd {
	return tea.SetWindowTitle(appName)
}

func (m BrowserModel) choose(path string) (BrowserModel, tea.Cmd) {
	if m.embedded {
		return m, func() tea.Msg { return BrowserSelectedMsg{Path: path} }
	}
	m.result = &BrowserResult{Path: path}
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m BrowserModel) cancel() (BrowserModel, tea.Cmd) {
	if m.embedded {
		return m, func() tea.Msg { return BrowserCancelledMsg{} }
	}
	m.result = &BrowserResult{Cancelled: true}
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.urlMode {
		return m.updateURLInput(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Don't intercept keys when filtering
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			switch item := m.list.SelectedItem().(type) {
			case urlItem:
				m.urlMode = true
				m.input.Focus()
				return m, tea.Batch(textinput.Blink, tea.SetWindowTitle(appName+" - enter URL"))
			case demoItem:
				return m.choose(media.DemoSource)
			case fileItem:
				return m.choose(item.name + item.ext)
			}
		case "q", "esc", "ctrl+c":
			return m.cancel()
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) updateURLInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			if url := strings.TrimSpace(m.input.Value()); url != "" {
				return m.choose(url)
			}
		case "esc":
			m.urlMode = false
			m.input.Reset()
			m.input.Blur()
			return m, tea.SetWindowTitle(appName)
		case "ctrl+c":
			return m.cancel()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m BrowserModel) View() string {
	if m.urlMode {
		s := "\n"
		s += "  " + headerStyle.Render(appName) + "\n"
		s += "\n"
		s += "  " + statusStyle.Render("Enter URL:") + "\n"
		s += "  " + m.input.View() + "\n"
		s += "\n"
		s += "  " + helpStyle.Render("enter confirm  esc back  ctrl+c quit") + "\n"
		return s
	}
	return m.list.View()
}
