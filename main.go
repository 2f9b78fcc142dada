package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/mngviz/internal/config"
	"github.com/olivier-w/mngviz/internal/logging"
	"github.com/olivier-w/mngviz/internal/media"
	"github.com/olivier-w/mngviz/internal/player"
	"github.com/olivier-w/mngviz/internal/session"
	"github.com/olivier-w/mngviz/internal/ui"
	"github.com/olivier-w/mngviz/internal/visualizer/scene3d"
)

const appName = "mngviz"

func main() {
	cfg, source, err := parseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if cfg.Demo {
		source = media.DemoSource
	}

	if cfg.HeadlessFrames > 0 {
		if source == "" {
			fmt.Fprintln(os.Stderr, "Error: headless rendering needs a source or -demo")
			os.Exit(2)
		}
		if err := runHeadless(context.Background(), cfg, source, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if source == "" {
		browser := ui.NewBrowser()
		if browser.HasError() {
			fmt.Fprintf(os.Stderr, "Error: %v\n", browser.Error())
			os.Exit(1)
		}
		finalModel, err := tea.NewProgram(browser, tea.WithAltScreen()).Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		bm, ok := finalModel.(ui.BrowserModel)
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unexpected model type from browser\n")
			os.Exit(1)
		}
		result := bm.Result()
		if result.Cancelled {
			os.Exit(0)
		}
		source = result.Path
	}

	if err := checkSource(source); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := runUI(cfg, source); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs builds the configuration: defaults, then the config file, then
// any flags given explicitly. It returns the positional source argument.
func parseArgs(args []string, stderr io.Writer) (*config.Config, string, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s [flags] [file-or-url]\n\n", appName)
		fs.PrintDefaults()
	}

	var (
		configPath = fs.String("config", "", "config file (default ~/.config/mngviz/config.yaml)")
		variant    = fs.String("variant", "", "scene variant: 2d or 3d")
		theme      = fs.String("theme", "", "3d theme: "+themeList())
		fps        = fs.Int("fps", 0, "frames per second")
		volume     = fs.Float64("volume", 0, "initial volume, 0 to 1")
		recordDir  = fs.String("record", "", "write every frame as a PNG into `dir`")
		headless   = fs.Int("headless", 0, "render `n` frames without the terminal UI")
		demo       = fs.Bool("demo", false, "visualize a synthetic signal instead of a file")
		debug      = fs.Bool("debug", false, "log at debug level")
	)
	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if fs.NArg() > 1 {
		return nil, "", fmt.Errorf("expected at most one source, got %d", fs.NArg())
	}

	cfg := config.Default()
	if *configPath != "" {
		if err := cfg.LoadFile(*configPath); err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
	} else if _, err := cfg.TryLoadDefault(); err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "variant":
			cfg.Variant = config.Variant(strings.ToLower(*variant))
		case "theme":
			cfg.Theme = *theme
		case "fps":
			cfg.FPS = *fps
		case "volume":
			cfg.Volume = *volume
		case "record":
			cfg.RecordDir = *recordDir
		case "headless":
			cfg.HeadlessFrames = *headless
		case "demo":
			cfg.Demo = *demo
		case "debug":
			cfg.Debug = *debug
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	rec, err := scene3d.LookupTheme(cfg.Theme)
	if err != nil {
		return nil, "", err
	}
	cfg.Theme = string(rec.Name)
	return cfg, fs.Arg(0), nil
}

func themeList() string {
	names := make([]string, 0, len(scene3d.Themes()))
	for _, t := range scene3d.Themes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

// setupLogging routes log output to a file so the alternate screen stays
// clean. It must run before any component logger is created.
func setupLogging(cfg *config.Config) (func(), error) {
	path := os.Getenv("MNGVIZ_LOG")
	if path == "" {
		path = os.DevNull
		if cfg.Debug {
			path = appName + ".log"
		}
	}
	f, err := tea.LogToFile(path, appName)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := logging.New(f)
	if cfg.Debug {
		logger.SetLevel(logging.DebugLevel)
	}
	logging.SetDefault(logger)
	return func() { f.Close() }, nil
}

// checkSource rejects local paths that cannot be played before the UI
// starts. URLs and the demo signal are checked when they load.
func checkSource(source string) error {
	if media.IsDemo(source) || media.IsURL(source) {
		return nil
	}
	info, err := os.Stat(source)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", source)
	}
	if !media.IsSupportedFile(source) {
		return fmt.Errorf("%w: %s (supported: %s)", player.ErrUnsupportedFormat, source, media.SupportedExtsList())
	}
	return nil
}

// loadTransport opens the decode graph for source.
func loadTransport(source string) (session.Transport, error) {
	if media.IsDemo(source) {
		return player.NewDemo(nil), nil
	}
	if err := checkSource(source); err != nil {
		return nil, err
	}
	p, err := player.New(source)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newSession(cfg *config.Config, loader session.Loader) (*session.Session, error) {
	return session.New(session.Options{
		Variant: cfg.Variant,
		Theme:   scene3d.Theme(cfg.Theme),
		FPS:     cfg.FPS,
		Volume:  cfg.Volume,
		Loader:  loader,
	})
}

func runUI(cfg *config.Config, source string) error {
	s, err := newSession(cfg, loadTransport)
	if err != nil {
		return err
	}
	defer s.Close()

	var rec *session.Recorder
	if cfg.RecordDir != "" {
		if rec, err = session.NewRecorder(cfg.RecordDir); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	model := ui.New(s, ui.Options{
		Source:   source,
		AutoPlay: true,
		Recorder: rec,
		FPS:      cfg.FPS,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
