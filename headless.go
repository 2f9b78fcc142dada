package main

import (
	"context"
	"fmt"
	"io"

	"github.com/olivier-w/mngviz/internal/config"
	"github.com/olivier-w/mngviz/internal/logging"
	"github.com/olivier-w/mngviz/internal/session"
)

const defaultRecordDir = "frames"

// runHeadless plays source and writes cfg.HeadlessFrames frames as PNGs
// without touching the terminal.
func runHeadless(ctx context.Context, cfg *config.Config, source string, out io.Writer) error {
	return renderFrames(ctx, cfg, source, loadTransport, out)
}

func renderFrames(ctx context.Context, cfg *config.Config, source string, loader session.Loader, out io.Writer) error {
	log := logging.Component("headless")

	dir := cfg.RecordDir
	if dir == "" {
		dir = defaultRecordDir
	}
	rec, err := session.NewRecorder(dir)
	if err != nil {
		return err
	}

	s, err := newSession(cfg, loader)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.LoadSource(source); err != nil {
		return err
	}
	if err := s.Play(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.Start(ctx)

	for rec.Count() < cfg.HeadlessFrames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p, ok := <-s.Frames():
			if !ok {
				return fmt.Errorf("session closed after %d frames", rec.Count())
			}
			path, err := rec.Save(p)
			if err != nil {
				return err
			}
			log.Debug("frame written", logging.Fields{"path": path})
		}
	}

	fmt.Fprintf(out, "wrote %d frames to %s\n", rec.Count(), dir)
	return nil
}
