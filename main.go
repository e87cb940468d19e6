package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"codeberg.org/miketth/hyprkeymap/pkg/config"
	"codeberg.org/miketth/hyprkeymap/pkg/hyprkeymap"
	"codeberg.org/miketth/hyprkeymap/pkg/hyprland"
	jsonjournal "codeberg.org/miketth/hyprkeymap/pkg/journal/json"
	"codeberg.org/miketth/hyprkeymap/pkg/journal/memory"
	"codeberg.org/miketth/hyprkeymap/pkg/journal/sqlite"
	"codeberg.org/miketth/hyprkeymap/pkg/keyboard"
	"codeberg.org/miketth/hyprkeymap/pkg/logging"
	"codeberg.org/miketth/hyprkeymap/pkg/wayland"
	"codeberg.org/miketth/hyprkeymap/pkg/xkblayouts"
	"github.com/coreos/go-systemd/v22/daemon"
	"go.uber.org/zap"
)

func main() {
	err := run()
	if err != nil {
		log.Fatalf("error: %+v", err)
	}
}

func run() error {
	configPath := flag.String("config", config.DefaultPath(), "path to config file")
	evdevXmlPath := flag.String("evdev-xml-path", "", "path to evdev.xml, overrides the config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	history := flag.Int("history", 0, "print the last n journal entries and exit")
	flag.Parse()

	log, err := logging.New(*debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *evdevXmlPath != "" {
		cfg.EvdevXMLPath = *evdevXmlPath
	}

	journal, err := openJournal(cfg.Journal, log)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer journal.close()

	if *history > 0 {
		return printHistory(journal.Journal, *history)
	}

	ctx := context.Background()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	layouts, err := xkblayouts.ParseLayouts(cfg.EvdevXMLPath)
	if err != nil {
		return fmt.Errorf("parse layouts: %w", err)
	}

	client, err := hyprland.Connect()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer client.Close()

	hyprctl, err := hyprland.NewHyprctl()
	if err != nil {
		return fmt.Errorf("connect hyprctl: %w", err)
	}

	keyboards := keyboard.NewRegistry()
	tracker := hyprkeymap.NewTracker(keyboards, hyprctl, layouts, log)
	if err := tracker.Sync(); err != nil {
		return fmt.Errorf("sync keyboards: %w", err)
	}

	host := hyprkeymap.NewHost(keyboards, tracker, cfg.Access.Policy().Allow, journal.Journal, log)

	listener, err := wayland.Listen(cfg.SocketPath, log)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.SocketPath, err)
	}
	defer listener.Close()

	log.Infow("started hyprkeymap", "socket", cfg.SocketPath)

	lines := make(chan string)
	conns := make(chan wayland.ConnEvent)

	tasks := map[string]func(context.Context) error{
		"read hyprland events": func(ctx context.Context) error {
			// unblocks ReadLine on shutdown
			go func() {
				<-ctx.Done()
				_ = client.Close()
			}()
			return hyprkeymap.ReadLines(ctx, client, lines)
		},
		"serve clients":  func(ctx context.Context) error { return listener.Serve(ctx, conns) },
		"run host":       func(ctx context.Context) error { return host.Run(ctx, lines, conns) },
		"systemd notify": systemdNotifyLoop,
	}
	if journal.loop != nil {
		tasks["save journal"] = journal.loop
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))

	for name, task := range tasks {
		name, task := name, task
		go func() {
			defer wg.Done()
			err := task(ctx)
			if err != nil {
				errChan <- fmt.Errorf("%s: %w", name, err)
			}
		}()
	}

	err = <-errChan
	cancel()
	wg.Wait()

	switch {
	case errors.Is(err, context.Canceled):
		log.Info("shutting down")
		return nil
	case err != nil:
		return err
	}

	return nil
}

type journalHandle struct {
	hyprkeymap.Journal
	loop  func(context.Context) error
	close func() error
}

func openJournal(cfg config.Journal, log *zap.SugaredLogger) (*journalHandle, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.JournalNone:
		return &journalHandle{close: noop}, nil
	case config.JournalMemory:
		return &journalHandle{Journal: memory.NewStore(cfg.Limit), close: noop}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	switch cfg.Backend {
	case config.JournalSqlite:
		store, err := sqlite.NewStore(cfg.Path, log)
		if err != nil {
			return nil, err
		}
		return &journalHandle{Journal: store, close: store.Close}, nil
	case config.JournalJSON:
		store, err := jsonjournal.NewStore(cfg.Path, cfg.Limit)
		if err != nil {
			return nil, err
		}
		loop := func(ctx context.Context) error {
			return store.SaveLooper(ctx, time.Minute)
		}
		// SaveLooper closes the file itself
		return &journalHandle{Journal: store, loop: loop, close: noop}, nil
	}

	return nil, fmt.Errorf("unknown journal backend %q", cfg.Backend)
}

func printHistory(journal hyprkeymap.Journal, n int) error {
	if journal == nil {
		return errors.New("journal is disabled")
	}

	entries, err := journal.Recent(n)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}

	for _, e := range entries {
		initial := ""
		if e.Initial {
			initial = " (initial)"
		}
		fmt.Printf("%s client=%d object=%d keyboard=%s group=%d%s\n",
			e.Time.Local().Format(time.RFC3339), e.Client, e.Object, e.Keyboard, e.Group, initial)
	}

	return nil
}

func systemdNotifyLoop(ctx context.Context) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, "STATUS=Keeping keymap clients in sync")

	// notify watchdog
	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}
