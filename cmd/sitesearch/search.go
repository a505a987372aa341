package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"sitesearch/internal/config"
	"sitesearch/internal/eventbus"
	"sitesearch/internal/index"
	"sitesearch/internal/page"
	"sitesearch/internal/ui"
	"sitesearch/internal/widget"
)

// uiEvents are forwarded from the bus to the status line
var uiEvents = []eventbus.EventType{
	eventbus.EventIndexReady,
	eventbus.EventSearchInitialized,
	eventbus.EventSearchInitFailed,
	eventbus.EventInitRetryScheduled,
	eventbus.EventSearchFailed,
	eventbus.EventError,
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	indexPath := fs.String("index", "", "Path to the search index (json, js or msgpack)")
	configPath := fs.String("config", "", "Path to the config file")
	logPath := fs.String("log", "", "Path to the log file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *indexPath == "" && fs.NArg() > 0 {
		*indexPath = fs.Arg(0)
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return errors.New("search needs an interactive terminal")
	}

	// Create event bus
	bus := eventbus.New()
	defer bus.Close()

	// Load configuration
	var configSvc config.ConfigService
	if *configPath != "" {
		configSvc = config.NewConfigServiceAt(*configPath, bus)
	} else {
		configSvc = config.NewConfigServiceWithBus(bus)
	}
	cfg, cfgErr := loadOrCreateConfig(configSvc)

	// Set up logging
	if *logPath == "" {
		*logPath = cfg.LogFile
	}
	closeLog := setupLogging(*logPath)
	defer closeLog()
	if cfgErr != nil {
		log.Printf("Error loading config %s: %v", configSvc.Path(), cfgErr)
	}
	if *indexPath == "" {
		*indexPath = cfg.IndexPath
	}
	log.Printf("Starting search on %s", *indexPath)

	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	resolved, err := index.ResolvePath(ctx, *indexPath, "en")
	if err != nil {
		return err
	}
	*indexPath = resolved

	source := index.NewFileSource(*indexPath)
	watchErr := source.Watch(ctx)
	if watchErr != nil {
		// Without a watch the scheduler falls back to timed attempts
		log.Printf("Could not watch %s: %v", *indexPath, watchErr)
	}

	doc := page.NewSearchPage()
	w := widget.New(doc, source, bus, widgetOptions(cfg))
	defer w.Close()

	reader := ui.NewPagerReader()
	model := ui.NewModel(cfg, doc, w, reader, *indexPath)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	reader.SetProgram(p)

	// Forward events to the UI
	eventChan := make(chan eventbus.DomainEvent, 100)
	for _, eventType := range uiEvents {
		unsubscribe := bus.Subscribe(eventType, func(e eventbus.DomainEvent) {
			select {
			case eventChan <- e:
			default:
				log.Println("Event channel full, dropping event")
			}
		})
		defer unsubscribe()
	}
	if watchErr != nil {
		bus.Publish(eventbus.ErrorEvent{
			Message: fmt.Sprintf("Not watching %s, retrying on a timer", *indexPath),
			Err:     watchErr,
		})
	}
	go func() {
		for {
			select {
			case e := <-eventChan:
				p.Send(ui.EventMsg{Event: e})
			case <-ctx.Done():
				return
			}
		}
	}()

	scheduler := widget.NewScheduler(w, source, cfg.Init.RetryDelays(), bus)
	scheduler.SetRunFunc(ui.InitRunFunc(p))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := scheduler.Run(gctx)
		if errors.Is(err, widget.ErrNotInitialized) {
			// The UI stays up and reports the failure in its status line
			log.Printf("Search was not initialized: %v", err)
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})
	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("failed to run program: %w", err)
		}
		return nil
	})

	err = g.Wait()
	log.Printf("Search exited")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// loadOrCreateConfig loads the config, writing the defaults on first run so
// they can be edited. It always returns a usable config.
func loadOrCreateConfig(svc config.ConfigService) (*config.Config, error) {
	_, statErr := os.Stat(svc.Path())
	cfg, err := svc.Load()
	if err != nil {
		return config.DefaultConfig(), err
	}
	if os.IsNotExist(statErr) {
		if err := svc.Save(cfg); err != nil {
			log.Printf("Failed to save default config: %v", err)
		} else {
			log.Printf("Default config written to %s", svc.Path())
		}
	}
	return cfg, nil
}

func widgetOptions(cfg *config.Config) widget.Options {
	return widget.Options{
		MinQueryLength: cfg.Search.MinQueryLength,
		MaxResults:     cfg.Search.MaxResults,
		Search: index.SearchOptions{
			Fields: map[string]index.FieldOptions{
				"title": {Boost: cfg.Search.TitleBoost},
				"body":  {Boost: cfg.Search.BodyBoost},
			},
			Bool: index.BoolMode(cfg.Search.Bool),
		},
		URLs: widget.URLRules{
			ProductionOrigin: cfg.URLs.ProductionOrigin,
			StripLocalhost:   cfg.URLs.StripLocalhost,
		},
	}
}
