package cmd

import (
	adapternotify "github.com/quarterlog/quarterlog/internal/adapters/notify"
	adapterstorage "github.com/quarterlog/quarterlog/internal/adapters/storage"
	"github.com/quarterlog/quarterlog/internal/config"
	"github.com/quarterlog/quarterlog/internal/ports"
	"github.com/quarterlog/quarterlog/internal/services"
	"github.com/quarterlog/quarterlog/internal/tui"
)

// Container holds all dependencies for the application
type Container struct {
	Service  *services.WorkblockService
	Timer    *services.Timer
	Settings *config.Settings

	// UISink is where running Bubble Tea programs attach to receive
	// timer events
	UISink *tui.Sink

	// Internal - for cleanup only
	repo ports.WorkblockRepository
}

// NewContainer creates a new Container with all dependencies wired
func NewContainer(settings *config.Settings) (*Container, error) {
	repo, err := adapterstorage.NewSQLiteRepository(settings.ResolveDBPath())
	if err != nil {
		return nil, err
	}

	clock := ports.SystemClock{}
	slice := settings.SliceLength()
	grace := settings.GraceWindow()

	// Event chain: timer -> desktop notifications -> attached TUIs
	uiSink := tui.NewSink()
	var sink ports.EventSink = uiSink
	if settings.NotificationsEnabled() {
		sink = adapternotify.NewSink(uiSink)
	}

	timer := services.NewTimer(repo, sink, clock, slice, grace)
	aggregator := services.NewAggregator(repo, repo, slice)
	service := services.NewWorkblockService(repo, timer, aggregator, sink, clock)

	return &Container{
		Service:  service,
		Timer:    timer,
		Settings: settings,
		UISink:   uiSink,
		repo:     repo,
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	if c.repo != nil {
		return c.repo.Close()
	}
	return nil
}
