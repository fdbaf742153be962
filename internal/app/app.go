package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appetiteclub/kds/internal/kds"
	"github.com/appetiteclub/kds/internal/kitchenapi"
	"github.com/appetiteclub/kds/internal/realtime"
	"github.com/appetiteclub/kds/internal/settings"
	"github.com/appetiteclub/kds/pkg/event"
	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/middleware"
)

const (
	AppName    = "kds"
	AppVersion = "0.1.0"
)

// App wires the kitchen display for one store.
type App struct {
	config  *aqm.Config
	logger  aqm.Logger
	micro   *aqm.Micro
	display *kds.Display
}

func New(config *aqm.Config, logger aqm.Logger) (*App, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &App{
		config: config,
		logger: logger,
	}, nil
}

// resolveStoreID checks the configured store id before it is used to scope
// subjects and settings.
func resolveStoreID(raw string) (string, error) {
	if raw == "" {
		return "", kds.ErrNoStore
	}
	if err := event.ValidateStoreID(raw); err != nil {
		return "", fmt.Errorf("kds.store_id: %w", err)
	}
	return raw, nil
}

// Initialize builds every component and registers it with the micro service.
func (a *App) Initialize(ctx context.Context) error {
	storeID, err := resolveStoreID(a.config.GetStringOrDef("kds.store_id", ""))
	if err != nil {
		return err
	}

	var lifecycles []interface{}

	// Preferences
	var prefs kds.Preferences
	switch backend := a.config.GetStringOrDef("settings.backend", "file"); backend {
	case "mongo":
		mongoStore := settings.NewMongoStore(a.config, storeID, a.logger)
		lifecycles = append(lifecycles, mongoStore)
		prefs = mongoStore
	default:
		prefs = settings.NewFileStore(a.config.GetStringOrDef("settings.file.path", settings.DefaultFilePath), a.logger)
	}

	// Remote API
	apiURL := a.config.GetStringOrDef("services.kds.url", "http://localhost:8080/api")
	api := kitchenapi.NewClient(aqm.NewServiceClient(apiURL))

	// Realtime channel
	channel := realtime.NewClient(realtime.Config{
		URL: a.config.GetStringOrDef("nats.url", realtime.DefaultURL),
		Identity: realtime.Identity{
			Token:  a.config.GetStringOrDef("kds.token", ""),
			UserID: a.config.GetStringOrDef("kds.user_id", ""),
		},
		SyncInterval: a.duration("kds.sync_interval", realtime.DefaultSyncInterval),
	}, a.logger)

	store := kds.NewStore(prefs, a.logger)
	a.display = kds.NewDisplay(store, api, channel, kds.NewLogNotifier(a.logger), kds.Options{
		StoreID:          storeID,
		WatchdogInterval: a.duration("kds.watchdog_interval", kds.DefaultWatchdogInterval),
	}, a.logger)
	lifecycles = append(lifecycles, a.display)

	handler := kds.NewHandler(a.display, a.logger)

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      a.logger,
		DisableCORS: true,
	})

	options := []aqm.Option{
		aqm.WithConfig(a.config),
		aqm.WithLogger(a.logger),
		aqm.WithHTTPMiddleware(stack...),
		aqm.WithHTTPServerModules("web.port", handler),
		aqm.WithLifecycle(lifecycles...),
		aqm.WithHealthChecks(AppName),
	}

	a.micro = aqm.NewMicro(options...)
	return nil
}

func (a *App) duration(key string, def time.Duration) time.Duration {
	raw := a.config.GetStringOrDef(key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		a.logger.Info("invalid duration, using default", "key", key, "value", raw, "default", def.String())
		return def
	}
	return d
}

// Run starts the application and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.micro == nil {
		return errors.New("app not initialized")
	}
	a.logger.Infof("Starting %s(%s)", AppName, AppVersion)
	if err := a.micro.Run(ctx); err != nil {
		return err
	}
	a.logger.Infof("%s(%s) stopped", AppName, AppVersion)
	return nil
}

// Shutdown closes the display if the micro service did not.
func (a *App) Shutdown(ctx context.Context) error {
	if a.display == nil {
		return nil
	}
	return a.display.Close()
}
