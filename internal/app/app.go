// Package app assembles the offline queue and its collaborators for the
// CLI commands.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"eduplanner/studysync/internal/actionstore"
	"eduplanner/studysync/internal/cache"
	"eduplanner/studysync/internal/config"
	"eduplanner/studysync/internal/database"
	"eduplanner/studysync/internal/executor"
	"eduplanner/studysync/internal/netmon"
	"eduplanner/studysync/internal/queue"
	"eduplanner/studysync/internal/remote"
	"eduplanner/studysync/internal/services/auth"
	"eduplanner/studysync/internal/services/chat"
	"eduplanner/studysync/internal/services/offline"
	"eduplanner/studysync/internal/synclog"

	"golang.org/x/sync/errgroup"
)

// Options controls how Open assembles the App. Zero values select the
// defaults from config and the OS.
type Options struct {
	Config *config.Config

	// ForceOffline disables probing and keeps the network state offline.
	ForceOffline bool

	// DBPath overrides the database location.
	DBPath string

	// StateDir overrides the confirmed-state cache directory.
	StateDir string

	Auth       auth.Store
	HTTPClient *http.Client
	Clock      queue.Clock
	Logger     *slog.Logger
}

// App holds every long-lived component.
type App struct {
	Config   *config.Config
	Store    actionstore.Store
	History  synclog.Repository // nil when storage is not durable
	Network  *netmon.Monitor
	Registry *executor.Registry
	Queue    *queue.Manager
	Offline  *offline.Service
	Chat     *chat.Queue
	States   *cache.Cache
	Logger   *slog.Logger

	db           *sql.DB // nil when storage is not durable
	forceOffline bool
}

// Open wires the components. It never fails because durable storage is
// missing; check Store.Durable instead.
func Open(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			return nil, err
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dbPath := opts.DBPath
	if dbPath == "" {
		var err error
		if dbPath, err = database.DefaultPath(); err != nil {
			return nil, fmt.Errorf("app: %w", err)
		}
	}

	// The action store and the history share one handle and one
	// migration run.
	store, db := actionstore.OpenOrFallback(ctx, dbPath, logger)

	var (
		history   synclog.Repository
		recorders queue.MultiRecorder
	)
	if db != nil {
		repo := synclog.New(db)
		history = repo
		recorders = append(recorders, repo)
	}

	states := cache.NewDefault()
	if opts.StateDir != "" {
		states = cache.New(opts.StateDir)
	}

	apiURL := cfg.EffectiveAPIURL()
	token := lookupToken(opts.Auth, apiURL, logger)

	network := netmon.New(netmon.Config{
		Online:   !opts.ForceOffline,
		ProbeURL: probeURL(cfg, opts.ForceOffline),
		Client:   opts.HTTPClient,
		Logger:   logger,
	})

	registry := executor.NewRegistry()
	clientOpts := []remote.Option{remote.WithLogger(logger)}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, remote.WithHTTPClient(opts.HTTPClient))
	}
	remote.New(apiURL, token, clientOpts...).Register(registry)
	logger.Debug("executors registered", "types", registry.Types())

	recorders = append(recorders, offline.NewStateRecorder(states))

	q := queue.New(queue.Config{
		Store:    store,
		Network:  network,
		Registry: registry,
		Lanes:    queue.DefaultLanes(),
		Interval: cfg.EffectiveDrainInterval(),
		Clock:    opts.Clock,
		Recorder: recorders,
		Logger:   logger,
	})

	svcOpts := []offline.Option{offline.WithStateCache(states), offline.WithLogger(logger)}
	if opts.Clock != nil {
		svcOpts = append(svcOpts, offline.WithClock(opts.Clock))
	}
	svc := offline.NewService(q, network, registry, svcOpts...)

	return &App{
		Config:       cfg,
		Store:        store,
		History:      history,
		Network:      network,
		Registry:     registry,
		Queue:        q,
		Offline:      svc,
		Chat:         chat.New(svc, q),
		States:       states,
		Logger:       logger,
		db:           db,
		forceOffline: opts.ForceOffline,
	}, nil
}

// CheckConnectivity probes once so one-shot commands start from a
// fresh network state.
func (a *App) CheckConnectivity(ctx context.Context) bool {
	if a.forceOffline {
		return false
	}
	return a.Network.Check(ctx)
}

// Run probes connectivity and drains the queue until ctx is done.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if !a.forceOffline {
		g.Go(func() error {
			a.Network.Probe(ctx, a.Config.EffectiveProbeInterval())
			return nil
		})
	}
	g.Go(func() error {
		return a.Queue.Start(ctx)
	})
	return g.Wait()
}

// Close releases storage.
func (a *App) Close() error {
	errs := []error{a.Store.Close()}
	if a.History != nil {
		errs = append(errs, a.History.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

func probeURL(cfg *config.Config, forceOffline bool) string {
	if forceOffline {
		return ""
	}
	return cfg.EffectiveProbeURL()
}

func lookupToken(store auth.Store, apiURL string, logger *slog.Logger) string {
	if store == nil {
		store = auth.DefaultStore()
	}
	token, err := store.GetToken(auth.AccountFor(apiURL))
	if err != nil {
		if !errors.Is(err, auth.ErrTokenNotFound) {
			logger.Warn("could not read API token", "err", err)
		}
		return ""
	}
	return token
}
