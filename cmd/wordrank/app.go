package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bastiangx/wordrank/internal/metrics"
	"github.com/bastiangx/wordrank/internal/utils"
	"github.com/bastiangx/wordrank/pkg/config"
	"github.com/bastiangx/wordrank/pkg/dictionary"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/charmbracelet/log"
)

// app carries state shared by every subcommand: the persistent flags and the loaded config.
type app struct {
	configPath string
	debug      bool
	dataPaths  []string
	backend    string
	maxWords   int

	config     *config.Config
	activePath string
	metrics    *metrics.Metrics
}

// loadConfig resolves the config file and applies command line overrides to it.
func (a *app) loadConfig(overrides func(*config.Config)) error {
	cfg, path, err := config.LoadConfigWithPriority(a.configPath)
	if err != nil {
		return err
	}
	if overrides != nil {
		overrides(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.config = cfg
	a.activePath = path
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(path))
	return nil
}

// dictOverrides applies --data, --backend and --words.
func (a *app) dictOverrides(cfg *config.Config) {
	if len(a.dataPaths) > 0 {
		cfg.Dict.Paths = a.dataPaths
	}
	if a.backend != "" {
		cfg.Dict.Backend = a.backend
	}
	if a.maxWords > 0 {
		cfg.Dict.MaxWords = a.maxWords
	}
}

// loadEntries reads every configured dictionary path.
func (a *app) loadEntries(ctx context.Context) (*dictionary.Result, error) {
	paths := make([]string, len(a.config.Dict.Paths))
	for i, p := range a.config.Dict.Paths {
		paths[i] = utils.ResolvePath(p)
	}

	loader := dictionary.NewLoader(
		dictionary.WithLowercase(a.config.Dict.Lowercase),
		dictionary.WithMaxWords(a.config.Dict.MaxWords),
		dictionary.WithLoaderMetrics(a.metrics),
	)
	return loader.LoadFiles(ctx, paths...)
}

// buildCompleter loads the configured dictionaries into a fresh completer.
func (a *app) buildCompleter(ctx context.Context) (*suggest.Completer, error) {
	index, err := suggest.NewIndex(a.config.Dict.Backend)
	if err != nil {
		return nil, err
	}
	completer := suggest.NewCompleter(suggest.WithIndex(index), suggest.WithMetrics(a.metrics))

	start := time.Now()
	result, err := a.loadEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}
	stats, err := completer.Load(result.Entries)
	if err != nil {
		return nil, err
	}
	log.Debugf("Init completer: backend=[%s], words=[%d], rejected=[%d], skipped lines=[%d], took %v",
		a.config.Dict.Backend, completer.Stats().TotalWords, stats.Rejected, result.Stats.Skipped, time.Since(start))
	return completer, nil
}

// serveMetrics exposes the registry on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, m *metrics.Metrics) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Debugf("Serving metrics on http://%s/metrics", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
