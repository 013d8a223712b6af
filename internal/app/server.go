package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Adda-Baaj/link-meta/internal/api"
	"github.com/Adda-Baaj/link-meta/internal/config"
	"github.com/Adda-Baaj/link-meta/internal/extractor"
	"github.com/Adda-Baaj/link-meta/internal/logger"
	"github.com/Adda-Baaj/link-meta/internal/metrics"
	"github.com/Adda-Baaj/link-meta/internal/notify"
	"github.com/Adda-Baaj/link-meta/internal/storage"
	"github.com/Adda-Baaj/link-meta/pkg/httpclient"
	"github.com/Adda-Baaj/link-meta/pkg/publishers"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// Server is the extraction service runtime. It owns the HTTP API, the event
// notifier and the resources both depend on.
type Server struct {
	cfg      *config.Config
	echo     *echo.Echo
	notifier *notify.Notifier
	fanout   *publishers.Fanout
	store    storage.Store
	log      logger.Logger
}

// NewServer builds the server runtime from config.
func NewServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	clientOpts := []httpclient.Option{httpclient.WithMaxBodyBytes(cfg.MaxBodyBytes)}
	if logger.S != nil {
		clientOpts = append(clientOpts, httpclient.WithLogger(logger.S))
	}
	client := httpclient.NewRestyClient(cfg.ExtractTimeout, clientOpts...)

	extractorOpts := []extractor.Option{
		extractor.WithTimeout(cfg.ExtractTimeout),
		extractor.WithUserAgent(cfg.UserAgent),
	}
	if cfg.AcceptLanguage != "" {
		extractorOpts = append(extractorOpts, extractor.WithHeader("Accept-Language", cfg.AcceptLanguage))
	}
	ex := extractor.New(client, extractorOpts...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var notifier *notify.Notifier
	var store storage.Store
	if fanout != nil {
		store, err = storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
			TTL:             cfg.StorageTTL,
			CleanupInterval: cfg.StorageCleanupInterval,
		})
		if err != nil {
			_ = fanout.Close()
			return nil, fmt.Errorf("init storage: %w", err)
		}
		log.InfoObj("storage initialized", "storage_config", map[string]any{
			"type":                     cfg.StorageType,
			"path":                     cfg.BBoltPath,
			"ttl_seconds":              int(cfg.StorageTTL.Seconds()),
			"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
		})
		notifier = notify.New(fanout, store, log, m, cfg.EventQueueSize)
	}

	opts := api.ServerOptions{
		Extractor:          ex,
		Metrics:            m,
		Gatherer:           reg,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Log:                log,
	}
	if notifier != nil {
		opts.Notifier = notifier
	}

	return &Server{
		cfg:      cfg,
		echo:     api.NewServer(opts),
		notifier: notifier,
		fanout:   fanout,
		store:    store,
		log:      log,
	}, nil
}

// buildFanout loads the publishers file when configured. A nil fanout means
// extraction events are disabled.
func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if cfg.PublishersFile == "" {
		log.InfoObj("no publishers file configured; extraction events disabled", "publishers_file", "")
		return nil, nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	if len(enabled) == 0 {
		log.WarnObj("all publishers disabled; extraction events disabled", "publishers_file", cfg.PublishersFile)
		return nil, nil
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})

	return publishers.NewFanout(pubClients), nil
}

// Handler exposes the HTTP handler for in-process use.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves HTTP and drains the event queue until ctx is cancelled, then
// shuts down within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	if s == nil || s.echo == nil {
		return fmt.Errorf("server is not initialized")
	}
	defer s.closeResources()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.InfoObj("http server listening", "http_addr", s.cfg.HTTPAddr)
		if err := s.echo.Start(s.cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.log.InfoObj("http server shutting down", "reason", fmt.Sprint(gctx.Err()))
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if s.notifier != nil {
		g.Go(func() error {
			return s.notifier.Run(gctx)
		})
	}

	return g.Wait()
}

// closeResources releases publishers and storage, logging any errors.
func (s *Server) closeResources() {
	if s.fanout != nil {
		if err := s.fanout.Close(); err != nil {
			s.log.ErrorObj("publishers close failed", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.ErrorObj("storage close failed", "error", err)
		}
	}
}
