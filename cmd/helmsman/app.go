package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/helmsman-ai/helmsman/internal/catalog"
	"github.com/helmsman-ai/helmsman/internal/config"
	"github.com/helmsman-ai/helmsman/internal/inference"
	"github.com/helmsman-ai/helmsman/internal/ledger"
	"github.com/helmsman-ai/helmsman/internal/orchestrator"
	"github.com/helmsman-ai/helmsman/internal/quality"
	"github.com/helmsman-ai/helmsman/internal/scoring"
	"github.com/helmsman-ai/helmsman/internal/telemetry"
	"github.com/helmsman-ai/helmsman/pkg/models"
)

// app wires configuration, catalog, inference, and usage tracking into a
// ready Coordinator. Commands build one per invocation and close it when
// done.
type app struct {
	cfg     *config.Config
	store   *catalog.Store
	usage   *ledger.Ledger
	persist *ledger.Store
	logger  *orchestrator.DebugLogger

	metricsServer *http.Server
}

// newResolver builds the snapshot-to-operating-points function from the
// configured scoring weights and selection thresholds.
func newResolver(cfg *config.Config) catalog.ResolveFunc {
	engine := scoring.NewEngine(cfg.Scoring)
	selector := scoring.NewSelector(cfg.Selection)
	return func(snapshot *catalog.Snapshot) (models.OperatingPoints, error) {
		scored, err := engine.ScoreAll(snapshot.Profiles)
		if err != nil {
			return models.OperatingPoints{}, err
		}
		return selector.ResolveOperatingPoints(scored, snapshot.Version)
	}
}

// newApp loads configuration and assembles the routing stack.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	store, err := catalog.NewStore(cfg.Catalog.Path, newResolver(cfg))
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	logger, err := orchestrator.NewDebugLogger(cfg.DebugLog)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}

	a := &app{cfg: cfg, store: store, logger: logger}

	if cfg.Catalog.Watch {
		err := store.Watch(
			func(r *catalog.Resolved) {
				logger.Log("CATALOG", "reloaded catalog version %d", r.Points.CatalogVersion)
			},
			func(err error) {
				logger.Log("CATALOG", "reload failed: %v", err)
			},
		)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("watch catalog: %w", err)
		}
	}

	var sinks []ledger.Sink
	if cfg.Ledger.DBPath != "" {
		persist, err := ledger.OpenStore(cfg.Ledger.DBPath)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open usage store: %w", err)
		}
		a.persist = persist
		sinks = append(sinks, persist)
	}
	a.usage = ledger.New(sinks...)

	return a, nil
}

// coordinator builds a Coordinator against the current catalog version.
func (a *app) coordinator() (*orchestrator.Coordinator, error) {
	resolved := a.store.Current()

	client, err := inference.NewAnthropicClient(inference.AnthropicConfig{
		APIKey:        a.cfg.Anthropic.APIKey,
		UseAWSBedrock: a.cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     a.cfg.Anthropic.AWSRegion,
		AWSProfile:    a.cfg.Anthropic.AWSProfile,
		Pricing:       resolved.Snapshot.Pricing(),
	})
	if err != nil {
		return nil, fmt.Errorf("create inference client: %w", err)
	}

	var scorer quality.Scorer
	if a.cfg.JudgeModel != "" {
		scorer = quality.NewJudgeScorer(client, a.cfg.JudgeModel, 0)
	}

	var metrics *telemetry.Metrics
	if a.cfg.Telemetry.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = telemetry.NewMetrics(reg)
		a.serveMetrics(reg)
	}

	return orchestrator.New(orchestrator.Options{
		Points:       resolved.Points,
		Client:       client,
		Scorer:       scorer,
		Usage:        a.usage,
		Metrics:      metrics,
		Logger:       a.logger,
		RouterConfig: a.cfg.Routing,
	}), nil
}

// serveMetrics exposes the Prometheus endpoint in the background.
func (a *app) serveMetrics(reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	a.metricsServer = &http.Server{
		Addr:              a.cfg.Telemetry.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Log("METRICS", "metrics server stopped: %v", err)
		}
	}()
}

// Close releases all held resources.
func (a *app) Close() {
	if a.metricsServer != nil {
		a.metricsServer.Close()
	}
	if a.persist != nil {
		a.persist.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.logger != nil {
		a.logger.Close()
	}
}
