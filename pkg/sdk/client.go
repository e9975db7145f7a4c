package entlink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/entlink/internal/db"
	dbRedis "github.com/kailas-cloud/entlink/internal/db/redis"
	"github.com/kailas-cloud/entlink/internal/domain"
	dombatch "github.com/kailas-cloud/entlink/internal/domain/batch"
	domdoc "github.com/kailas-cloud/entlink/internal/domain/document"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
	"github.com/kailas-cloud/entlink/internal/metrics"
	"github.com/kailas-cloud/entlink/internal/repository/kbcache"
	"github.com/kailas-cloud/entlink/internal/repository/knowledgebase"
	"github.com/kailas-cloud/entlink/internal/repository/termindex"
	batchuc "github.com/kailas-cloud/entlink/internal/usecase/batch"
	evaluateuc "github.com/kailas-cloud/entlink/internal/usecase/evaluate"
	healthuc "github.com/kailas-cloud/entlink/internal/usecase/health"
	"github.com/kailas-cloud/entlink/internal/usecase/pipeline"
	"github.com/kailas-cloud/entlink/internal/usecase/rating"
	"github.com/kailas-cloud/entlink/internal/usecase/stages"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type batchUseCase interface {
	Process(ctx context.Context, docs []*domdoc.Document, from, to int) []dombatch.Result
	Index(ctx context.Context, docs []batchuc.TermDocument) []dombatch.Result
}

type evaluateUseCase interface {
	Evaluate(ctx context.Context, step int, doc *domdoc.Document, groundTruth string) (evaluateuc.Report, error)
}

type knowledgeLoader interface {
	Put(ctx context.Context, resources []domain.Resource, clusters map[graph.NodeID]graph.NodeID) error
	Purge(ctx context.Context) (int, error)
}

type termIndex interface {
	Stats(ctx context.Context) (domain.IndexStats, error)
	Purge(ctx context.Context) (int, error)
}

// Client is the entlink SDK entry point. It is safe for concurrent use.
type Client struct {
	store     db.Store
	batchSvc  batchUseCase
	evaluator evaluateUseCase
	loader    knowledgeLoader
	index     termIndex
	healthSvc healthUseCase
	stages    []string
	release   func() error
	obs       *observer
}

// New creates a Client, connects to the database and configures the pipeline.
// The provided context is used for the readiness check and for acquiring
// stage resources (the IDF term index handle).
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: domain.KeyPrefix,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("entlink: database address required (use WithValkey or WithRedis)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("entlink: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("entlink: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("entlink: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	kbRepo := knowledgebase.New(store).WithKeyPrefix(cfg.keyPrefix)
	termIndex := termindex.New(store).WithKeyPrefix(cfg.keyPrefix)

	var pm *metrics.Pipeline
	if cfg.metricsReg != nil {
		var err error
		if pm, err = metrics.NewPipeline(cfg.metricsReg); err != nil {
			return nil, fmt.Errorf("entlink: %w", err)
		}
	}

	var cache *kbcache.CachedKnowledgeBase
	var kb domain.KnowledgeBase = kbRepo
	if !cfg.cacheDisabled {
		// A nil registerer leaves the counter unregistered.
		cacheTotal, err := metrics.NewKnowledgeBaseCache(cfg.metricsReg)
		if err != nil {
			return nil, fmt.Errorf("entlink: %w", err)
		}
		cache = kbcache.New(kbRepo, cfg.cacheEntries, cacheTotal, zap.NewNop())
		kb = cache
	}

	built, err := stages.Build(ctx, stages.Spec{
		Names:    cfg.stages,
		Resolver: cfg.resolver,
		Rating:   cfg.rating,
		HITS:     graph.HITSOptions{MaxIterations: cfg.hitsMaxIter, Tolerance: cfg.hitsTolerance},
	}, stages.Deps{
		Index: rating.IndexOpenerFunc(func(ctx context.Context) (rating.TermIndex, error) {
			h, err := termIndex.Open(ctx)
			if err != nil {
				return nil, err
			}
			return h, nil
		}),
		Metrics: pm,
	})
	if err != nil {
		return nil, fmt.Errorf("entlink: build stages: %w", err)
	}

	var observers pipeline.Observers
	if pm != nil {
		observers = append(observers, pipeline.NewMetricsObserver(pm))
	}
	p := pipeline.New(kb, observers)
	if err := p.Configure(built.Stages...); err != nil {
		_ = built.Close()
		return nil, fmt.Errorf("entlink: %w", err)
	}

	batchSvc := batchuc.New(p, termIndex)
	if cfg.maxBatchSize > 0 {
		batchSvc = batchSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}
	if cfg.workers > 0 {
		batchSvc = batchSvc.WithWorkers(cfg.workers)
	}

	return &Client{
		store:     store,
		batchSvc:  batchSvc,
		evaluator: evaluateuc.New(p, nil),
		loader:    kbcache.NewWriteThrough(kbRepo, cache),
		index:     termIndex,
		healthSvc: healthuc.New(store, map[string]healthuc.Checker{
			"knowledge_base": kbRepo,
			"term_index":     termIndex,
		}),
		stages:  p.Names(),
		release: built.Close,
		obs:     obs,
	}, nil
}

// Close releases stage resources and the database connection.
func (c *Client) Close() {
	if c.release != nil {
		_ = c.release()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Stages returns the configured stage names in run order.
func (c *Client) Stages() []string {
	return append([]string(nil), c.stages...)
}
