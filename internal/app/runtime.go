package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/jsonapi-client/internal/config"
	"github.com/samvad-hq/jsonapi-client/internal/journal"
	"github.com/samvad-hq/jsonapi-client/internal/logger"
	"github.com/samvad-hq/jsonapi-client/pkg/jsonapi"
	"github.com/samvad-hq/jsonapi-client/pkg/reporters"
	"github.com/samvad-hq/jsonapi-client/pkg/transport"
)

// Runtime bundles the API client with the failure reporting pipeline. It owns
// the journal store and any reporter connections until Close is called.
type Runtime struct {
	cfg    *config.Config
	client *jsonapi.Client
	fanout *reporters.Fanout
	store  journal.Store
	log    logger.Logger
}

// NewRuntime builds a runtime from config. The API transport itself is built
// lazily by the client on first request.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := journal.NewStore(cfg.JournalType, cfg.JournalPath, journal.Options{
		TTL:             cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.DebugObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"ttl_seconds":              int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	reps := []reporters.Reporter{reporters.NewJournal(store)}
	if cfg.ReportersFile != "" {
		built, err := buildReporters(ctx, cfg.ReportersFile, log)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		reps = append(reps, built...)
	}

	client := jsonapi.New(
		jsonapi.WithEndpoint(cfg.APIEndpoint),
		jsonapi.WithTimeout(cfg.APITimeout),
		jsonapi.WithHeaders(cfg.Headers()),
		jsonapi.WithLogger(log),
	)

	return &Runtime{
		cfg:    cfg,
		client: client,
		fanout: reporters.NewFanout(reps),
		store:  store,
		log:    log,
	}, nil
}

func buildReporters(ctx context.Context, path string, log logger.Logger) ([]reporters.Reporter, error) {
	reg, err := reporters.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load reporters registry: %w", err)
	}

	enabled := reg.Enabled()
	built, err := reporters.BuildAll(ctx, reporters.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build reporters: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, cfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   cfg.ID,
			"type": cfg.Type,
		})
	}
	log.DebugObj("reporters registry loaded", "reporters_meta", map[string]any{
		"count":     len(summaries),
		"reporters": summaries,
	})
	return built, nil
}

// Client returns the API client.
func (r *Runtime) Client() *jsonapi.Client { return r.client }

// Journal returns the local failure journal.
func (r *Runtime) Journal() journal.Store { return r.store }

// Reporters returns the number of active failure reporters, journal included.
func (r *Runtime) Reporters() int { return r.fanout.Size() }

// Report hands err to every reporter when it is an unexpected status error.
// It returns the reported failure and whether err qualified. Reporter errors
// are logged and never returned.
func (r *Runtime) Report(ctx context.Context, err error) (reporters.Failure, bool) {
	var statusErr *transport.UnexpectedStatusError
	if !errors.As(err, &statusErr) {
		return reporters.Failure{}, false
	}

	failure := reporters.NewFailure(statusErr)
	delivered, reportErr := r.fanout.Report(ctx, failure)
	if reportErr != nil {
		r.log.ErrorObj("failure reporting incomplete", "report_error", map[string]any{
			"failure_id": failure.ID,
			"delivered":  delivered,
			"error":      reportErr.Error(),
		})
	}
	r.log.InfoObj("failure reported", "failure", map[string]any{
		"id":        failure.ID,
		"method":    failure.Method,
		"uri":       failure.URI,
		"status":    failure.Status,
		"delivered": delivered,
	})
	return failure, true
}

// Close releases reporter connections and the journal store.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if err := r.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
	}
	return errors.Join(errs...)
}
