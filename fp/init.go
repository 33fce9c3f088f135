package fp

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/foldkit/config"
	"github.com/kbukum/foldkit/fold"
	"github.com/kbukum/foldkit/logger"
	"github.com/kbukum/foldkit/observability"
	"github.com/kbukum/foldkit/pool"
)

// Init applies cfg to the process-wide engine state: the global logger and
// component loggers, the default pool limit, and the flattening defaults.
// When observability is enabled it installs OTLP tracer and meter providers.
// The returned function flushes and shuts the providers down.
func Init(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Init(cfg.Logging)
	logger.RegisterDefaults()
	pool.SetDefaultLimit(cfg.Engine.PoolConcurrency)
	fold.SetFlattenDefaults(cfg.Engine.FlattenConcurrency, cfg.Engine.FlattenRaceTimeout)

	log := logger.Get("fp")
	log.Info("foldkit initialized", logger.Fields(
		logger.FieldService, cfg.Name,
		"version", cfg.Version,
		"pool_concurrency", cfg.Engine.PoolConcurrency,
		"flatten_concurrency", cfg.Engine.FlattenConcurrency,
		"flatten_race_timeout", cfg.Engine.FlattenRaceTimeout.String(),
	))

	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			if err := shutdowns[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return stderrors.Join(errs...)
	}
	if !cfg.Observability.Enabled {
		return shutdown, nil
	}

	obs := cfg.Observability
	tp, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		Endpoint:       obs.Endpoint,
		Insecure:       obs.Insecure,
		SampleRate:     obs.SampleRate,
	})
	if err != nil {
		return nil, err
	}
	shutdowns = append(shutdowns, tp.Shutdown)

	mp, err := observability.InitMeter(ctx, observability.MeterConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		Endpoint:       obs.Endpoint,
		Insecure:       obs.Insecure,
		Interval:       obs.Interval,
	})
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	shutdowns = append(shutdowns, mp.Shutdown)
	return shutdown, nil
}
