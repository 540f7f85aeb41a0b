package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-freight/internal/config"
	"github.com/noah-isme/backend-freight/internal/export"
	"github.com/noah-isme/backend-freight/internal/lock"
	"github.com/noah-isme/backend-freight/internal/obs"
	"github.com/noah-isme/backend-freight/internal/rates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := obs.NewLogger(cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse database url")
	}
	poolCfg.ConnConfig.Tracer = obs.PGXTracer{}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "freight-worker"
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse redis url")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		log.Warn().Err(err).Msg("instrument redis tracing")
	}

	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	ratesSvc := &rates.Service{
		Store:    &rates.Repo{Pool: pool},
		Cache:    &rates.Cache{R: rdb, TTL: cfg.RatesCacheTTL},
		Provider: &rates.HTTPProvider{URL: cfg.RatesProviderURL},
		Locker:   lock.Locker{R: rdb},
		LockTTL:  cfg.RatesLockTTL,
		Log:      log,
	}
	exportSvc := &export.Service{
		Store:    &export.Repo{Pool: pool},
		Validate: validator.New(),
		Locker:   lock.Locker{R: rdb},
		LockTTL:  cfg.RatesLockTTL,
		Log:      log,
	}

	asynqOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse redis url for asynq")
	}

	srv := asynq.NewServer(asynqOpt, asynq.Config{
		Concurrency:     cfg.WorkerConcurrency,
		ShutdownTimeout: 30 * time.Second,
		Logger:          asynqLogger{log},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(rates.TaskRefresh, ratesSvc.HandleRefresh)
	mux.HandleFunc(export.TaskRegister, exportSvc.HandleRegister)

	scheduler := asynq.NewScheduler(asynqOpt, &asynq.SchedulerOpts{
		Logger:   asynqLogger{log},
		Location: time.UTC,
	})
	if cfg.RatesProviderURL != "" {
		if _, err := scheduler.Register(cfg.RatesRefreshCron, rates.NewRefreshTask()); err != nil {
			log.Fatal().Err(err).Msg("register rates refresh schedule")
		}
	} else {
		log.Warn().Msg("RATES_PROVIDER_URL not set, periodic refresh disabled")
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker started")
		errCh <- srv.Run(mux)
	}()
	go func() {
		errCh <- scheduler.Run()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("worker stopped")
		}
	}
	scheduler.Shutdown()
	srv.Shutdown()
}

// asynqLogger adapts zerolog to asynq's logger interface.
type asynqLogger struct {
	log zerolog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.log.Debug().Msgf("%v", args) }
func (l asynqLogger) Info(args ...any)  { l.log.Info().Msgf("%v", args) }
func (l asynqLogger) Warn(args ...any)  { l.log.Warn().Msgf("%v", args) }
func (l asynqLogger) Error(args ...any) { l.log.Error().Msgf("%v", args) }
func (l asynqLogger) Fatal(args ...any) { l.log.Fatal().Msgf("%v", args) }
