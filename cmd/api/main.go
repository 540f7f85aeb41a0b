package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	limiterstdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-freight/internal/agent"
	"github.com/noah-isme/backend-freight/internal/common"
	"github.com/noah-isme/backend-freight/internal/config"
	"github.com/noah-isme/backend-freight/internal/customer"
	"github.com/noah-isme/backend-freight/internal/export"
	"github.com/noah-isme/backend-freight/internal/health"
	"github.com/noah-isme/backend-freight/internal/lock"
	"github.com/noah-isme/backend-freight/internal/obs"
	"github.com/noah-isme/backend-freight/internal/quotation"
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

	if cfg.OtelEndpoint != "" {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "freight-api",
			Endpoint:      cfg.OtelEndpoint,
			Exporter:      cfg.OtelExporter,
			SamplingRatio: cfg.OtelSamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("init tracer")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("tracer shutdown")
			}
		}()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse database url")
	}
	poolCfg.ConnConfig.Tracer = obs.PGXTracer{}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "freight-api"
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

	asynqOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse redis url for asynq")
	}
	queue := asynq.NewClient(asynqOpt)
	defer queue.Close()

	metrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, nil, nil)
	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	validate := validator.New()

	quotationH := &quotation.Handler{
		Svc:            &quotation.Service{Store: &quotation.Repo{Pool: pool}, Validate: validate},
		DefaultPerPage: cfg.QuotationDefaultPerPage,
		MaxPerPage:     cfg.QuotationMaxPerPage,
	}
	customerH := &customer.Handler{
		Svc:            &customer.Service{Store: &customer.Repo{Pool: pool}, Validate: validate},
		DefaultPerPage: cfg.QuotationDefaultPerPage,
		MaxPerPage:     cfg.QuotationMaxPerPage,
	}
	agentH := &agent.Handler{
		Svc:            &agent.Service{Store: &agent.Repo{Pool: pool}, Validate: validate},
		DefaultPerPage: cfg.QuotationDefaultPerPage,
		MaxPerPage:     cfg.QuotationMaxPerPage,
	}
	ratesH := &rates.Handler{
		Svc: &rates.Service{
			Store: &rates.Repo{Pool: pool},
			Cache: &rates.Cache{R: rdb, TTL: cfg.RatesCacheTTL},
			Log:   log,
		},
	}
	exportH := &export.Handler{
		Svc: &export.Service{
			Store:    &export.Repo{Pool: pool},
			Validate: validate,
			Locker:   lock.Locker{R: rdb},
			LockTTL:  cfg.RatesLockTTL,
			Log:      log,
		},
		Queue:          queue,
		DefaultPerPage: cfg.QuotationDefaultPerPage,
		MaxPerPage:     cfg.QuotationMaxPerPage,
	}

	rateLimit, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("parse rate limit")
	}
	limiterStore, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "ratelimit"})
	if err != nil {
		log.Fatal().Err(err).Msg("init rate limit store")
	}
	rateLimiter := limiterstdlib.NewMiddleware(limiter.New(limiterStore, rateLimit))

	idem := common.Idem{R: rdb, TTL: cfg.IdempotencyTTL}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.TracingMiddleware)
	r.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: log}.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	healthH := health.Handler{Checker: checker{pool: pool, rdb: rdb}}
	r.Get("/healthz", healthH.Live)
	r.Get("/readyz", healthH.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if cfg.AppEnv == "development" {
		r.Mount("/debug", middleware.Profiler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(rateLimiter.Handler)
		r.Route("/quotations", func(r chi.Router) {
			r.Use(idem.Middleware)
			quotationH.Routes(r)
		})
		r.Route("/customers", customerH.Routes)
		r.Route("/agents", agentH.Routes)
		r.Route("/rates", ratesH.Routes)
		r.Route("/exports", exportH.Routes)
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           otelhttp.NewHandler(r, "freight-api"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.AppEnv).Msg("api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// checker probes the API's hard dependencies for the readiness endpoint.
type checker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

func (c checker) PingDB(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.pool.Ping(ctx)
}

func (c checker) PingRedis(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}
