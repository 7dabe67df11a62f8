package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/charfolio/authgate"
	"github.com/charfolio/authgate/httpapi"
	"github.com/charfolio/authgate/internal/config"
	"github.com/charfolio/authgate/internal/obs"
	"github.com/charfolio/authgate/internal/pgstore"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := obs.NewLogger(obs.LogConfig{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		App:    cfg.App.Name,
		Env:    cfg.App.Env,
		Ver:    cfg.App.Version,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("gateway failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	tracing, err := obs.SetupOTel(ctx, obs.OTELConfig{
		Enable:      cfg.OTEL.Enable,
		Endpoint:    cfg.OTEL.OTLPEndpoint,
		ServiceName: cfg.OTEL.ServiceName,
		SampleRatio: cfg.OTEL.SampleRatio,
	})
	if err != nil {
		return err
	}
	defer func() { _ = tracing.Shutdown(context.Background()) }()

	db, err := pgstore.New(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = rdb.Close() }()

	engineCfg := cfg.EngineConfig()
	if err := loadSigningKeys(cfg, &engineCfg); err != nil {
		return err
	}

	engine, err := authgate.New().
		WithConfig(engineCfg).
		WithRedis(rdb).
		WithUserDirectory(pgstore.NewUserRepo(db)).
		WithTwoFactorStore(pgstore.NewTwoFactorRepo(db)).
		WithAuditSink(authgate.NewJSONWriterSink(os.Stdout)).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	prometheus.MustRegister(obs.NewEngineCollector(engine))
	stopMetrics := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, db.Ping, logger)
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = stopMetrics(shCtx)
	}()

	api := httpapi.New(engine, httpapi.CookieConfig{
		Secure:    cfg.Cookies.Secure,
		CrossSite: cfg.Cookies.CrossSite,
		Domain:    cfg.Cookies.Domain,
		Path:      cfg.Cookies.Path,
	}, logger)

	var handler http.Handler = api.Routes()
	if tracing.Enabled {
		handler = otelhttp.NewHandler(handler, "authgate")
	}

	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening",
			zap.String("addr", cfg.Server.HTTPAddr),
			zap.Bool("cookies_secure", cfg.Cookies.Secure),
			zap.Bool("cookies_cross_site", cfg.Cookies.CrossSite),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	return srv.Shutdown(shCtx)
}

// loadSigningKeys fills in the engine key material. HS256 uses jwt.secret
// directly; ed25519 reads PEM key files from disk.
func loadSigningKeys(cfg *config.Config, engineCfg *authgate.Config) error {
	if cfg.JWT.PrivateKeyFile == "" {
		return nil
	}
	priv, err := os.ReadFile(cfg.JWT.PrivateKeyFile)
	if err != nil {
		return err
	}
	engineCfg.JWT.PrivateKey = priv
	if cfg.JWT.PublicKeyFile != "" {
		pub, err := os.ReadFile(cfg.JWT.PublicKeyFile)
		if err != nil {
			return err
		}
		engineCfg.JWT.PublicKey = pub
	}
	return nil
}
