// cmd/engine-manager/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"moodbrew/internal/catalog"
	"moodbrew/internal/common/camunda"
	"moodbrew/internal/common/config"
	"moodbrew/internal/common/database"
	"moodbrew/internal/common/logger"
	"moodbrew/internal/common/observability"
	"moodbrew/internal/engine"
	"moodbrew/internal/transport/httpapi"

	cr "moodbrew/internal/workers/recommendation/cafe-ranking"
	fm "moodbrew/internal/workers/recommendation/flavor-match"
	mr "moodbrew/internal/workers/recommendation/mood-recommendation"
	rs "moodbrew/internal/workers/recommendation/review-summary"
	rsi "moodbrew/internal/workers/recommendation/review-summary-invalidate"
	tb "moodbrew/internal/workers/recommendation/trending-boost"
)

var taskTypes = []string{mr.TaskType, cr.TaskType, rs.TaskType, rsi.TaskType, tb.TaskType, fm.TaskType}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	configPath := flag.String("config", "", "config file; default searches ./configs")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting engine manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	eng, err := engine.New(cfg, log, engine.WithObservability(obs))
	if err != nil {
		zapLog.Fatal("engine init failed", zap.Error(err))
	}
	checkers := eng.Checkers()

	// --- Catalog (optional) ---
	var repo catalog.Repository
	if cfg.Database.Postgres.Configured() {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(context.Background())
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		repo = catalog.NewPostgresRepository(pg.DB)
		checkers = append(checkers, pg)
		zapLog.Info("Catalog connected")
	} else {
		zapLog.Info("No catalog configured, requests must carry full records")
	}

	// --- Zeebe workers (optional) ---
	var registry *camunda.Registry
	if anyEnabled(cfg) {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      10 * time.Second,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		checkers = append(checkers, zeebe)

		topology, err := zeebe.ExecuteWithRetry(context.Background(), func(ctx context.Context) (interface{}, error) {
			return zeebe.GetClient().NewTopologyCommand().Send(ctx)
		}, "topology")
		if err != nil {
			zapLog.Warn("Zeebe topology unavailable", zap.Error(err))
		} else if t, ok := topology.(*pb.TopologyResponse); ok {
			zapLog.Info("Zeebe connected",
				zap.Int32("clusterSize", t.GetClusterSize()),
				zap.String("gatewayVersion", t.GetGatewayVersion()),
			)
		}

		registry = camunda.NewRegistry(zeebe.GetClient(), zapLog).Instrument(obs)
		registerWorkers(registry, cfg, eng, repo, log)
		zapLog.Info("Workers registered", zap.Int("count", registry.Len()))
	}

	// --- HTTP API ---
	server := &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: httpapi.NewRouter(httpapi.NewHandler(eng, log,
			httpapi.WithCatalog(repo),
			httpapi.WithCheckers(checkers...),
		)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("HTTP API listening", zap.String("address", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP API failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP API", zap.Error(err))
	}
	if registry != nil {
		registry.Close()
	}
	if err := eng.Close(shutdownCtx); err != nil {
		zapLog.Error("Error closing engine", zap.Error(err))
	}

	zapLog.Info("Engine manager stopped gracefully")
}

func anyEnabled(cfg *config.Config) bool {
	for _, taskType := range taskTypes {
		if config.IsWorkerEnabled(cfg, taskType) {
			return true
		}
	}
	return false
}

func registerWorkers(registry *camunda.Registry, cfg *config.Config, eng *engine.Engine, repo catalog.Repository, log logger.Logger) {
	start := func(taskType string, handler func(worker.JobClient, entities.Job)) {
		registry.Start(taskType, config.GetWorkerConfig(cfg, taskType), handler)
	}

	wcfg := func(taskType string) config.WorkerConfig { return config.GetWorkerConfig(cfg, taskType) }

	start(mr.TaskType, mr.NewHandler(mr.LoadConfig(wcfg(mr.TaskType)), eng, repo, log).Handle)
	start(cr.TaskType, cr.NewHandler(cr.LoadConfig(wcfg(cr.TaskType)), eng, repo, log).Handle)
	start(rs.TaskType, rs.NewHandler(rs.LoadConfig(wcfg(rs.TaskType)), eng, repo, log).Handle)
	start(rsi.TaskType, rsi.NewHandler(rsi.LoadConfig(wcfg(rsi.TaskType)), eng, log).Handle)
	start(tb.TaskType, tb.NewHandler(tb.LoadConfig(wcfg(tb.TaskType)), eng, repo, log).Handle)
	start(fm.TaskType, fm.NewHandler(fm.LoadConfig(wcfg(fm.TaskType)), eng, repo, log).Handle)
}
