package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vogiaan1904/playgram-matchroom/config"
	httpDelivery "github.com/vogiaan1904/playgram-matchroom/internal/delivery/http"
	"github.com/vogiaan1904/playgram-matchroom/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/playgram-matchroom/internal/delivery/ws"
	"github.com/vogiaan1904/playgram-matchroom/internal/events"
	"github.com/vogiaan1904/playgram-matchroom/internal/infra/redis"
	"github.com/vogiaan1904/playgram-matchroom/internal/match"
	"github.com/vogiaan1904/playgram-matchroom/internal/queue"
	repo "github.com/vogiaan1904/playgram-matchroom/internal/repository/redis"
	"github.com/vogiaan1904/playgram-matchroom/internal/service"
	pkgKafka "github.com/vogiaan1904/playgram-matchroom/pkg/kafka"
	pkgLog "github.com/vogiaan1904/playgram-matchroom/pkg/logger"
	"github.com/vogiaan1904/playgram-matchroom/pkg/token"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{
		Level:    cfg.Log.Level,
		Mode:     cfg.Log.Mode,
		Encoding: cfg.Log.Encoding,
	})

	redisCli, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		l.Fatalf(ctx, "Failed to connect to Redis: %v", err)
	}
	defer redis.Disconnect(redisCli)

	presenceRepo := repo.NewRedisPresenceRepository(redisCli, cfg.Redis.PresenceTTL, l)

	// Kafka producer. Lifecycle events stay on the in-process bus when disabled.
	var prod producer.Producer
	if cfg.Kafka.Enabled {
		kafkaSyncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			RetryMax:     cfg.Kafka.ProducerRetryMax,
			RequiredAcks: cfg.Kafka.ProducerRequiredAcks,
		})
		if err != nil {
			l.Fatalf(ctx, "Failed to initialize Kafka producer: %v", err)
		}

		prod = producer.NewProducer(kafkaSyncProd, l)
		defer prod.Close()
	}

	signer := token.NewSigner(cfg.JWT)
	bus := events.NewBus(l)

	registry := match.NewRegistry(bus, prod, signer, cfg.Matchroom, l)
	qm := queue.NewManager(registry, cfg.Matchroom, l)

	svc := service.NewMatchroomService(qm, registry, l)

	bridge := ws.NewBridge(bus, svc, presenceRepo, l)
	h := httpDelivery.NewHandler(svc, l)
	router := httpDelivery.NewRouter(h, bridge.ServeWS)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		l.Infof(gCtx, "HTTP server is listening on port: %d", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return registry.RunTicker(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()

		l.Info(gCtx, "Server shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Errorf(ctx, "Server stopped with error: %v", err)
		os.Exit(1)
	}

	l.Info(ctx, "Server exited")
}
