package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	ofcache "github.com/radieske/parimutuel-ledger-poc/internal/oddsfeed/cache"
	ofhttp "github.com/radieske/parimutuel-ledger-poc/internal/oddsfeed/http"
	ofrepo "github.com/radieske/parimutuel-ledger-poc/internal/oddsfeed/repo"
	"github.com/radieske/parimutuel-ledger-poc/internal/oddsfeed/ws"
	sharedcache "github.com/radieske/parimutuel-ledger-poc/internal/shared/cache"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/config"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/db"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Conexões com o read model (Postgres) e o cache de pools (Redis)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	api := &ofhttp.API{
		ReadRepo: &ofrepo.ReadRepo{DB: pg},
		Cache:    ofcache.New(redisClient),
	}

	// Hub WebSocket alimentado pelo Redis Pub/Sub do pool-projector
	hub := ws.NewHub(func(r *http.Request) bool { return true }) // POC: aceita qualquer origem
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws.StartRedisSubscriber(ctx, log, redisClient, hub)

	root := chi.NewRouter()
	root.Mount("/", api.Router())
	root.Get("/ws", hub.HandleWS)

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8080
		Handler: root,
	}

	// Servidor de métricas e health check
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.PingContext(ctx); err != nil {
			http.Error(w, "pg", http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			http.Error(w, "redis", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: metricsMux} // ex: 9095

	go func() {
		log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("metrics srv", zap.Error(err))
		}
	}()

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
