package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/events"

	"github.com/radieske/parimutuel-ledger-poc/internal/pool-projector/cache"
	"github.com/radieske/parimutuel-ledger-poc/internal/pool-projector/consumer"
	"github.com/radieske/parimutuel-ledger-poc/internal/pool-projector/pubsub"
	"github.com/radieske/parimutuel-ledger-poc/internal/pool-projector/repository"
	sharedcache "github.com/radieske/parimutuel-ledger-poc/internal/shared/cache"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/config"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/db"
	sharedkafka "github.com/radieske/parimutuel-ledger-poc/internal/shared/kafka"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres (read model) e Redis (cache + pub/sub)
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

	ttl := 60 * time.Second
	rcache := cache.NewRedisCache(redisClient, ttl)
	repo := repository.NewPostgresRepo(pg)

	// Consumer group único lendo todos os tópicos do ledger
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: "pool-projector",
		GroupTopics: []string{
			cfg.TopicMatchCreated,
			cfg.TopicMatchUpdated,
			cfg.TopicBetPlaced,
			cfg.TopicRewardClaimed,
			cfg.TopicBetRefunded,
		},
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	// Fila morta para eventos que não puderam ser aplicados
	dlq := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicLedgerDLQ)
	defer dlq.Close()

	// Métricas Prometheus para monitoramento da projeção
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pool_proj_messages_consumed_total", Help: "mensagens consumidas por tópico"}, []string{"topic"})
	persist := prometheus.NewCounter(prometheus.CounterOpts{Name: "pool_proj_db_writes_total", Help: "eventos aplicados no read model"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "pool_proj_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, persist, errorsBy)

	// Broadcaster para publicar snapshots de pool no Redis Pub/Sub (usado pelo oddsfeed/ws)
	broadcaster := pubsub.NewRedisBroadcaster(redisClient)

	// Instancia o projector, conectando callbacks de métricas e broadcast
	proj := &consumer.Projector{
		Log:        log,
		Reader:     reader,
		Repo:       repo,
		Cache:      rcache,
		DLQ:        dlq,
		OnConsumed: func(topic string) { consumed.WithLabelValues(topic).Inc() },
		OnPersist:  func() { persist.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após materializar uma mudança de pool, envia o snapshot para o WebSocket
		OnAfterApply: func(s events.PoolSnapshot) {
			msg := pubsub.WSUpdate{MatchID: s.MatchID, Payload: s}
			b, _ := json.Marshal(msg)

			ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := broadcaster.Publish(ctx, pubsub.ChannelPoolBroadcast, b); err != nil {
				log.Warn("ws broadcast publish failed", zap.Error(err))
			}
		},
	}

	// Servidor HTTP para métricas e health check
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
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
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("pool-projector started")
	if err := proj.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("projector stopped with error", zap.Error(err))
	}
	log.Info("pool-projector stopped")
}
