package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/engine"
	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/escrow"
	lhttp "github.com/radieske/parimutuel-ledger-poc/internal/ledger/http"
	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/producer"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/config"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/logger"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Publisher Kafka: um writer por tópico do ledger
	publ := producer.NewKafkaPublisher(cfg.KafkaBrokers)
	defer publ.Close()

	// Cliente HTTP do escrow-service (custódia das apostas)
	esc := escrow.New(cfg.EscrowURL)

	// Núcleo autoritativo: estado em memória, operações serializadas e atômicas
	ledger := engine.NewLedger(cfg.AdminID, esc, publ)

	// Métricas por operação do ledger
	ops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_ops_total",
		Help: "operações do ledger por resultado",
	}, []string{"op", "outcome"})
	prometheus.MustRegister(ops)

	api := lhttp.NewServer(log, ledger)
	api.OnOp = func(op string, ok bool) {
		outcome := "ok"
		if !ok {
			outcome = "error"
		}
		ops.WithLabelValues(op, outcome).Inc()
	}

	// Servidor HTTP público (API do ledger)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort, // ex: 8083
		Handler: api.Router(),
	}

	// Servidor de métricas e health check (estado é em memória; health é sempre ok)
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, nil) // ex: 9099
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	log.Info("api listening",
		zap.String("addr", apiSrv.Addr),
		zap.String("admin", cfg.AdminID),
		zap.String("escrow", cfg.EscrowURL),
	)
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
