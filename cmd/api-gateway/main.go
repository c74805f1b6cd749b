package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/radieske/parimutuel-ledger-poc/internal/shared/config"
	"github.com/radieske/parimutuel-ledger-poc/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// targets
	oddsfeedURL := os.Getenv("ODDSFEED_URL")
	if oddsfeedURL == "" {
		oddsfeedURL = "http://localhost:8080"
	}
	escrowURL := os.Getenv("ESCROW_URL")
	if escrowURL == "" {
		escrowURL = "http://localhost:8082"
	}
	ledgerURL := os.Getenv("LEDGER_URL")
	if ledgerURL == "" {
		ledgerURL = "http://localhost:8083"
	}
	oddsfeed := rp(oddsfeedURL)
	escrow := rp(escrowURL)
	ledger := rp(ledgerURL)

	mux := http.NewServeMux()

	// consultas de read model (ex.: /api/odds/* -> oddsfeed-service)
	mux.Handle("/api/odds/", http.StripPrefix("/api/odds", oddsfeed))

	// contas de custódia (ex.: /api/escrow/* -> escrow-service)
	mux.Handle("/api/escrow/", http.StripPrefix("/api/escrow", escrow))

	// operações do ledger (ex.: /api/ledger/* -> ledger-service)
	mux.Handle("/api/ledger/", http.StripPrefix("/api/ledger", ledger))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
