package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/parimutuel-ledger-poc/internal/oddsfeed/cache"
	"github.com/radieske/parimutuel-ledger-poc/internal/oddsfeed/repo"
	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/events"
)

// API expõe os endpoints REST de consulta do read model do ledger
// Utiliza um repositório de leitura (Postgres) e cache (Redis)
type API struct {
	ReadRepo *repo.ReadRepo // acesso ao banco de dados
	Cache    *cache.Cache   // cache de pools
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/matches", a.listMatches)             // Lista partidas registradas
	r.Get("/v1/matches/{id}/pools", a.getPools)     // Pools correntes de uma partida
	r.Get("/v1/matches/{id}/bets", a.listMatchBets) // Apostas materializadas de uma partida
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// listMatches retorna todas as partidas conhecidas pelo read model
func (a *API) listMatches(w http.ResponseWriter, r *http.Request) {
	ms, err := a.ReadRepo.ListMatches(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

// getPools retorna os pools de uma partida, preferencialmente do cache
func (a *API) getPools(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fromCache events.PoolSnapshot
	if ok, _ := a.Cache.GetPools(r.Context(), id, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	snap, err := a.ReadRepo.GetPoolsByMatch(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	_ = a.Cache.SetPools(r.Context(), id, snap, 30*time.Second) // salva no cache por 30s
	writeJSON(w, http.StatusOK, snap)
}

// listMatchBets retorna as apostas materializadas de uma partida
func (a *API) listMatchBets(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bets, err := a.ReadRepo.ListBetsByMatch(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, bets)
}
