package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/parimutuel-ledger-poc/internal/escrow-service/dto"
	"github.com/radieske/parimutuel-ledger-poc/internal/escrow-service/repo"
)

// Repo define a interface de operações de escrow usadas pelo handler HTTP
type Repo interface {
	GetOrCreateAccount(ctx context.Context, userID string) (accountID string, balance int64, err error)
	Deposit(ctx context.Context, userID string, amount int64, externalRef string) (accountID string, newBalance int64, err error)
	Pull(ctx context.Context, userID string, amount int64, externalRef string) (newBalance int64, err error)
	Push(ctx context.Context, userID string, amount int64, externalRef string) (newBalance int64, err error)
}

// Server expõe endpoints HTTP do token de escrow
type Server struct {
	log  *zap.Logger
	repo Repo
}

func NewServer(log *zap.Logger, repo Repo) *Server { return &Server{log: log, repo: repo} }

// Router retorna o mux HTTP com as rotas da API de escrow
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/accounts", s.getAccount)      // GET ?userId=...
	mux.HandleFunc("/accounts/deposit", s.deposit) // POST
	mux.HandleFunc("/escrow/pull", s.pull)         // POST
	mux.HandleFunc("/escrow/push", s.push)         // POST
	return mux
}

// getAccount retorna (ou cria) a conta e saldo do usuário
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	accountID, bal, err := s.repo.GetOrCreateAccount(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.AccountResponse{UserID: userID, AccountID: accountID, Balance: bal})
}

// deposit credita a conta do usuário
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Amount <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	_, bal, err := s.repo.Deposit(r.Context(), req.UserID, req.Amount, req.ExternalRef)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.TransferResponse{UserID: req.UserID, NewBalance: bal})
}

// pull debita o usuário e credita a custódia (transferFrom)
func (s *Server) pull(w http.ResponseWriter, r *http.Request) {
	var req dto.PullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Amount <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	bal, err := s.repo.Pull(r.Context(), req.UserID, req.Amount, req.ExternalRef)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	writeJSON(w, dto.TransferResponse{UserID: req.UserID, NewBalance: bal})
}

// push paga o usuário a partir da custódia (transfer)
func (s *Server) push(w http.ResponseWriter, r *http.Request) {
	var req dto.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Amount <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	bal, err := s.repo.Push(r.Context(), req.UserID, req.Amount, req.ExternalRef)
	if err != nil {
		s.writeRepoError(w, err)
		return
	}
	writeJSON(w, dto.TransferResponse{UserID: req.UserID, NewBalance: bal})
}

func (s *Server) writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		http.Error(w, "account not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrInsufficientFunds):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		s.log.Error("escrow op failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
