package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/dto"
	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/engine"
)

// Server expõe o ledger pari-mutuel por HTTP. Toda a lógica fica no engine;
// aqui só há parse, despacho e mapeamento de erro para status
type Server struct {
	log    *zap.Logger
	ledger *engine.Ledger

	// OnOp alimenta métricas por operação (op, sucesso). Opcional
	OnOp func(op string, ok bool)
}

func NewServer(log *zap.Logger, l *engine.Ledger) *Server {
	return &Server{log: log, ledger: l}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin", s.setAdmin)             // POST
	mux.HandleFunc("/matches", s.createMatch)        // POST
	mux.HandleFunc("/matches/update", s.updateMatch) // POST
	mux.HandleFunc("/matches/", s.matchSubtree)      // GET /matches/{id}, GET /matches/{id}/odds
	mux.HandleFunc("/bets", s.createBet)             // POST
	mux.HandleFunc("/bets/", s.betSubtree)           // GET /bets/{id}, POST /bets/{id}/claim|refund
	return mux
}

func (s *Server) setAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.SetAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.CallerID == "" || req.NewAdmin == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	err := s.ledger.SetAdmin(req.CallerID, req.NewAdmin)
	s.count("set_admin", err == nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AdminResponse{Admin: req.NewAdmin})
}

func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.CallerID == "" || req.MatchID == "" || req.Name == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	err := s.ledger.CreateMatch(r.Context(), req.CallerID, req.MatchID, req.Name, req.Competition, req.ScheduledAt)
	s.count("create_match", err == nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, matchResponse(s.ledger.GetMatch(req.MatchID)))
}

func (s *Server) updateMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.UpdateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	status, ok := engine.ParseStatus(req.Status)
	if req.CallerID == "" || req.MatchID == "" || !ok {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	// em CANCELLED o result é ignorado; em FINISHED ele é obrigatório
	result, ok := engine.ParseOutcome(req.Result)
	if status == engine.StatusFinished && !ok {
		http.Error(w, "invalid result", http.StatusBadRequest)
		return
	}

	err := s.ledger.UpdateMatch(r.Context(), req.CallerID, req.MatchID, status, result)
	s.count("update_match", err == nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matchResponse(s.ledger.GetMatch(req.MatchID)))
}

// matchSubtree despacha GET /matches/{id} e GET /matches/{id}/odds
func (s *Server) matchSubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/matches/")
	if rest == "" {
		http.Error(w, "matchId required", http.StatusBadRequest)
		return
	}

	if id, found := strings.CutSuffix(rest, "/odds"); found {
		pools := s.ledger.GetOdds(id)
		out := dto.OddsResponse{MatchID: id}
		for o, total := range pools {
			out.Pools = append(out.Pools, dto.PoolEntry{Outcome: engine.Outcome(o).String(), Total: total})
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	writeJSON(w, http.StatusOK, matchResponse(s.ledger.GetMatch(rest)))
}

func (s *Server) createBet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.CreateBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	outcome, ok := engine.ParseOutcome(req.Outcome)
	if req.CallerID == "" || req.MatchID == "" || req.BetID == "" || !ok {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	err := s.ledger.CreateBet(r.Context(), req.CallerID, req.MatchID, req.BetID, outcome, req.Amount)
	s.count("create_bet", err == nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, betResponse(s.ledger.GetBet(req.BetID)))
}

// betSubtree despacha GET /bets/{id}, POST /bets/{id}/claim e POST /bets/{id}/refund
func (s *Server) betSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/bets/")
	if rest == "" {
		http.Error(w, "betId required", http.StatusBadRequest)
		return
	}

	if id, found := strings.CutSuffix(rest, "/claim"); found {
		s.claim(w, r, id)
		return
	}
	if id, found := strings.CutSuffix(rest, "/refund"); found {
		s.refund(w, r, id)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, betResponse(s.ledger.GetBet(rest)))
}

func (s *Server) claim(w http.ResponseWriter, r *http.Request, betID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.CallerID == "" {
		http.Error(w, "callerId required", http.StatusBadRequest)
		return
	}

	payout, err := s.ledger.ClaimReward(r.Context(), req.CallerID, betID)
	s.count("claim_reward", err == nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ClaimResponse{BetID: betID, Payout: payout})
}

func (s *Server) refund(w http.ResponseWriter, r *http.Request, betID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.CallerID == "" {
		http.Error(w, "callerId required", http.StatusBadRequest)
		return
	}

	amount, err := s.ledger.RefundBet(r.Context(), req.CallerID, betID)
	s.count("refund_bet", err == nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.RefundResponse{BetID: betID, Amount: amount})
}

// writeError traduz a taxonomia do engine para status HTTP
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, engine.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, engine.ErrMatchNotFound), errors.Is(err, engine.ErrBetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, engine.ErrInvalidOutcome),
		errors.Is(err, engine.ErrInvalidStatus):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrMatchAlreadyExists),
		errors.Is(err, engine.ErrDuplicateBet),
		errors.Is(err, engine.ErrBetClosed),
		errors.Is(err, engine.ErrAlreadyClaimed),
		errors.Is(err, engine.ErrAlreadyRefunded),
		errors.Is(err, engine.ErrMatchResolved),
		errors.Is(err, engine.ErrMatchNotFinished),
		errors.Is(err, engine.ErrMatchNotCancelled),
		errors.Is(err, engine.ErrBetLost):
		status = http.StatusConflict
	default:
		// falha de escrow ou inesperada
		status = http.StatusBadGateway
		s.log.Error("ledger op failed", zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) count(op string, ok bool) {
	if s.OnOp != nil {
		s.OnOp(op, ok)
	}
}

func matchResponse(m engine.Match) dto.MatchResponse {
	out := dto.MatchResponse{
		MatchID:     m.ID,
		Name:        m.Name,
		Competition: m.Competition,
		ScheduledAt: m.ScheduledAt,
		Status:      m.Status.String(),
		Exists:      m.Exists,
		Pools:       m.Pools[:],
	}
	if m.Status == engine.StatusFinished {
		out.Result = m.Result.String()
	}
	return out
}

func betResponse(b engine.Bet) dto.BetResponse {
	return dto.BetResponse{
		BetID:    b.ID,
		MatchID:  b.MatchID,
		Bettor:   b.Bettor,
		Outcome:  b.Outcome.String(),
		Amount:   b.Amount,
		Exists:   b.Exists,
		Claimed:  b.Claimed,
		Refunded: b.Refunded,
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
