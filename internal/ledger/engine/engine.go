package engine

import (
	"context"
	"fmt"
	"math/bits"
	"sync"
)

// EscrowToken é o colaborador externo que custodia valores.
// Pull debita o apostador e credita a conta de custódia (transferFrom);
// Push debita a custódia e credita o destinatário (transfer).
// Ambos são atômicos: ou a transferência inteira acontece, ou nada acontece.
type EscrowToken interface {
	Pull(ctx context.Context, from string, amount int64) error
	Push(ctx context.Context, to string, amount int64) error
}

// EventSink recebe a notificação de cada mutação bem-sucedida do ledger,
// para consumo por indexadores externos. Não participa das invariantes
type EventSink interface {
	MatchCreated(ctx context.Context, m Match) error
	MatchUpdated(ctx context.Context, m Match) error
	BetPlaced(ctx context.Context, b Bet) error
	RewardClaimed(ctx context.Context, b Bet, payout int64) error
	BetRefunded(ctx context.Context, b Bet) error
}

// Ledger é o núcleo do sistema: registro de partidas, escrow de apostas e
// liquidação pari-mutuel. Todas as operações de escrita são serializadas sob
// um único mutex; cada operação executa por inteiro ou falha sem deixar
// estado parcial. As chamadas ao escrow são resolvidas dentro da própria
// operação (pull antes de qualquer mutação, push depois de todas)
type Ledger struct {
	mu      sync.RWMutex
	admin   string
	matches map[string]*Match
	bets    map[string]*Bet

	escrow EscrowToken
	events EventSink
}

// NewLedger cria o ledger com o admin inicial
func NewLedger(admin string, escrow EscrowToken, events EventSink) *Ledger {
	return &Ledger{
		admin:   admin,
		matches: make(map[string]*Match),
		bets:    make(map[string]*Bet),
		escrow:  escrow,
		events:  events,
	}
}

// Admin retorna a identidade do administrador corrente
func (l *Ledger) Admin() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.admin
}

// IsAdmin é o predicado usado como guarda de toda operação privilegiada
func (l *Ledger) IsAdmin(caller string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return caller == l.admin
}

// SetAdmin substitui o administrador por inteiro. Só o admin corrente pode chamar
func (l *Ledger) SetAdmin(caller, newAdmin string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.admin {
		return ErrUnauthorized
	}
	l.admin = newAdmin
	return nil
}

// CreateMatch registra uma nova partida com status PENDING e pools zerados.
// matchID é opaco e fornecido pelo chamador; cada id é criado no máximo uma vez
func (l *Ledger) CreateMatch(ctx context.Context, caller, matchID, name, competition string, scheduledAt int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.admin {
		return ErrUnauthorized
	}
	if _, ok := l.matches[matchID]; ok {
		return ErrMatchAlreadyExists
	}

	m := &Match{
		ID:          matchID,
		Name:        name,
		Competition: competition,
		ScheduledAt: scheduledAt,
		Status:      StatusPending,
		Exists:      true,
	}
	l.matches[matchID] = m

	_ = l.events.MatchCreated(ctx, *m)
	return nil
}

// UpdateMatch resolve (FINISHED + result) ou cancela (CANCELLED) uma partida.
// FINISHED e CANCELLED são terminais: uma partida resolvida não é reeditável
func (l *Ledger) UpdateMatch(ctx context.Context, caller, matchID string, status MatchStatus, result Outcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if caller != l.admin {
		return ErrUnauthorized
	}
	m, ok := l.matches[matchID]
	if !ok {
		return ErrMatchNotFound
	}
	if m.Status != StatusPending {
		return ErrMatchResolved
	}
	if status != StatusFinished && status != StatusCancelled {
		return ErrInvalidStatus
	}
	if status == StatusFinished && !result.Valid() {
		return ErrInvalidOutcome
	}

	m.Status = status
	m.Result = result

	_ = l.events.MatchUpdated(ctx, *m)
	return nil
}

// GetMatch é a projeção somente-leitura da partida. Para id desconhecido
// retorna o registro zero com Exists = false; o chamador deve checar Exists
func (l *Ledger) GetMatch(matchID string) Match {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if m, ok := l.matches[matchID]; ok {
		return *m
	}
	return Match{ID: matchID}
}

// GetOdds retorna os totais por outcome da partida, na ordem do enum,
// para o cliente derivar as odds implícitas
func (l *Ledger) GetOdds(matchID string) [NumOutcomes]int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if m, ok := l.matches[matchID]; ok {
		return m.Pools
	}
	return [NumOutcomes]int64{}
}

// CreateBet registra uma aposta e puxa a stake para o escrow na mesma operação.
// Se o pull falhar (saldo insuficiente, escrow fora do ar) nada é registrado
func (l *Ledger) CreateBet(ctx context.Context, caller, matchID, betID string, outcome Outcome, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.matches[matchID]
	if !ok {
		return ErrMatchNotFound
	}
	if m.Status != StatusPending {
		return ErrBetClosed
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if _, ok := l.bets[betID]; ok {
		return ErrDuplicateBet
	}
	if !outcome.Valid() {
		return ErrInvalidOutcome
	}

	// Pull antes de qualquer mutação: falha aqui aborta a operação inteira
	if err := l.escrow.Pull(ctx, caller, amount); err != nil {
		return fmt.Errorf("escrow pull: %w", err)
	}

	b := &Bet{
		ID:      betID,
		MatchID: matchID,
		Bettor:  caller,
		Outcome: outcome,
		Amount:  amount,
		Exists:  true,
	}
	l.bets[betID] = b
	m.Pools[outcome] += amount

	_ = l.events.BetPlaced(ctx, *b)
	return nil
}

// GetBet é a projeção somente-leitura da aposta (registro zero se ausente)
func (l *Ledger) GetBet(betID string) Bet {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if b, ok := l.bets[betID]; ok {
		return *b
	}
	return Bet{ID: betID}
}

// ClaimReward paga uma aposta vencedora de uma partida FINISHED:
// payout = floor(stake * totalPool / winningPool). O resto da divisão fica
// retido no escrow (política de arredondamento para baixo, auditável).
// A flag Claimed é gravada antes do push para bloquear double-claim reentrante
func (l *Ledger) ClaimReward(ctx context.Context, caller, betID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bets[betID]
	if !ok {
		return 0, ErrBetNotFound
	}
	if caller != b.Bettor {
		return 0, ErrUnauthorized
	}
	m := l.matches[b.MatchID]
	if m.Status != StatusFinished {
		return 0, ErrMatchNotFinished
	}
	if b.Claimed {
		return 0, ErrAlreadyClaimed
	}
	if b.Outcome != m.Result {
		return 0, ErrBetLost
	}

	// winningPool > 0: a própria aposta reclamante contribuiu para ele.
	// Produto em 128 bits: stake * totalPool estoura int64 com stakes
	// grandes; stake <= winningPool garante que o quociente cabe em int64
	winningPool := m.Pools[m.Result]
	hi, lo := bits.Mul64(uint64(b.Amount), uint64(m.TotalPool()))
	quo, _ := bits.Div64(hi, lo, uint64(winningPool))
	payout := int64(quo)

	b.Claimed = true
	if err := l.escrow.Push(ctx, caller, payout); err != nil {
		b.Claimed = false
		return 0, fmt.Errorf("escrow push: %w", err)
	}

	_ = l.events.RewardClaimed(ctx, *b, payout)
	return payout, nil
}

// RefundBet devolve a stake de uma aposta de partida CANCELLED.
// A stake sai do pool correspondente, mantendo a invariante de que os pools
// somam apenas apostas não-reembolsadas
func (l *Ledger) RefundBet(ctx context.Context, caller, betID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bets[betID]
	if !ok {
		return 0, ErrBetNotFound
	}
	if caller != b.Bettor {
		return 0, ErrUnauthorized
	}
	m := l.matches[b.MatchID]
	if m.Status != StatusCancelled {
		return 0, ErrMatchNotCancelled
	}
	if b.Refunded {
		return 0, ErrAlreadyRefunded
	}

	b.Refunded = true
	m.Pools[b.Outcome] -= b.Amount
	if err := l.escrow.Push(ctx, caller, b.Amount); err != nil {
		b.Refunded = false
		m.Pools[b.Outcome] += b.Amount
		return 0, fmt.Errorf("escrow push: %w", err)
	}

	_ = l.events.BetRefunded(ctx, *b)
	return b.Amount, nil
}
