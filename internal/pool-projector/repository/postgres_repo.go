package repository

import (
	"context"
	"database/sql"

	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/events"
)

// PostgresRepo mantém o read model do ledger em Postgres: partidas, apostas
// e pools correntes, alimentados pelos eventos Kafka. É derivado e
// eventualmente consistente; o estado autoritativo vive no ledger-service
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// UpsertMatch materializa uma partida recém-criada (status PENDING)
func (r *PostgresRepo) UpsertMatch(ctx context.Context, e events.MatchCreated) error {
	const q = `
		INSERT INTO matches_read
		  (match_id, name, competition, scheduled_at, status, result, updated_at)
		VALUES
		  ($1,$2,$3,$4,'PENDING','',NOW())
		ON CONFLICT (match_id) DO UPDATE SET
		  name         = EXCLUDED.name,
		  competition  = EXCLUDED.competition,
		  scheduled_at = EXCLUDED.scheduled_at,
		  updated_at   = NOW()
	`
	_, err := r.DB.ExecContext(ctx, q, e.MatchID, e.Name, e.Competition, e.ScheduledAt)
	return err
}

// UpdateMatchStatus aplica a resolução/cancelamento vindos do admin
func (r *PostgresRepo) UpdateMatchStatus(ctx context.Context, e events.MatchUpdated) error {
	const q = `
		UPDATE matches_read
		SET status=$1, result=$2, updated_at=NOW()
		WHERE match_id=$3
	`
	_, err := r.DB.ExecContext(ctx, q, e.Status, e.Result, e.MatchID)
	return err
}

// InsertBet materializa a aposta e soma a stake ao pool do outcome
func (r *PostgresRepo) InsertBet(ctx context.Context, e events.BetPlaced) error {
	const q = `
		INSERT INTO bets_read
		  (bet_id, match_id, bettor, outcome, amount, claimed, refunded, payout, updated_at)
		VALUES
		  ($1,$2,$3,$4,$5,false,false,0,NOW())
		ON CONFLICT (bet_id) DO NOTHING
	`
	res, err := r.DB.ExecContext(ctx, q, e.BetID, e.MatchID, e.Bettor, e.Outcome, e.Amount)
	if err != nil {
		return err
	}
	// evento reentregue: não soma a stake duas vezes
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	return r.addToPool(ctx, e.MatchID, e.Outcome, e.Amount)
}

// MarkClaimed grava o pagamento de uma aposta vencedora
func (r *PostgresRepo) MarkClaimed(ctx context.Context, e events.RewardClaimed) error {
	const q = `
		UPDATE bets_read
		SET claimed=true, payout=$1, updated_at=NOW()
		WHERE bet_id=$2
	`
	_, err := r.DB.ExecContext(ctx, q, e.Payout, e.BetID)
	return err
}

// MarkRefunded grava o reembolso e retira a stake do pool
func (r *PostgresRepo) MarkRefunded(ctx context.Context, e events.BetRefunded) error {
	const q = `
		UPDATE bets_read
		SET refunded=true, updated_at=NOW()
		WHERE bet_id=$1 AND refunded=false
		RETURNING match_id, outcome
	`
	var matchID, outcome string
	err := r.DB.QueryRowContext(ctx, q, e.BetID).Scan(&matchID, &outcome)
	if err == sql.ErrNoRows {
		return nil // reentrega
	}
	if err != nil {
		return err
	}
	return r.addToPool(ctx, matchID, outcome, -e.Amount)
}

// GetPools lê o estado corrente dos pools de uma partida
func (r *PostgresRepo) GetPools(ctx context.Context, matchID string) (events.Pools, error) {
	const q = `
		SELECT home_pool, draw_pool, away_pool, other_pool
		FROM pools_current
		WHERE match_id=$1
	`
	var p events.Pools
	err := r.DB.QueryRowContext(ctx, q, matchID).Scan(&p.HomeWin, &p.Draw, &p.AwayWin, &p.Other)
	if err == sql.ErrNoRows {
		return events.Pools{}, nil
	}
	return p, err
}

// MatchIDForBet resolve a partida dona de uma aposta já materializada
func (r *PostgresRepo) MatchIDForBet(ctx context.Context, betID string) (string, error) {
	var matchID string
	err := r.DB.QueryRowContext(ctx, `SELECT match_id FROM bets_read WHERE bet_id=$1`, betID).Scan(&matchID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return matchID, err
}

// addToPool incrementa (delta pode ser negativo) o pool do outcome via upsert
func (r *PostgresRepo) addToPool(ctx context.Context, matchID, outcome string, delta int64) error {
	col, ok := poolColumn(outcome)
	if !ok {
		return nil // outcome desconhecido: ignora em vez de envenenar o consumo
	}
	q := `
		INSERT INTO pools_current (match_id, home_pool, draw_pool, away_pool, other_pool, updated_at)
		VALUES ($1, 0, 0, 0, 0, NOW())
		ON CONFLICT (match_id) DO NOTHING
	`
	if _, err := r.DB.ExecContext(ctx, q, matchID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE pools_current SET `+col+` = `+col+` + $1, updated_at = NOW() WHERE match_id=$2`,
		delta, matchID)
	return err
}

// poolColumn traduz o outcome do evento para a coluna do read model.
// Nunca interpola entrada externa: só os quatro nomes fixos passam
func poolColumn(outcome string) (string, bool) {
	switch outcome {
	case "HOME_WIN":
		return "home_pool", true
	case "DRAW":
		return "draw_pool", true
	case "AWAY_WIN":
		return "away_pool", true
	case "OTHER":
		return "other_pool", true
	}
	return "", false
}
