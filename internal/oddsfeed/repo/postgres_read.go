package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/radieske/parimutuel-ledger-poc/internal/oddsfeed/dto"
	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/events"
)

type ReadRepo struct {
	DB *sql.DB
}

func (r *ReadRepo) ListMatches(ctx context.Context) ([]dto.Match, error) {
	const q = `
		SELECT match_id, name, competition, scheduled_at, status, result
		FROM matches_read
		ORDER BY scheduled_at, match_id;
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Match
	for rows.Next() {
		var m dto.Match
		if err := rows.Scan(&m.MatchID, &m.Name, &m.Competition, &m.ScheduledAt, &m.Status, &m.Result); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ReadRepo) GetPoolsByMatch(ctx context.Context, matchID string) (events.PoolSnapshot, error) {
	const q = `
		SELECT home_pool, draw_pool, away_pool, other_pool, updated_at
		FROM pools_current
		WHERE match_id = $1;
	`
	var p events.Pools
	var updatedAt time.Time
	err := r.DB.QueryRowContext(ctx, q, matchID).Scan(&p.HomeWin, &p.Draw, &p.AwayWin, &p.Other, &updatedAt)
	if err != nil {
		return events.PoolSnapshot{}, err
	}
	return events.PoolSnapshot{
		MatchID:   matchID,
		Pools:     p,
		TotalPool: p.HomeWin + p.Draw + p.AwayWin + p.Other,
		UpdatedAt: updatedAt,
	}, nil
}

func (r *ReadRepo) ListBetsByMatch(ctx context.Context, matchID string) ([]dto.Bet, error) {
	const q = `
		SELECT bet_id, bettor, outcome, amount, claimed, refunded, payout
		FROM bets_read
		WHERE match_id = $1
		ORDER BY bet_id;
	`
	rows, err := r.DB.QueryContext(ctx, q, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Bet
	for rows.Next() {
		var b dto.Bet
		if err := rows.Scan(&b.BetID, &b.Bettor, &b.Outcome, &b.Amount, &b.Claimed, &b.Refunded, &b.Payout); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
