package events

import "time"

// Pools é o total apostado por outcome de uma partida
type Pools struct {
	HomeWin int64 `json:"home_win"`
	Draw    int64 `json:"draw"`
	AwayWin int64 `json:"away_win"`
	Other   int64 `json:"other"`
}

// PoolSnapshot é o estado corrente dos pools de uma partida, derivado pelo
// pool-projector a partir dos eventos do ledger. Vai para o cache Redis e
// para o broadcast WebSocket
type PoolSnapshot struct {
	MatchID   string    `json:"match_id"`
	Pools     Pools     `json:"pools"`
	TotalPool int64     `json:"total_pool"`
	UpdatedAt time.Time `json:"updated_at"`
}
