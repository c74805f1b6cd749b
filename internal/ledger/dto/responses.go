package dto

type MatchResponse struct {
	MatchID     string  `json:"matchId"`
	Name        string  `json:"name"`
	Competition string  `json:"competition"`
	ScheduledAt int64   `json:"scheduled_at"`
	Status      string  `json:"status"`
	Result      string  `json:"result,omitempty"`
	Exists      bool    `json:"exists"`
	Pools       []int64 `json:"pools"` // por outcome, na ordem do enum
}

type BetResponse struct {
	BetID    string `json:"betId"`
	MatchID  string `json:"matchId"`
	Bettor   string `json:"bettor"`
	Outcome  string `json:"outcome"`
	Amount   int64  `json:"amount"`
	Exists   bool   `json:"exists"`
	Claimed  bool   `json:"claimed"`
	Refunded bool   `json:"refunded"`
}

type PoolEntry struct {
	Outcome string `json:"outcome"`
	Total   int64  `json:"total"`
}

type OddsResponse struct {
	MatchID string      `json:"matchId"`
	Pools   []PoolEntry `json:"pools"`
}

type ClaimResponse struct {
	BetID  string `json:"betId"`
	Payout int64  `json:"payout"`
}

type RefundResponse struct {
	BetID  string `json:"betId"`
	Amount int64  `json:"amount"`
}

type AdminResponse struct {
	Admin string `json:"admin"`
}
