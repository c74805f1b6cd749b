package dto

// Match é a visão de leitura de uma partida no read model
type Match struct {
	MatchID     string `json:"matchId"`
	Name        string `json:"name"`
	Competition string `json:"competition"`
	ScheduledAt int64  `json:"scheduled_at"`
	Status      string `json:"status"`
	Result      string `json:"result,omitempty"`
}

// Bet é a visão de leitura de uma aposta materializada
type Bet struct {
	BetID    string `json:"betId"`
	Bettor   string `json:"bettor"`
	Outcome  string `json:"outcome"`
	Amount   int64  `json:"amount"`
	Claimed  bool   `json:"claimed"`
	Refunded bool   `json:"refunded"`
	Payout   int64  `json:"payout"`
}
