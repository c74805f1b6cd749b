package events

type BetPlaced struct {
	MatchID  string `json:"match_id"`
	BetID    string `json:"bet_id"`
	Bettor   string `json:"bettor"`
	Outcome  string `json:"outcome"`
	Amount   int64  `json:"amount"` // unidades inteiras do token de escrow
	TsUnixMs int64  `json:"ts_unix_ms"`
}
