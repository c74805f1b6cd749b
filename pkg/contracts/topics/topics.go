package topics

const (
	// Ciclo de vida de partidas
	MatchCreated = "match_created"
	MatchUpdated = "match_updated"

	// Apostas e liquidação
	BetPlaced     = "bet_placed"
	RewardClaimed = "reward_claimed"
	BetRefunded   = "bet_refunded"

	// DLQ
	LedgerEventsDLQ = "ledger_events_dlq"
)
