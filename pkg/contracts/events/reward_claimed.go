package events

// Evento publicado no tópico "reward_claimed" após o pagamento de uma aposta
// vencedora. Payout já é o valor líquido transferido (arredondado para baixo).
type RewardClaimed struct {
	BetID    string `json:"bet_id"`
	Claimant string `json:"claimant"`
	Payout   int64  `json:"payout"`
	TsUnixMs int64  `json:"ts_unix_ms"`
}
