package events

// Evento publicado no tópico "bet_refunded" quando o apostador resgata a
// stake de uma partida cancelada.
type BetRefunded struct {
	BetID    string `json:"bet_id"`
	Bettor   string `json:"bettor"`
	Amount   int64  `json:"amount"`
	TsUnixMs int64  `json:"ts_unix_ms"`
}
