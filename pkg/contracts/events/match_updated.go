package events

// Evento publicado no tópico "match_updated" quando o admin resolve ou cancela
// uma partida. Result só é significativo quando Status = "FINISHED".
type MatchUpdated struct {
	MatchID  string `json:"match_id"`
	Status   string `json:"status"` // "FINISHED" | "CANCELLED"
	Result   string `json:"result"` // "HOME_WIN" | "DRAW" | "AWAY_WIN" | "OTHER"
	TsUnixMs int64  `json:"ts_unix_ms"`
}
