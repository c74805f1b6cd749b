package events

// Evento publicado no tópico "match_created" após o registro de uma partida
type MatchCreated struct {
	MatchID     string `json:"match_id"`
	Name        string `json:"name"`
	Competition string `json:"competition"`
	ScheduledAt int64  `json:"scheduled_at"` // unix seconds
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
