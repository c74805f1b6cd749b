package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// MatchID: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type    string `json:"type"`    // subscribe | unsubscribe | ping
	MatchID string `json:"matchId"` // requerido em subscribe/unsubscribe
}

// PoolUpdate representa uma atualização de pools enviada para clientes WebSocket
type PoolUpdate struct {
	MatchID string      `json:"matchId"`
	Payload interface{} `json:"payload"`
}
