package dto

// A identidade do chamador viaja no corpo (callerId), como o userId dos
// demais serviços; matchId/betId são opacos e fornecidos pelo chamador

type SetAdminRequest struct {
	CallerID string `json:"callerId"`
	NewAdmin string `json:"newAdmin"`
}

type CreateMatchRequest struct {
	CallerID    string `json:"callerId"`
	MatchID     string `json:"matchId"`
	Name        string `json:"name"`
	Competition string `json:"competition"`
	ScheduledAt int64  `json:"scheduled_at"` // unix seconds
}

type UpdateMatchRequest struct {
	CallerID string `json:"callerId"`
	MatchID  string `json:"matchId"`
	Status   string `json:"status"` // "FINISHED" | "CANCELLED"
	Result   string `json:"result"` // significativo apenas em FINISHED
}

type CreateBetRequest struct {
	CallerID string `json:"callerId"`
	MatchID  string `json:"matchId"`
	BetID    string `json:"betId"`
	Outcome  string `json:"outcome"`
	Amount   int64  `json:"amount"`
}

type ClaimRequest struct {
	CallerID string `json:"callerId"`
}

type RefundRequest struct {
	CallerID string `json:"callerId"`
}
