package dto

type DepositRequest struct {
	UserID      string `json:"userId"`
	Amount      int64  `json:"amount"`
	ExternalRef string `json:"external_ref,omitempty"` // opcional p/ auditoria
}

type PullRequest struct {
	UserID      string `json:"userId"`
	Amount      int64  `json:"amount"`
	ExternalRef string `json:"external_ref,omitempty"` // ex: betId
}

type PushRequest struct {
	UserID      string `json:"userId"`
	Amount      int64  `json:"amount"`
	ExternalRef string `json:"external_ref,omitempty"`
}
