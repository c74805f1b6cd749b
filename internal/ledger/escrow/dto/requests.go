package dto

type PullRequest struct {
	UserID      string `json:"userId"`
	Amount      int64  `json:"amount"`
	ExternalRef string `json:"external_ref,omitempty"`
}

type PushRequest struct {
	UserID      string `json:"userId"`
	Amount      int64  `json:"amount"`
	ExternalRef string `json:"external_ref,omitempty"`
}
