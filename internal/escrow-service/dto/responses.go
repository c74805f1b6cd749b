package dto

type AccountResponse struct {
	UserID    string `json:"userId"`
	AccountID string `json:"accountId"`
	Balance   int64  `json:"balance"`
}

type TransferResponse struct {
	UserID     string `json:"userId"`
	NewBalance int64  `json:"new_balance"`
}
