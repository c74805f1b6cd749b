package engine

import "errors"

// Taxonomia de falhas do ledger. Toda operação falha por inteiro com um
// destes motivos (ou com um erro de escrow embrulhado) e sem mutação de estado
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrMatchAlreadyExists = errors.New("match already exists")
	ErrMatchNotFound      = errors.New("match not found")
	ErrBetClosed          = errors.New("bet is closed")
	ErrInvalidAmount      = errors.New("bet amount must be greater than zero")
	ErrInvalidOutcome     = errors.New("invalid outcome")
	ErrInvalidStatus      = errors.New("invalid status transition")
	ErrDuplicateBet       = errors.New("bet already exists")
	ErrBetNotFound        = errors.New("bet not found")
	ErrAlreadyClaimed     = errors.New("bet already claimed")
	ErrMatchNotFinished   = errors.New("match not finished")
	ErrBetLost            = errors.New("bet lost")
	ErrMatchResolved      = errors.New("match already resolved")
	ErrMatchNotCancelled  = errors.New("match not cancelled")
	ErrAlreadyRefunded    = errors.New("bet already refunded")
)
