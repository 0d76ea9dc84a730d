package model

import "github.com/shopspring/decimal"

// DisputeStatus is the lifecycle state of a deposit or withdrawal.
type DisputeStatus string

const (
	DisputeNormal      DisputeStatus = "normal"
	DisputeDisputed    DisputeStatus = "disputed"
	DisputeResolved    DisputeStatus = "resolved"
	DisputeChargedBack DisputeStatus = "charged_back"
)

// Terminal reports whether no further lifecycle records are accepted.
func (s DisputeStatus) Terminal() bool {
	return s == DisputeResolved || s == DisputeChargedBack
}

// CanTransition reports whether the lifecycle allows moving from s to next.
//
//	normal -> disputed -> resolved | charged_back
func (s DisputeStatus) CanTransition(next DisputeStatus) bool {
	switch s {
	case DisputeNormal:
		return next == DisputeDisputed
	case DisputeDisputed:
		return next == DisputeResolved || next == DisputeChargedBack
	default:
		return false
	}
}

// DisputeEntry captures an accepted deposit or withdrawal so later lifecycle
// records can act on its original amount.
type DisputeEntry struct {
	Tx     TxID
	Client ClientID
	Kind   Kind // deposit or withdrawal
	Amount decimal.Decimal
	Status DisputeStatus
}
