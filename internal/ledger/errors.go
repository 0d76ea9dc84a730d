package ledger

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// Reason classifies why a record was not applied.
type Reason string

const (
	ReasonMalformedRecord            Reason = "malformed_record"
	ReasonDuplicateTransaction       Reason = "duplicate_transaction_id"
	ReasonUnknownTransaction         Reason = "unknown_transaction_reference"
	ReasonClientMismatch             Reason = "client_mismatch"
	ReasonInvalidLifecycleTransition Reason = "invalid_lifecycle_transition"
	ReasonInsufficientFunds          Reason = "insufficient_funds"
	ReasonAccountLocked              Reason = "account_locked"
	ReasonInvalidAmount              Reason = "invalid_amount"
	ReasonNotDisputable              Reason = "not_disputable"
	ReasonUnknownKind                Reason = "unknown_kind"
)

var (
	ErrMalformedRecord            = errors.New("ledger: malformed record")
	ErrDuplicateTransaction       = errors.New("ledger: duplicate transaction id")
	ErrUnknownTransaction         = errors.New("ledger: unknown transaction reference")
	ErrClientMismatch             = errors.New("ledger: client mismatch")
	ErrInvalidLifecycleTransition = errors.New("ledger: invalid lifecycle transition")
	ErrInsufficientFunds          = errors.New("ledger: insufficient funds")
	ErrAccountLocked              = errors.New("ledger: account locked")
	ErrInvalidAmount              = errors.New("ledger: invalid amount")
	ErrNotDisputable              = errors.New("ledger: transaction not disputable")
	ErrUnknownKind                = errors.New("ledger: unknown transaction kind")
)

var sentinels = map[Reason]error{
	ReasonMalformedRecord:            ErrMalformedRecord,
	ReasonDuplicateTransaction:       ErrDuplicateTransaction,
	ReasonUnknownTransaction:         ErrUnknownTransaction,
	ReasonClientMismatch:             ErrClientMismatch,
	ReasonInvalidLifecycleTransition: ErrInvalidLifecycleTransition,
	ReasonInsufficientFunds:          ErrInsufficientFunds,
	ReasonAccountLocked:              ErrAccountLocked,
	ReasonInvalidAmount:              ErrInvalidAmount,
	ReasonNotDisputable:              ErrNotDisputable,
	ReasonUnknownKind:                ErrUnknownKind,
}

// Err returns the sentinel error for the reason, or nil if unknown.
func (r Reason) Err() error {
	return sentinels[r]
}

// RejectionError reports a record the engine refused. The engine state is
// unchanged whenever one is returned.
type RejectionError struct {
	Reason Reason
	Kind   model.Kind
	Client model.ClientID
	Tx     model.TxID
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s rejected (client %d, tx %d): %s", e.Kind, e.Client, e.Tx, e.Reason)
	}
	return fmt.Sprintf("%s rejected (client %d, tx %d): %s: %s", e.Kind, e.Client, e.Tx, e.Reason, e.Detail)
}

// Unwrap allows errors.Is against the reason's sentinel.
func (e *RejectionError) Unwrap() error {
	return e.Reason.Err()
}

// ReasonOf extracts the rejection reason from err.
func ReasonOf(err error) (Reason, bool) {
	var re *RejectionError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	return "", false
}

func reject(rec model.TransactionRecord, reason Reason, format string, args ...any) *RejectionError {
	return &RejectionError{
		Reason: reason,
		Kind:   rec.Kind,
		Client: rec.Client,
		Tx:     rec.Tx,
		Detail: fmt.Sprintf(format, args...),
	}
}
