package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a deposit or withdrawal. Dispute lifecycle records reuse
// the TxID of the transaction they reference.
type TxID uint32

// Kind is the type of a transaction record.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindDispute    Kind = "dispute"
	KindResolve    Kind = "resolve"
	KindChargeback Kind = "chargeback"
)

// ParseKind parses a record type. "withdraw" is accepted as an alias for
// withdrawal.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindDeposit, KindWithdrawal, KindDispute, KindResolve, KindChargeback:
		return k, nil
	case "withdraw":
		return KindWithdrawal, nil
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

// IsFundsMovement reports whether the kind creates a new transaction.
func (k Kind) IsFundsMovement() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// IsDisputeLifecycle reports whether the kind references an earlier transaction.
func (k Kind) IsDisputeLifecycle() bool {
	return k == KindDispute || k == KindResolve || k == KindChargeback
}

// TransactionRecord is one normalized input row.
type TransactionRecord struct {
	Kind   Kind
	Client ClientID
	Tx     TxID
	Amount *decimal.Decimal // nil for dispute, resolve, chargeback
	Line   int              // source line, 0 if not read from a file
}
