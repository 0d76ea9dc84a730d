package ledger

import (
	"fmt"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// InvariantError describes a single account invariant violation.
type InvariantError struct {
	Invariant   int
	Client      model.ClientID
	Description string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("invariant %d [client %d]: %s", e.Invariant, e.Client, e.Description)
}

// CheckInvariants enforces the balance invariants on a set of accounts.
func CheckInvariants(accts []model.Account) []InvariantError {
	var errs []InvariantError
	for _, a := range accts {
		// Invariant 1: total == available + held.
		if !a.Balanced() {
			errs = append(errs, InvariantError{
				Invariant:   1,
				Client:      a.Client,
				Description: fmt.Sprintf("total (%s) != available (%s) + held (%s)", a.Total, a.Available, a.Held),
			})
		}

		// Invariant 2: held is never negative.
		if a.Held.IsNegative() {
			errs = append(errs, InvariantError{
				Invariant:   2,
				Client:      a.Client,
				Description: fmt.Sprintf("held (%s) is negative", a.Held),
			})
		}
	}
	return errs
}
