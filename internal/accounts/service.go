package accounts

import (
	"fmt"
	"os"
	"slices"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// Summary provides lookup over a final account summary.
type Summary struct {
	accounts []model.Account
	byClient map[model.ClientID]model.Account
}

// NewSummary creates a Summary from a slice of accounts.
func NewSummary(accounts []model.Account) *Summary {
	byClient := make(map[model.ClientID]model.Account, len(accounts))
	for _, a := range accounts {
		byClient[a.Client] = a
	}
	return &Summary{accounts: accounts, byClient: byClient}
}

// Load reads a summary CSV from path.
func Load(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening summary: %w", err)
	}
	defer f.Close()

	accts, err := ReadSummary(f)
	if err != nil {
		return nil, fmt.Errorf("reading summary %s: %w", path, err)
	}
	return NewSummary(accts), nil
}

// All returns all accounts in file order.
func (s *Summary) All() []model.Account {
	return s.accounts
}

// Get returns the account for a client.
func (s *Summary) Get(client model.ClientID) (model.Account, bool) {
	a, ok := s.byClient[client]
	return a, ok
}

// Difference is a client whose account differs between two summaries.
// Left or Right is nil when the client is missing on that side.
type Difference struct {
	Client model.ClientID
	Left   *model.Account
	Right  *model.Account
}

// Diff compares two summaries by client. Balances are compared by value, so
// "1.5" and "1.5000" are equal.
func Diff(left, right *Summary) []Difference {
	clients := make([]model.ClientID, 0, len(left.byClient)+len(right.byClient))
	for c := range left.byClient {
		clients = append(clients, c)
	}
	for c := range right.byClient {
		if _, ok := left.byClient[c]; !ok {
			clients = append(clients, c)
		}
	}
	slices.Sort(clients)

	var diffs []Difference
	for _, c := range clients {
		l, lok := left.Get(c)
		r, rok := right.Get(c)
		switch {
		case lok && rok:
			if !sameAccount(l, r) {
				diffs = append(diffs, Difference{Client: c, Left: &l, Right: &r})
			}
		case lok:
			diffs = append(diffs, Difference{Client: c, Left: &l})
		default:
			diffs = append(diffs, Difference{Client: c, Right: &r})
		}
	}
	return diffs
}

func sameAccount(a, b model.Account) bool {
	return a.Available.Equal(b.Available) &&
		a.Held.Equal(b.Held) &&
		a.Total.Equal(b.Total) &&
		a.Locked == b.Locked
}
