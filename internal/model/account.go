package model

import "github.com/shopspring/decimal"

// Account is the balance state of a single client.
type Account struct {
	Client    ClientID
	Available decimal.Decimal // may go negative when a withdrawal is disputed
	Held      decimal.Decimal
	Total     decimal.Decimal // Available + Held
	Locked    bool
}

// NewAccount returns an empty, unlocked account.
func NewAccount(client ClientID) Account {
	return Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
		Total:     decimal.Zero,
	}
}

// Balanced reports whether Total equals Available + Held.
func (a Account) Balanced() bool {
	return a.Total.Equal(a.Available.Add(a.Held))
}
