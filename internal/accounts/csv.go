package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerflow/internal/id"
	"github.com/cleared-dev/ledgerflow/internal/model"
)

// Header is the CSV header for the account summary.
const Header = "client,available,held,total,locked"

const (
	numFields    = 5
	colClient    = 0
	colAvailable = 1
	colHeld      = 2
	colTotal     = 3
	colLocked    = 4
)

// ReadSummary reads an account summary CSV.
func ReadSummary(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading summary CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteSummary writes the account summary, including the header, with every
// balance fixed to scale fractional digits.
func WriteSummary(w io.Writer, accounts []model.Account, scale int32) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct, scale)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account, scale int32) []string {
	row := make([]string, numFields)
	row[colClient] = id.FormatClientID(acct.Client)
	row[colAvailable] = acct.Available.StringFixed(scale)
	row[colHeld] = acct.Held.StringFixed(scale)
	row[colTotal] = acct.Total.StringFixed(scale)
	row[colLocked] = strconv.FormatBool(acct.Locked)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	client, err := id.ParseClientID(record[colClient])
	if err != nil {
		return model.Account{}, err
	}

	var balances [3]decimal.Decimal
	for i, col := range []int{colAvailable, colHeld, colTotal} {
		balances[i], err = decimal.NewFromString(strings.TrimSpace(record[col]))
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing balance %q: %w", record[col], err)
		}
	}

	locked, err := strconv.ParseBool(strings.TrimSpace(record[colLocked]))
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing locked %q: %w", record[colLocked], err)
	}

	return model.Account{
		Client:    client,
		Available: balances[0],
		Held:      balances[1],
		Total:     balances[2],
		Locked:    locked,
	}, nil
}
