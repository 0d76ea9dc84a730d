package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

// ParseClientID parses a client identifier ("0" .. "65535").
func ParseClientID(s string) (model.ClientID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid client ID %q: %w", s, err)
	}
	return model.ClientID(n), nil
}

// ParseTxID parses a transaction identifier ("0" .. "4294967295").
func ParseTxID(s string) (model.TxID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction ID %q: %w", s, err)
	}
	return model.TxID(n), nil
}

// FormatClientID returns the decimal form of a client ID.
func FormatClientID(c model.ClientID) string {
	return strconv.FormatUint(uint64(c), 10)
}

// FormatTxID returns the decimal form of a transaction ID.
func FormatTxID(tx model.TxID) string {
	return strconv.FormatUint(uint64(tx), 10)
}
