package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgerflow/internal/id"
	"github.com/cleared-dev/ledgerflow/internal/model"
)

// Header is the CSV header for transaction input files.
const Header = "type,client,tx,amount"

const (
	numFields          = 4
	numLifecycleFields = 3
	colType            = 0
	colClient          = 1
	colTx              = 2
	colAmount          = 3
)

// MalformedError reports an input row that could not be normalized. The
// Reader stays usable after returning one.
type MalformedError struct {
	Line   int
	Detail string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("line %d: malformed record: %s", e.Line, e.Detail)
}

func malformed(line int, format string, args ...any) *MalformedError {
	return &MalformedError{Line: line, Detail: fmt.Sprintf(format, args...)}
}

// Reader streams transaction records from CSV input one row at a time.
type Reader struct {
	cr      *csv.Reader
	scale   int32
	started bool
}

// NewReader returns a Reader that rejects amounts with more than scale
// fractional digits.
func NewReader(r io.Reader, scale int32) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return &Reader{cr: cr, scale: scale}
}

// Next returns the next record. It returns io.EOF at the end of input and a
// *MalformedError for rows that fail to parse; callers may keep calling
// Next after a *MalformedError.
func (r *Reader) Next() (model.TransactionRecord, error) {
	for {
		fields, err := r.cr.Read()
		if err == io.EOF {
			return model.TransactionRecord{}, io.EOF
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				r.started = true
				return model.TransactionRecord{}, malformed(pe.StartLine, "%v", pe.Err)
			}
			return model.TransactionRecord{}, fmt.Errorf("reading transactions CSV: %w", err)
		}

		line, _ := r.cr.FieldPos(0)
		if !r.started {
			r.started = true
			if isHeader(fields) {
				continue
			}
		}
		return UnmarshalRecord(fields, line, r.scale)
	}
}

func isHeader(fields []string) bool {
	return len(fields) > 0 && strings.EqualFold(strings.TrimSpace(fields[colType]), "type")
}

// UnmarshalRecord converts a CSV row to a TransactionRecord.
func UnmarshalRecord(fields []string, line int, scale int32) (model.TransactionRecord, error) {
	if len(fields) != numFields && len(fields) != numLifecycleFields {
		return model.TransactionRecord{}, malformed(line, "expected %d or %d fields, got %d", numLifecycleFields, numFields, len(fields))
	}

	kind, err := model.ParseKind(fields[colType])
	if err != nil {
		return model.TransactionRecord{}, malformed(line, "%v", err)
	}

	client, err := id.ParseClientID(fields[colClient])
	if err != nil {
		return model.TransactionRecord{}, malformed(line, "%v", err)
	}

	tx, err := id.ParseTxID(fields[colTx])
	if err != nil {
		return model.TransactionRecord{}, malformed(line, "%v", err)
	}

	var rawAmount string
	if len(fields) == numFields {
		rawAmount = strings.TrimSpace(fields[colAmount])
	}

	rec := model.TransactionRecord{Kind: kind, Client: client, Tx: tx, Line: line}

	if kind.IsDisputeLifecycle() {
		if rawAmount != "" {
			return model.TransactionRecord{}, malformed(line, "%s must not carry an amount", kind)
		}
		return rec, nil
	}

	if rawAmount == "" {
		return model.TransactionRecord{}, malformed(line, "%s requires an amount", kind)
	}
	if strings.ContainsAny(rawAmount, "eE") {
		return model.TransactionRecord{}, malformed(line, "amount %q uses exponent notation", rawAmount)
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return model.TransactionRecord{}, malformed(line, "parsing amount %q: %v", rawAmount, err)
	}
	if !amount.IsPositive() {
		return model.TransactionRecord{}, malformed(line, "amount %s must be positive", rawAmount)
	}
	if !amount.Equal(amount.Truncate(scale)) {
		return model.TransactionRecord{}, malformed(line, "amount %s has more than %d decimal places", rawAmount, scale)
	}
	rec.Amount = &amount
	return rec, nil
}

// MarshalRecord converts a TransactionRecord to a CSV row.
func MarshalRecord(rec model.TransactionRecord) []string {
	row := make([]string, numFields)
	row[colType] = string(rec.Kind)
	row[colClient] = id.FormatClientID(rec.Client)
	row[colTx] = id.FormatTxID(rec.Tx)
	if rec.Amount != nil {
		row[colAmount] = rec.Amount.String()
	}
	return row
}

// WriteRecords writes records to w, including the header.
func WriteRecords(w io.Writer, recs []model.TransactionRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range recs {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
