package rejectlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/cleared-dev/ledgerflow/internal/id"
	"github.com/cleared-dev/ledgerflow/internal/model"
)

// Entry is one skipped input record.
type Entry struct {
	Line   int
	Kind   model.Kind // empty when the row could not be parsed
	Client model.ClientID
	Tx     model.TxID
	Reason string
	Detail string
}

// Header is the CSV header for the rejection report.
const Header = "line,type,client,tx,reason,detail"

const (
	numFields = 6
	colLine   = 0
	colKind   = 1
	colClient = 2
	colTx     = 3
	colReason = 4
	colDetail = 5
)

// MarshalEntry converts an Entry to a CSV row. Client and tx are left blank
// when the row never parsed far enough to have them.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colLine] = strconv.Itoa(e.Line)
	row[colKind] = string(e.Kind)
	if e.Kind != "" {
		row[colClient] = id.FormatClientID(e.Client)
		row[colTx] = id.FormatTxID(e.Tx)
	}
	row[colReason] = e.Reason
	row[colDetail] = e.Detail
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	line, err := strconv.Atoi(record[colLine])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing line %q: %w", record[colLine], err)
	}

	e := Entry{
		Line:   line,
		Kind:   model.Kind(record[colKind]),
		Reason: record[colReason],
		Detail: record[colDetail],
	}
	if record[colClient] != "" {
		if e.Client, err = id.ParseClientID(record[colClient]); err != nil {
			return Entry{}, err
		}
	}
	if record[colTx] != "" {
		if e.Tx, err = id.ParseTxID(record[colTx]); err != nil {
			return Entry{}, err
		}
	}
	return e, nil
}

// Writer streams entries to a rejection report. It is safe for concurrent use.
type Writer struct {
	mu          sync.Mutex
	cw          *csv.Writer
	wroteHeader bool
}

// NewWriter returns a Writer that emits the header before the first entry.
func NewWriter(w io.Writer) *Writer {
	return &Writer{cw: csv.NewWriter(w)}
}

// Write appends one entry.
func (w *Writer) Write(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.wroteHeader {
		if err := w.cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		w.wroteHeader = true
	}
	if err := w.cw.Write(MarshalEntry(e)); err != nil {
		return fmt.Errorf("writing entry for line %d: %w", e.Line, err)
	}
	return nil
}

// Flush writes buffered entries to the underlying writer. An empty report
// still gets its header.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.wroteHeader {
		if err := w.cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		w.wroteHeader = true
	}
	w.cw.Flush()
	return w.cw.Error()
}

// ReadEntries reads a rejection report.
func ReadEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading rejection report CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
