package records

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// readAll drains r, collecting records and malformed errors separately.
func readAll(t *testing.T, r *Reader) ([]model.TransactionRecord, []*MalformedError) {
	t.Helper()
	var recs []model.TransactionRecord
	var bad []*MalformedError
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return recs, bad
		}
		var me *MalformedError
		if errors.As(err, &me) {
			bad = append(bad, me)
			continue
		}
		require.NoError(t, err)
		recs = append(recs, rec)
	}
}

func TestReader_Basic(t *testing.T) {
	input := `type, client, tx, amount
deposit, 1, 1, 1.0
deposit, 2, 2, 2.0
deposit, 1, 3, 2.0
withdrawal, 1, 4, 1.5
withdrawal, 2, 5, 3.0
dispute, 1, 1,
resolve, 1, 1
`
	recs, bad := readAll(t, NewReader(strings.NewReader(input), 4))
	assert.Empty(t, bad)
	require.Len(t, recs, 7)

	assert.Equal(t, model.KindDeposit, recs[0].Kind)
	assert.Equal(t, model.ClientID(1), recs[0].Client)
	assert.Equal(t, model.TxID(1), recs[0].Tx)
	require.NotNil(t, recs[0].Amount)
	assert.True(t, dec("1").Equal(*recs[0].Amount))
	assert.Equal(t, 2, recs[0].Line)

	assert.Equal(t, model.KindWithdrawal, recs[3].Kind)
	assert.True(t, dec("1.5").Equal(*recs[3].Amount))

	assert.Equal(t, model.KindDispute, recs[5].Kind)
	assert.Nil(t, recs[5].Amount)
	assert.Equal(t, model.KindResolve, recs[6].Kind)
	assert.Nil(t, recs[6].Amount)
	assert.Equal(t, 8, recs[6].Line)
}

func TestReader_NoHeader(t *testing.T) {
	input := "deposit,1,1,5\nchargeback,1,1,\n"
	recs, bad := readAll(t, NewReader(strings.NewReader(input), 4))
	assert.Empty(t, bad)
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].Line)
}

func TestReader_MalformedRowsAreSkipped(t *testing.T) {
	input := `type,client,tx,amount
deposit,1,1,1.0
refund,1,2,1.0
deposit,abc,3,1.0
deposit,1,4294967296,1.0
deposit,1,5,
deposit,1,6,-2
deposit,1,7,0
withdrawal,1,8,1.00001
deposit,1,9,12abc
dispute,1,1,4.0
deposit,1
deposit,1,10,1.0,extra
withdraw,1,11,0.5
`
	recs, bad := readAll(t, NewReader(strings.NewReader(input), 4))
	require.Len(t, recs, 2)
	assert.Equal(t, model.TxID(1), recs[0].Tx)
	assert.Equal(t, model.TxID(11), recs[1].Tx)
	assert.Equal(t, model.KindWithdrawal, recs[1].Kind)

	require.Len(t, bad, 11)
	lines := make([]int, len(bad))
	for i, me := range bad {
		lines[i] = me.Line
	}
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}, lines)
	assert.Contains(t, bad[0].Error(), "line 3: malformed record")
	assert.Contains(t, bad[4].Detail, "positive")
	assert.Contains(t, bad[6].Detail, "more than 4 decimal places")
	assert.Contains(t, bad[8].Detail, "must not carry an amount")
}

func TestReader_BareQuoteContinues(t *testing.T) {
	input := "type,client,tx,amount\ndeposit,1,1,1\"0\ndeposit,1,2,3\n"
	recs, bad := readAll(t, NewReader(strings.NewReader(input), 4))
	require.Len(t, bad, 1)
	assert.Equal(t, 2, bad[0].Line)
	require.Len(t, recs, 1)
	assert.Equal(t, model.TxID(2), recs[0].Tx)
}

func TestReader_Empty(t *testing.T) {
	recs, bad := readAll(t, NewReader(strings.NewReader(""), 4))
	assert.Empty(t, recs)
	assert.Empty(t, bad)

	recs, bad = readAll(t, NewReader(strings.NewReader(Header+"\n"), 4))
	assert.Empty(t, recs)
	assert.Empty(t, bad)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestReader_IOErrorIsNotMalformed(t *testing.T) {
	_, err := NewReader(failingReader{}, 4).Next()
	require.Error(t, err)
	var me *MalformedError
	assert.False(t, errors.As(err, &me))
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestUnmarshalRecord_Scale(t *testing.T) {
	_, err := UnmarshalRecord([]string{"deposit", "1", "1", "1.005"}, 1, 2)
	require.Error(t, err)

	rec, err := UnmarshalRecord([]string{"deposit", "1", "1", "1.0100"}, 1, 2)
	require.NoError(t, err)
	assert.True(t, dec("1.01").Equal(*rec.Amount))
}

func TestUnmarshalRecord_ExponentNotation(t *testing.T) {
	for _, amount := range []string{"1e3", "2E-2", "1e20000000", "1.5e0"} {
		_, err := UnmarshalRecord([]string{"deposit", "1", "1", amount}, 4, 4)
		var me *MalformedError
		require.True(t, errors.As(err, &me), "amount %q", amount)
		assert.Equal(t, 4, me.Line)
		assert.Contains(t, me.Detail, "exponent")
	}
}

func TestReader_HugeAmountIsSkipped(t *testing.T) {
	r := NewReader(strings.NewReader("type,client,tx,amount\ndeposit,2,3,1e20000000\ndeposit,3,4,1.0\n"), 4)

	_, err := r.Next()
	var me *MalformedError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 2, me.Line)

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, model.ClientID(3), rec.Client)

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriteRecords(t *testing.T) {
	a := dec("2.5")
	recs := []model.TransactionRecord{
		{Kind: model.KindDeposit, Client: 1, Tx: 1, Amount: &a},
		{Kind: model.KindDispute, Client: 1, Tx: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, recs))
	assert.Equal(t, Header+"\ndeposit,1,1,2.5\ndispute,1,1,\n", buf.String())

	got, bad := readAll(t, NewReader(&buf, 4))
	assert.Empty(t, bad)
	require.Len(t, got, 2)
	assert.Equal(t, model.KindDispute, got[1].Kind)
	assert.Nil(t, got[1].Amount)
}
