package rejectlog

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

func testEntry() Entry {
	return Entry{
		Line:   12,
		Kind:   model.KindWithdrawal,
		Client: 3,
		Tx:     5,
		Reason: "insufficient_funds",
		Detail: "available 0, requested 100",
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(testEntry()))
	require.NoError(t, w.Write(Entry{Line: 13, Reason: "malformed_record", Detail: "expected 3 or 4 fields, got 2"}))
	require.NoError(t, w.Flush())

	assert.True(t, strings.HasPrefix(buf.String(), Header+"\n"))

	entries, err := ReadEntries(&buf)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, testEntry(), entries[0])
	assert.Equal(t, 13, entries[1].Line)
	assert.Empty(t, entries[1].Kind)
	assert.Equal(t, "malformed_record", entries[1].Reason)
}

func TestWriter_EmptyReportHasHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Flush())
	assert.Equal(t, Header+"\n", buf.String())

	entries, err := ReadEntries(&buf)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestWriter_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(line int) {
			defer wg.Done()
			e := testEntry()
			e.Line = line
			assert.NoError(t, w.Write(e))
		}(i + 1)
	}
	wg.Wait()
	require.NoError(t, w.Flush())

	entries, err := ReadEntries(&buf)
	require.NoError(t, err)
	assert.Len(t, entries, 50)
}

func TestMarshalEntry_MalformedRow(t *testing.T) {
	row := MarshalEntry(Entry{Line: 4, Reason: "malformed_record", Detail: "bad"})
	assert.Equal(t, []string{"4", "", "", "", "malformed_record", "bad"}, row)
}

func TestUnmarshalEntry_BadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 6 fields")
}

func TestUnmarshalEntry_BadLine(t *testing.T) {
	_, err := UnmarshalEntry([]string{"x", "deposit", "1", "1", "r", ""})
	assert.Error(t, err)
}
