package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgerflow/internal/model"
)

func TestParseClientID(t *testing.T) {
	tests := []struct {
		input string
		want  model.ClientID
	}{
		{"1", 1},
		{" 42 ", 42},
		{"65535", 65535},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := ParseClientID(tt.input)
		require.NoError(t, err, "ParseClientID(%q)", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseClientID_Invalid(t *testing.T) {
	invalid := []string{"", "abc", "-1", "65536", "1.5"}
	for _, s := range invalid {
		_, err := ParseClientID(s)
		assert.Error(t, err, "ParseClientID(%q) should fail", s)
	}
}

func TestParseTxID(t *testing.T) {
	got, err := ParseTxID("4294967295")
	require.NoError(t, err)
	assert.Equal(t, model.TxID(4294967295), got)

	got, err = ParseTxID(" 17")
	require.NoError(t, err)
	assert.Equal(t, model.TxID(17), got)
}

func TestParseTxID_Invalid(t *testing.T) {
	invalid := []string{"", "tx1", "-3", "4294967296"}
	for _, s := range invalid {
		_, err := ParseTxID(s)
		assert.Error(t, err, "ParseTxID(%q) should fail", s)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "65535", FormatClientID(65535))
	assert.Equal(t, "12", FormatTxID(12))
}
