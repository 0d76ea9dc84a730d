package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"deposit", KindDeposit},
		{"withdrawal", KindWithdrawal},
		{"withdraw", KindWithdrawal},
		{" Dispute ", KindDispute},
		{"RESOLVE", KindResolve},
		{"chargeback", KindChargeback},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		require.NoError(t, err, "ParseKind(%q)", tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseKind("refund")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "refund")
}

func TestKindClassification(t *testing.T) {
	assert.True(t, KindDeposit.IsFundsMovement())
	assert.True(t, KindWithdrawal.IsFundsMovement())
	assert.False(t, KindDispute.IsFundsMovement())

	assert.True(t, KindDispute.IsDisputeLifecycle())
	assert.True(t, KindResolve.IsDisputeLifecycle())
	assert.True(t, KindChargeback.IsDisputeLifecycle())
	assert.False(t, KindDeposit.IsDisputeLifecycle())
}

func TestAccountBalanced(t *testing.T) {
	a := NewAccount(7)
	assert.True(t, a.Balanced())

	a.Available = decimal.RequireFromString("1.5")
	assert.False(t, a.Balanced())

	a.Held = decimal.RequireFromString("2")
	a.Total = decimal.RequireFromString("3.5")
	assert.True(t, a.Balanced())
}
