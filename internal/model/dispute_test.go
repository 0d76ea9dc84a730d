package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisputeStatusCanTransition(t *testing.T) {
	tests := []struct {
		from, to DisputeStatus
		want     bool
	}{
		{DisputeNormal, DisputeDisputed, true},
		{DisputeNormal, DisputeResolved, false},
		{DisputeNormal, DisputeChargedBack, false},
		{DisputeDisputed, DisputeResolved, true},
		{DisputeDisputed, DisputeChargedBack, true},
		{DisputeDisputed, DisputeDisputed, false},
		{DisputeResolved, DisputeDisputed, false},
		{DisputeResolved, DisputeChargedBack, false},
		{DisputeChargedBack, DisputeDisputed, false},
		{DisputeChargedBack, DisputeResolved, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestDisputeStatusTerminal(t *testing.T) {
	assert.False(t, DisputeNormal.Terminal())
	assert.False(t, DisputeDisputed.Terminal())
	assert.True(t, DisputeResolved.Terminal())
	assert.True(t, DisputeChargedBack.Terminal())
}
