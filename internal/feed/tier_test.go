package feed

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepthTier(t *testing.T) {
	tests := []struct {
		levels int
		tier   int
	}{
		{0, 25}, {1, 25}, {25, 25},
		{26, 100}, {100, 100},
		{101, 250}, {250, 250},
	}
	for _, tt := range tests {
		tier, err := DepthTier(tt.levels)
		require.NoError(t, err, "levels %d", tt.levels)
		assert.Equal(t, tt.tier, tier, "levels %d", tt.levels)
	}

	for _, levels := range []int{251, 300, -1} {
		_, err := DepthTier(levels)
		var ude *UnsupportedDepthError
		require.True(t, errors.As(err, &ude), "levels %d", levels)
		assert.Equal(t, levels, ude.Requested)
		assert.Equal(t, MaxDepth, ude.Max)
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{
		"":          PolicyAbort,
		"abort":     PolicyAbort,
		" Continue": PolicyContinue,
		"RESYNC":    PolicyResync,
	} {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParsePolicy("retry")
	assert.Error(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "awaiting subscribe ack", StateAwaitingSubscribeAck.String())
	assert.Equal(t, "streaming", StateStreaming.String())
	assert.Equal(t, "unknown", State(42).String())
}
