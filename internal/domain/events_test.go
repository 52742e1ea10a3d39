package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldBefore(t *testing.T) {
	gold := 70
	cost := 20

	ev := GameEvent{Type: EventEnhanceKeep, GoldAfter: &gold, Cost: &cost}
	gb := ev.GoldBefore()
	require.NotNil(t, gb)
	assert.Equal(t, 90, *gb)

	assert.Nil(t, GameEvent{GoldAfter: &gold}.GoldBefore())
	assert.Nil(t, GameEvent{Cost: &cost}.GoldBefore())
}

func TestEventKindPredicates(t *testing.T) {
	assert.True(t, GameEvent{Type: EventEnhanceBreak}.IsEnhance())
	assert.True(t, GameEvent{Type: EventEnhanceBreak}.IsTerminal())
	assert.True(t, GameEvent{Type: EventSell}.IsTerminal())
	assert.False(t, GameEvent{Type: EventSell}.IsEnhance())
	assert.True(t, GameEvent{Type: EventSell}.CarriesItems())
	assert.False(t, GameEvent{Type: EventBusy}.CarriesItems())
}
