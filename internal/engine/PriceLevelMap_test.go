package engine

import (
	"testing"

	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prices(levels []model.MarketDepthLevel) []model.Price {
	out := make([]model.Price, 0, len(levels))
	for _, l := range levels {
		out = append(out, l.Price)
	}
	return out
}

func TestPriceLevelMap_UpsertInsertsAndOverwrites(t *testing.T) {
	m := NewPriceLevelMap(model.ASK)

	m.Upsert(100.0, 1)
	m.Upsert(100.0, 4)

	count, ok := m.Get(100.0)
	require.True(t, ok)
	assert.Equal(t, model.Count(4), count)
	assert.Equal(t, 1, m.Len())
}

func TestPriceLevelMap_Remove(t *testing.T) {
	m := NewPriceLevelMap(model.BID)
	m.Upsert(10.0, 1)
	m.Upsert(11.0, 2)

	assert.True(t, m.Remove(10.0))
	assert.False(t, m.Remove(10.0))
	assert.False(t, m.Remove(12.0))

	_, ok := m.Get(10.0)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestPriceLevelMap_TopOrdersNumerically(t *testing.T) {
	// lexically "9.0" > "100.0"; numerically it is not
	input := []model.Price{100.0, 9.0, 1000.0, 99.5, 10.0}

	asks := NewPriceLevelMap(model.ASK)
	bids := NewPriceLevelMap(model.BID)
	for _, p := range input {
		asks.Upsert(p, 1)
		bids.Upsert(p, 1)
	}

	assert.Equal(t, []model.Price{9.0, 10.0, 99.5, 100.0, 1000.0}, prices(asks.Top(10)))
	assert.Equal(t, []model.Price{1000.0, 100.0, 99.5, 10.0, 9.0}, prices(bids.Top(10)))
}

func TestPriceLevelMap_TopBounds(t *testing.T) {
	m := NewPriceLevelMap(model.ASK)
	for _, p := range []model.Price{5, 3, 4, 1, 2} {
		m.Upsert(p, model.Count(p))
	}

	top := m.Top(3)
	assert.Len(t, top, 3)
	assert.Equal(t, model.MarketDepthLevel{Price: 1, Count: 1}, top[0])

	assert.Len(t, m.Top(50), 5)
	assert.Empty(t, m.Top(0))
	assert.Empty(t, m.Top(-1))
	assert.Empty(t, NewPriceLevelMap(model.BID).Top(5))
}

func TestPriceLevelMap_TopIsRestartable(t *testing.T) {
	m := NewPriceLevelMap(model.BID)
	m.Upsert(1.5, 2)
	m.Upsert(2.5, 3)

	first := m.Top(2)
	second := m.Top(2)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, m.Len())
}

func TestPriceLevelMap_Best(t *testing.T) {
	bids := NewPriceLevelMap(model.BID)
	_, ok := bids.Best()
	assert.False(t, ok)

	bids.Upsert(1.0, 1)
	bids.Upsert(3.0, 2)
	bids.Upsert(2.0, 5)

	best, ok := bids.Best()
	require.True(t, ok)
	assert.Equal(t, model.MarketDepthLevel{Price: 3.0, Count: 2}, best)
	assert.Equal(t, model.BID, bids.Side())
}
