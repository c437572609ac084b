package model

import (
	"testing"

	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
	"github.com/google/btree"
	"github.com/stretchr/testify/assert"
)

func TestAskPriceLevel_LessIsNumeric(t *testing.T) {
	nine := &AskPriceLevel{Price: 9.0}
	hundred := &AskPriceLevel{Price: 100.0}

	assert.True(t, nine.Less(hundred))
	assert.False(t, hundred.Less(nine))
	assert.False(t, nine.Less(&AskPriceLevel{Price: 9.0}))
}

func TestBidPriceLevel_LessIsReversed(t *testing.T) {
	nine := &BidPriceLevel{Price: 9.0}
	hundred := &BidPriceLevel{Price: 100.0}

	assert.True(t, hundred.Less(nine))
	assert.False(t, nine.Less(hundred))
}

func TestNewPriceLevel_TreeMinimumIsBest(t *testing.T) {
	bids := btree.New(32)
	asks := btree.New(32)
	for _, p := range []model.Price{100.0, 9.0, 1000.5, 10.25} {
		bids.ReplaceOrInsert(NewPriceLevel(model.BID, p, 1))
		asks.ReplaceOrInsert(NewPriceLevel(model.ASK, p, 1))
	}

	assert.Equal(t, 1000.5, bids.Min().(PriceLevel).GetPrice())
	assert.Equal(t, 9.0, asks.Min().(PriceLevel).GetPrice())
}

func TestPriceLevel_SetCount(t *testing.T) {
	pl := NewPriceLevel(model.ASK, 42.0, 3)
	pl.SetCount(7)

	assert.Equal(t, model.Count(7), pl.GetCount())
	assert.IsType(t, &AskPriceLevel{}, pl)
}
