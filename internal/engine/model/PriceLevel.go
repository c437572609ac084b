package model

import (
	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
	"github.com/google/btree"
)

// PriceLevel is the common view over both tree item kinds.
type PriceLevel interface {
	btree.Item
	GetPrice() model.Price
	GetCount() model.Count
	SetCount(count model.Count)
}

// AskPriceLevel ascending
type AskPriceLevel struct {
	Price model.Price
	Count model.Count
}

func (pl *AskPriceLevel) Less(than btree.Item) bool {
	other := than.(*AskPriceLevel)
	return pl.Price < other.Price
}

func (pl *AskPriceLevel) GetPrice() model.Price      { return pl.Price }
func (pl *AskPriceLevel) GetCount() model.Count      { return pl.Count }
func (pl *AskPriceLevel) SetCount(count model.Count) { pl.Count = count }

// BidPriceLevel descending
type BidPriceLevel struct {
	Price model.Price
	Count model.Count
}

func (bpl *BidPriceLevel) Less(than btree.Item) bool {
	other := than.(*BidPriceLevel)
	return bpl.Price > other.Price // Reverse
}

func (bpl *BidPriceLevel) GetPrice() model.Price      { return bpl.Price }
func (bpl *BidPriceLevel) GetCount() model.Count      { return bpl.Count }
func (bpl *BidPriceLevel) SetCount(count model.Count) { bpl.Count = count }

// NewPriceLevel builds the tree item for side, so the tree minimum is always the best price.
func NewPriceLevel(side model.Side, price model.Price, count model.Count) PriceLevel {
	if side == model.BID {
		return &BidPriceLevel{Price: price, Count: count}
	}
	return &AskPriceLevel{Price: price, Count: count}
}
