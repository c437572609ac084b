package engine

import (
	orderbookModel "github.com/Yusufzhafir/go-orderbook/ingester/internal/engine/model"
	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
	"github.com/google/btree"
)

const treeDegree = 32 // degree tuned for performance

// PriceLevelMap holds the aggregated levels of one side, ordered best first.
type PriceLevelMap struct {
	side model.Side
	tree *btree.BTree
}

func NewPriceLevelMap(side model.Side) *PriceLevelMap {
	return &PriceLevelMap{
		side: side,
		tree: btree.New(treeDegree),
	}
}

func (m *PriceLevelMap) Side() model.Side {
	return m.side
}

func (m *PriceLevelMap) pivot(price model.Price) orderbookModel.PriceLevel {
	return orderbookModel.NewPriceLevel(m.side, price, 0)
}

// Upsert inserts the level if absent, otherwise overwrites its count.
func (m *PriceLevelMap) Upsert(price model.Price, count model.Count) {
	if item := m.tree.Get(m.pivot(price)); item != nil {
		item.(orderbookModel.PriceLevel).SetCount(count)
		return
	}
	m.tree.ReplaceOrInsert(orderbookModel.NewPriceLevel(m.side, price, count))
}

// Remove deletes the level at price and reports whether it was present.
func (m *PriceLevelMap) Remove(price model.Price) bool {
	return m.tree.Delete(m.pivot(price)) != nil
}

func (m *PriceLevelMap) Get(price model.Price) (model.Count, bool) {
	item := m.tree.Get(m.pivot(price))
	if item == nil {
		return 0, false
	}
	return item.(orderbookModel.PriceLevel).GetCount(), true
}

func (m *PriceLevelMap) Len() int {
	return m.tree.Len()
}

// Best returns the best level of the side: highest bid or lowest ask.
func (m *PriceLevelMap) Best() (model.MarketDepthLevel, bool) {
	if m.tree.Len() == 0 {
		return model.MarketDepthLevel{}, false
	}
	best := m.tree.Min().(orderbookModel.PriceLevel)
	return model.MarketDepthLevel{Price: best.GetPrice(), Count: best.GetCount()}, true
}

// Top returns up to n best levels, bids descending and asks ascending.
func (m *PriceLevelMap) Top(n int) []model.MarketDepthLevel {
	if n <= 0 {
		return []model.MarketDepthLevel{}
	}
	levels := make([]model.MarketDepthLevel, 0, min(n, m.tree.Len()))
	m.tree.Ascend(func(item btree.Item) bool {
		if len(levels) >= n {
			return false // Stop iteration
		}
		level := item.(orderbookModel.PriceLevel)
		levels = append(levels, model.MarketDepthLevel{
			Price: level.GetPrice(),
			Count: level.GetCount(),
		})
		return true
	})
	return levels
}

