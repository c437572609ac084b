package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
)

type OrderBook interface {
	Initialize(snapshot model.Snapshot, numLevels int) error
	ApplyUpdate(level model.RawLevel) error
	TopBids(n int) []model.MarketDepthLevel
	TopAsks(n int) []model.MarketDepthLevel
	Depth() model.MarketDepth
	GetTopOfBook() model.TopOfBook
	Levels(side model.Side) int
	NumLevels() int
	Initialized() bool
}

type OrderBookImpl struct {
	bids, asks  *PriceLevelMap // price-level trees
	numLevels   int
	initialized bool
}

// NewOrderBook returns an empty book; it holds no levels until Initialize.
func NewOrderBook() OrderBook {
	return &OrderBookImpl{
		bids: NewPriceLevelMap(model.BID),
		asks: NewPriceLevelMap(model.ASK),
	}
}

func (o *OrderBookImpl) side(side model.Side) *PriceLevelMap {
	if side == model.BID {
		return o.bids
	}
	return o.asks
}

func validPrice(price model.Price) bool {
	return !math.IsNaN(price) && !math.IsInf(price, 0) && price >= 0
}

// Initialize loads the snapshot into an empty book. It may only run once;
// a resync builds a fresh book instead.
func (o *OrderBookImpl) Initialize(snapshot model.Snapshot, numLevels int) error {
	if o.initialized {
		return ErrBookAlreadyInitialized
	}
	if numLevels <= 0 {
		return fmt.Errorf("display depth must be positive, got %d", numLevels)
	}
	for _, level := range snapshot.Levels {
		if !validPrice(level.Price) {
			return fmt.Errorf("snapshot level %v: %w", level.Price, ErrInvalidPrice)
		}
	}

	for _, level := range snapshot.Levels {
		// a zero count level cannot exist in the book
		if level.Count == 0 {
			continue
		}
		o.side(level.Side()).Upsert(level.Price, level.Count)
	}
	o.numLevels = numLevels
	o.initialized = true
	return nil
}

// ApplyUpdate applies one incremental level change. A zero count deletes the
// level and fails with PriceNotFoundError when it is absent; any other count
// inserts or amends the level.
func (o *OrderBookImpl) ApplyUpdate(level model.RawLevel) error {
	if !o.initialized {
		return ErrBookNotInitialized
	}
	if !validPrice(level.Price) {
		return fmt.Errorf("update level %v: %w", level.Price, ErrInvalidPrice)
	}

	side := level.Side()
	levels := o.side(side)
	if level.Count == 0 {
		if !levels.Remove(level.Price) {
			return &PriceNotFoundError{Side: side, Price: level.Price}
		}
		return nil
	}
	levels.Upsert(level.Price, level.Count)
	return nil
}

func (o *OrderBookImpl) depthOrDefault(n int) int {
	if n <= 0 {
		return o.numLevels
	}
	return n
}

// TopBids returns the n best bids, or the configured depth when n <= 0.
func (o *OrderBookImpl) TopBids(n int) []model.MarketDepthLevel {
	return o.bids.Top(o.depthOrDefault(n))
}

// TopAsks returns the n best asks, or the configured depth when n <= 0.
func (o *OrderBookImpl) TopAsks(n int) []model.MarketDepthLevel {
	return o.asks.Top(o.depthOrDefault(n))
}

func (o *OrderBookImpl) Depth() model.MarketDepth {
	return model.MarketDepth{
		Bids:      o.TopBids(0),
		Asks:      o.TopAsks(0),
		Timestamp: time.Now().UnixMilli(),
	}
}

// GetTopOfBook returns best bid and ask
func (o *OrderBookImpl) GetTopOfBook() model.TopOfBook {
	tob := model.TopOfBook{}

	if best, ok := o.bids.Best(); ok {
		tob.BestBid = &best
	}
	if best, ok := o.asks.Best(); ok {
		tob.BestAsk = &best
	}

	// Calculate spread
	if tob.BestBid != nil && tob.BestAsk != nil {
		tob.Spread = tob.BestAsk.Price - tob.BestBid.Price
	}

	return tob
}

func (o *OrderBookImpl) Levels(side model.Side) int {
	return o.side(side).Len()
}

func (o *OrderBookImpl) NumLevels() int {
	return o.numLevels
}

func (o *OrderBookImpl) Initialized() bool {
	return o.initialized
}
