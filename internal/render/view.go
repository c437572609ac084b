package render

import (
	"sync/atomic"

	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
)

// View keeps the most recently rendered depth for readers on other
// goroutines. The book itself is only touched by the session.
type View struct {
	latest atomic.Pointer[model.MarketDepth]
}

func NewView() *View {
	return &View{}
}

func (v *View) Render(depth model.MarketDepth) {
	v.latest.Store(&depth)
}

// Latest returns the last depth, or false before the first render.
func (v *View) Latest() (model.MarketDepth, bool) {
	d := v.latest.Load()
	if d == nil {
		return model.MarketDepth{}, false
	}
	return *d, true
}

func (v *View) Ready() bool {
	return v.latest.Load() != nil
}

func (v *View) TopOfBook() (model.TopOfBook, bool) {
	d, ok := v.Latest()
	if !ok {
		return model.TopOfBook{}, false
	}
	var tob model.TopOfBook
	if len(d.Bids) > 0 {
		tob.BestBid = &model.MarketDepthLevel{Price: d.Bids[0].Price, Count: d.Bids[0].Count}
	}
	if len(d.Asks) > 0 {
		tob.BestAsk = &model.MarketDepthLevel{Price: d.Asks[0].Price, Count: d.Asks[0].Count}
	}
	if tob.BestBid != nil && tob.BestAsk != nil {
		tob.Spread = tob.BestAsk.Price - tob.BestBid.Price
	}
	return tob, true
}
