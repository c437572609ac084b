package model

type Price = float64
type Count = uint64

type MarketDepthLevel struct {
	Price Price `json:"price"`
	Count Count `json:"count"`
}

// MarketDepth represents the displayed order book depth
type MarketDepth struct {
	Symbol    string             `json:"symbol,omitempty"`
	Bids      []MarketDepthLevel `json:"bids"` // Highest to lowest price
	Asks      []MarketDepthLevel `json:"asks"` // Lowest to highest price
	Timestamp int64              `json:"timestamp"`
}

// TopOfBook represents best bid/ask
type TopOfBook struct {
	BestBid *MarketDepthLevel `json:"bestBid"`
	BestAsk *MarketDepthLevel `json:"bestAsk"`
	Spread  Price             `json:"spread"`
}
