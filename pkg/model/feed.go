package model

// RawLevel is a single price level entry as delivered by the feed.
// Amount is signed: its sign selects the side, not the size.
type RawLevel struct {
	Price  Price   `json:"price"`
	Count  Count   `json:"count"`
	Amount float64 `json:"amount"`
}

func (l RawLevel) Side() Side {
	return SideFromAmount(l.Amount)
}

// Snapshot is the one-time full book state sent after subscribing.
type Snapshot struct {
	ChannelID uint64
	Levels    []RawLevel
}

// Update is a single incremental level change.
type Update struct {
	ChannelID uint64
	Level     RawLevel
}

type ServerInfo struct {
	Version  int    `json:"version"`
	ServerID string `json:"serverId"`
}

type SubscribeAck struct {
	ChannelID uint64 `json:"chanId"`
	Symbol    string `json:"symbol"`
}

// SubscriptionRequest names the book to follow and how many levels to display.
type SubscriptionRequest struct {
	Symbol string
	Levels int
}
