package model

type Side int8

const (
	BID Side = iota
	ASK
)

func (s Side) String() string {
	if s == BID {
		return "BID"
	}
	return "ASK"
}

// SideFromAmount maps the feed's signed amount to a book side.
// Positive amounts are bids, zero and negative amounts are asks.
func SideFromAmount(amount float64) Side {
	if amount > 0 {
		return BID
	}
	return ASK
}
