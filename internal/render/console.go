package render

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
	"github.com/shopspring/decimal"
)

const consoleHeader = "Bid Price | Amount | Ask Price | Amount"

// Console prints the book as a table, one bid/ask pair per row. Rows stop at
// the shorter side.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Render(depth model.MarketDepth) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bw := bufio.NewWriter(c.w)
	bw.WriteString(consoleHeader + "\n")
	bw.WriteString(strings.Repeat("-", 40) + "\n")
	for i := 0; i < min(len(depth.Bids), len(depth.Asks)); i++ {
		bid, ask := depth.Bids[i], depth.Asks[i]
		bw.WriteString(formatPrice(bid.Price) + "    | " + strconv.FormatUint(bid.Count, 10) + "      | " +
			formatPrice(ask.Price) + "    | " + strconv.FormatUint(ask.Count, 10) + "\n")
	}
	bw.WriteString("\n")
	_ = bw.Flush()
}

func formatPrice(p model.Price) string {
	return decimal.NewFromFloat(p).StringFixed(1)
}
