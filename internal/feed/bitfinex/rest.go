package bitfinex

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
	"github.com/go-resty/resty/v2"
)

const defaultRESTTimeout = 10 * time.Second

// RESTClient fetches book snapshots from the public REST API.
type RESTClient struct {
	baseURL string
	client  *resty.Client
}

func NewRESTClient(baseURL string) *RESTClient {
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: resty.New().
			SetTimeout(defaultRESTTimeout).
			SetHeader("Accept", "application/json"),
	}
}

// FetchSnapshot returns the current book of symbol, up to tier levels per side.
// The REST API has no channel, so the snapshot carries channel id 0.
func (c *RESTClient) FetchSnapshot(ctx context.Context, symbol string, tier int) (model.Snapshot, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParam("len", strconv.Itoa(tier)).
		Get(c.baseURL + "/v2/book/{symbol}/P0")
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("[bitfinex][FetchSnapshot][Get] Error: %w", err)
	}
	if resp.IsError() {
		return model.Snapshot{}, fmt.Errorf("[bitfinex][FetchSnapshot][resp.IsError()] status_code: %d, raw_body: %s", resp.StatusCode(), string(resp.Body()))
	}

	var wire []wireLevel
	if err := json.Unmarshal(resp.Body(), &wire); err != nil {
		return model.Snapshot{}, fmt.Errorf("[bitfinex][FetchSnapshot][json.Unmarshal] Error: %w", err)
	}
	levels := make([]model.RawLevel, 0, len(wire))
	for _, l := range wire {
		levels = append(levels, model.RawLevel(l))
	}
	return model.Snapshot{Levels: levels}, nil
}
