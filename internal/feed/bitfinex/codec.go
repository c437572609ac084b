package bitfinex

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/Yusufzhafir/go-orderbook/ingester/pkg/model"
)

// Codec speaks the public websocket v2 book channel.
type Codec struct{}

func NewCodec() Codec {
	return Codec{}
}

type eventMessage struct {
	Event     string  `json:"event"`
	Version   *int    `json:"version"`
	ServerID  *string `json:"serverId"`
	ChannelID *uint64 `json:"chanId"`
	Symbol    *string `json:"symbol"`
	Msg       string  `json:"msg"`
	Code      int     `json:"code"`
}

type subscribeRequest struct {
	Event   string `json:"event"`
	Channel string `json:"channel"`
	Symbol  string `json:"symbol"`
	Len     int    `json:"len"`
}

// wireLevel is a [price, count, amount] triple.
type wireLevel model.RawLevel

func (l *wireLevel) UnmarshalJSON(b []byte) error {
	var fields []float64
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if len(fields) != 3 {
		return fmt.Errorf("book entry has %d fields, want 3", len(fields))
	}
	count := fields[1]
	if count < 0 || count != math.Trunc(count) || count > 1<<53 {
		return fmt.Errorf("book entry count %v is not a non-negative integer", count)
	}
	*l = wireLevel{Price: fields[0], Count: model.Count(count), Amount: fields[2]}
	return nil
}

func decodeEvent(payload []byte) (eventMessage, error) {
	var m eventMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return m, err
	}
	if m.Event == "error" {
		return m, fmt.Errorf("feed error %d: %s", m.Code, m.Msg)
	}
	return m, nil
}

func (Codec) DecodeServerInfo(payload []byte) (model.ServerInfo, error) {
	m, err := decodeEvent(payload)
	if err != nil {
		return model.ServerInfo{}, err
	}
	if m.Event != "" && m.Event != "info" {
		return model.ServerInfo{}, fmt.Errorf("expected info event, got %q", m.Event)
	}
	if m.Version == nil || m.ServerID == nil {
		return model.ServerInfo{}, errors.New("server info is missing version or serverId")
	}
	return model.ServerInfo{Version: *m.Version, ServerID: *m.ServerID}, nil
}

func (Codec) EncodeSubscribe(symbol string, tier int) ([]byte, error) {
	return json.Marshal(subscribeRequest{
		Event:   "subscribe",
		Channel: "book",
		Symbol:  symbol,
		Len:     tier,
	})
}

func (Codec) DecodeSubscribeAck(payload []byte) (model.SubscribeAck, error) {
	m, err := decodeEvent(payload)
	if err != nil {
		return model.SubscribeAck{}, err
	}
	if m.Event != "" && m.Event != "subscribed" {
		return model.SubscribeAck{}, fmt.Errorf("expected subscribed event, got %q", m.Event)
	}
	if m.ChannelID == nil || m.Symbol == nil {
		return model.SubscribeAck{}, errors.New("subscribe ack is missing chanId or symbol")
	}
	return model.SubscribeAck{ChannelID: *m.ChannelID, Symbol: *m.Symbol}, nil
}

// channelFrame splits [chanId, body] and rejects any other arity.
func channelFrame(payload []byte) (uint64, json.RawMessage, error) {
	var frame []json.RawMessage
	if err := json.Unmarshal(payload, &frame); err != nil {
		return 0, nil, err
	}
	if len(frame) != 2 {
		return 0, nil, fmt.Errorf("channel frame has %d elements, want 2", len(frame))
	}
	var channelID uint64
	if err := json.Unmarshal(frame[0], &channelID); err != nil {
		return 0, nil, fmt.Errorf("channel id: %w", err)
	}
	return channelID, frame[1], nil
}

func (Codec) DecodeSnapshot(payload []byte) (model.Snapshot, error) {
	channelID, body, err := channelFrame(payload)
	if err != nil {
		return model.Snapshot{}, err
	}
	levels, err := decodeLevels(body)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{ChannelID: channelID, Levels: levels}, nil
}

func (Codec) DecodeUpdate(payload []byte) (model.Update, error) {
	channelID, body, err := channelFrame(payload)
	if err != nil {
		return model.Update{}, err
	}
	var level wireLevel
	if err := json.Unmarshal(body, &level); err != nil {
		return model.Update{}, err
	}
	return model.Update{ChannelID: channelID, Level: model.RawLevel(level)}, nil
}

func decodeLevels(body []byte) ([]model.RawLevel, error) {
	var wire []wireLevel
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, err
	}
	levels := make([]model.RawLevel, 0, len(wire))
	for _, l := range wire {
		levels = append(levels, model.RawLevel(l))
	}
	return levels, nil
}
