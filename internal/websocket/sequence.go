package websocket

import (
	"sync"
	"sync/atomic"
)

// sequencer hands out gap-free, per-topic sequence numbers starting at 1.
type sequencer struct {
	topics sync.Map // map[string]*atomic.Uint64
}

func (s *sequencer) next(topic string) uint64 {
	v, _ := s.topics.LoadOrStore(topic, new(atomic.Uint64))
	return v.(*atomic.Uint64).Add(1)
}
