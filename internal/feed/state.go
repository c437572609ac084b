package feed

type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateAwaitingServerInfo
	StateSubscribing
	StateAwaitingSubscribeAck
	StateAwaitingSnapshot
	StateStreaming
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAwaitingServerInfo:
		return "awaiting server info"
	case StateSubscribing:
		return "subscribing"
	case StateAwaitingSubscribeAck:
		return "awaiting subscribe ack"
	case StateAwaitingSnapshot:
		return "awaiting snapshot"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
