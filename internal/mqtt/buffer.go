package mqtt

import "go.uber.org/zap"

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineBuffer holds messages published while the broker is unreachable.
// When full it evicts the oldest non-retained message, so retained lifecycle
// events (STARTUP, SHUTDOWN) outlive a burst of button events. Only when
// every slot is retained is the oldest retained message evicted.
// Not safe for concurrent use: caller must synchronize.
type offlineBuffer struct {
	msgs     []bufferedMsg
	capacity int
	dropped  int
	log      *zap.SugaredLogger
}

func newOfflineBuffer(capacity int, log *zap.SugaredLogger) *offlineBuffer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &offlineBuffer{
		msgs:     make([]bufferedMsg, 0, capacity),
		capacity: capacity,
		log:      log,
	}
}

func (r *offlineBuffer) push(msg bufferedMsg) {
	if len(r.msgs) < r.capacity {
		r.msgs = append(r.msgs, msg)
		return
	}

	if r.dropped == 0 {
		r.log.Warnf("offline buffer full (%d messages), dropping oldest events", r.capacity)
	}
	r.dropped++

	victim := 0
	for i, m := range r.msgs {
		if !m.retained {
			victim = i
			break
		}
	}
	copy(r.msgs[victim:], r.msgs[victim+1:])
	r.msgs[len(r.msgs)-1] = msg
}

// drainAll empties the buffer and returns its messages oldest first,
// along with how many were dropped since the previous drain.
func (r *offlineBuffer) drainAll() ([]bufferedMsg, int) {
	dropped := r.dropped
	r.dropped = 0
	if len(r.msgs) == 0 {
		return nil, dropped
	}

	out := r.msgs
	r.msgs = make([]bufferedMsg, 0, r.capacity)
	return out, dropped
}

func (r *offlineBuffer) len() int {
	return len(r.msgs)
}
