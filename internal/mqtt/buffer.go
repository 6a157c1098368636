package mqtt

// DefaultBufferSize is how many messages are kept while the broker is unreachable.
const DefaultBufferSize = 500

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO holding messages until they are delivered.
// Not safe for concurrent use; the caller synchronizes.
type ringBuffer struct {
	buf      []bufferedMsg
	capacity int
	head     int // next write position
	count    int
	overflow bool // true if any message was dropped since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{
		buf:      make([]bufferedMsg, capacity),
		capacity: capacity,
	}
}

// push appends msg, overwriting the oldest entry when full. It reports true
// only for the first drop since the last drain, so callers log once.
func (r *ringBuffer) push(msg bufferedMsg) (firstDrop bool) {
	if r.count == r.capacity {
		firstDrop = !r.overflow
		r.overflow = true
		// head already points at the oldest entry
		r.buf[r.head] = msg
		r.head = (r.head + 1) % r.capacity
		return firstDrop
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % r.capacity
	r.count++
	return false
}

func (r *ringBuffer) drainAll() []bufferedMsg {
	if r.count == 0 {
		return nil
	}

	result := make([]bufferedMsg, r.count)
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}
