package mqtt

import (
	"testing"
)

func pushN(rb *ringBuffer, from, n int) (drops int) {
	for i := from; i < from+n; i++ {
		if rb.push(bufferedMsg{topic: Topic, payload: []byte{byte(i)}}) {
			drops++
		}
	}
	return drops
}

func TestRingBufferEmptyDrain(t *testing.T) {
	rb := newRingBuffer(10)
	if got := rb.drainAll(); got != nil {
		t.Errorf("expected nil from empty drain, got %d items", len(got))
	}
}

func TestRingBufferKeepsOrder(t *testing.T) {
	rb := newRingBuffer(10)
	pushN(rb, 0, 5)

	got := rb.drainAll()
	if len(got) != 5 {
		t.Fatalf("expected 5 items, got %d", len(got))
	}
	for i, msg := range got {
		if msg.payload[0] != byte(i) {
			t.Errorf("item %d: expected payload %d, got %d", i, i, msg.payload[0])
		}
	}
	if rb.len() != 0 {
		t.Errorf("expected empty buffer after drain, got %d", rb.len())
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	rb := newRingBuffer(4)

	// 0..6 into 4 slots keeps 3..6.
	if drops := pushN(rb, 0, 7); drops != 1 {
		t.Errorf("expected a single first-drop report, got %d", drops)
	}

	got := rb.drainAll()
	if len(got) != 4 {
		t.Fatalf("expected 4 items, got %d", len(got))
	}
	for i, msg := range got {
		if want := byte(i + 3); msg.payload[0] != want {
			t.Errorf("item %d: expected payload %d, got %d", i, want, msg.payload[0])
		}
	}
}

func TestRingBufferDrainResetsOverflow(t *testing.T) {
	rb := newRingBuffer(2)
	pushN(rb, 0, 3)
	rb.drainAll()

	if drops := pushN(rb, 10, 3); drops != 1 {
		t.Errorf("expected overflow to be reported again after drain, got %d", drops)
	}
	got := rb.drainAll()
	if len(got) != 2 || got[0].payload[0] != 11 || got[1].payload[0] != 12 {
		t.Errorf("unexpected contents after second cycle: %+v", got)
	}
}

func TestRingBufferMinimumCapacity(t *testing.T) {
	rb := newRingBuffer(0)
	pushN(rb, 0, 3)
	got := rb.drainAll()
	if len(got) != 1 || got[0].payload[0] != 2 {
		t.Errorf("expected only the newest message, got %+v", got)
	}
}

func TestRingBufferPreservesFields(t *testing.T) {
	rb := newRingBuffer(10)
	rb.push(bufferedMsg{
		topic:    TopicSystem,
		payload:  []byte(`{"system":{"event":"HEARTBEAT"}}`),
		qos:      1,
		retained: true,
	})

	got := rb.drainAll()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].topic != TopicSystem {
		t.Errorf("topic: got %s, want %s", got[0].topic, TopicSystem)
	}
	if string(got[0].payload) != `{"system":{"event":"HEARTBEAT"}}` {
		t.Errorf("payload: got %s", got[0].payload)
	}
	if got[0].qos != 1 || !got[0].retained {
		t.Errorf("qos/retained not preserved: %+v", got[0])
	}
}
