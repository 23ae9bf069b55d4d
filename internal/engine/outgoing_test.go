package engine

import (
	"bytes"
	"testing"
)

func flushAll(o *Outgoing, userIDs []int32) map[int32][]Message {
	got := make(map[int32][]Message)
	o.Swap()
	o.Flush(userIDs, func(uid int32, batch []Message) {
		got[uid] = batch
	})
	return got
}

func TestQueueGoesToNextNotNow(t *testing.T) {
	o := NewOutgoing()
	o.QueueFor(1, 10, []byte{0xAA})

	// Before a swap nothing flushes.
	sent := 0
	o.Flush([]int32{1}, func(int32, []Message) { sent++ })
	if sent != 0 {
		t.Fatalf("expected nothing flushed before swap, got %d calls", sent)
	}

	got := flushAll(o, []int32{1})
	if len(got[1]) != 1 || got[1][0].Action != 10 {
		t.Fatalf("expected queued message after swap, got %v", got[1])
	}
}

func TestFlushOneBatchPerRecipient(t *testing.T) {
	o := NewOutgoing()
	o.QueueBroadcast(1, []byte{0x01})
	o.QueueBroadcast(2, []byte{0x02})
	o.QueueFor(7, 3, []byte{0x03})

	calls := make(map[int32]int)
	o.Swap()
	var batch7 []Message
	o.Flush([]int32{7, 8}, func(uid int32, batch []Message) {
		calls[uid]++
		if uid == 7 {
			batch7 = batch
		} else if len(batch) != 2 {
			t.Fatalf("expected user 8 to get only broadcasts, got %v", batch)
		}
	})

	if calls[7] != 1 || calls[8] != 1 {
		t.Fatalf("expected exactly one call per recipient, got %v", calls)
	}
	// Broadcasts first, in queue order, then the per-user message.
	if len(batch7) != 3 || batch7[0].Action != 1 || batch7[1].Action != 2 || batch7[2].Action != 3 {
		t.Fatalf("expected ordered batch [1 2 3], got %v", batch7)
	}
}

func TestSwapDoesNotLoseOrDuplicate(t *testing.T) {
	o := NewOutgoing()
	o.QueueFor(1, 5, nil)

	got := flushAll(o, []int32{1})
	if len(got[1]) != 1 {
		t.Fatalf("expected 1 message in first flush, got %d", len(got[1]))
	}

	// Queue during what would be the next tick, then flush again: the old
	// message must not reappear.
	o.QueueFor(1, 6, nil)
	got = flushAll(o, []int32{1})
	if len(got[1]) != 1 || got[1][0].Action != 6 {
		t.Fatalf("expected only the new message, got %v", got[1])
	}
}

func TestFlushSkipsIdleRecipients(t *testing.T) {
	o := NewOutgoing()
	o.QueueFor(2, 9, nil)

	got := flushAll(o, []int32{1, 2})
	if _, ok := got[1]; ok {
		t.Fatalf("expected no send call for a user with nothing queued")
	}
	if len(got[2]) != 1 {
		t.Fatalf("expected user 2 to receive its message, got %v", got[2])
	}
}

func TestEncodeBatchLayout(t *testing.T) {
	frame := EncodeBatch([]Message{
		{Action: 0x64, Payload: []byte{0x01, 0x02}},
		{Action: 0x65, Payload: nil},
	})

	want := []byte{
		0x02, 0x00, // count, little-endian
		0x64, 0x02, 0x00, 0x01, 0x02, // action, length, payload
		0x65, 0x00, 0x00, // empty payload
	}
	if !bytes.Equal(frame, want) {
		t.Fatalf("frame mismatch\n got %v\nwant %v", frame, want)
	}
}
