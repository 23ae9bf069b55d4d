package engine

import "github.com/mistveil/server/internal/net/packet"

// Message is one (action-code, payload) pair queued for delivery.
type Message struct {
	Action  byte
	Payload []byte
}

// tickBuffer collects one tick's worth of output.
type tickBuffer struct {
	broadcast []Message
	perUser   map[int32][]Message
}

func newTickBuffer() *tickBuffer {
	return &tickBuffer{perUser: make(map[int32][]Message)}
}

func (b *tickBuffer) reset() {
	b.broadcast = b.broadcast[:0]
	clear(b.perUser)
}

// Outgoing is the double-buffered outgoing-packet queue: two growable buffers
// swapped by reference. Producers during tick N enqueue into "next"; at the
// end of tick N the buffers swap and "now" is flushed. Every subsystem
// therefore observes a full, stable tick's worth of changes before anything
// is wire-sent, and messages queued between ticks are never lost or
// duplicated. Game-loop goroutine only — no locks.
type Outgoing struct {
	now  *tickBuffer
	next *tickBuffer
}

func NewOutgoing() *Outgoing {
	return &Outgoing{now: newTickBuffer(), next: newTickBuffer()}
}

// QueueBroadcast enqueues a message for every connected client next flush.
func (o *Outgoing) QueueBroadcast(action byte, payload []byte) {
	o.next.broadcast = append(o.next.broadcast, Message{Action: action, Payload: payload})
}

// QueueFor enqueues a message for one user next flush.
func (o *Outgoing) QueueFor(userID int32, action byte, payload []byte) {
	o.next.perUser[userID] = append(o.next.perUser[userID], Message{Action: action, Payload: payload})
}

// Swap rotates next → now and clears the new next buffer. Called exactly once
// per tick, at the start of the flush step.
func (o *Outgoing) Swap() {
	o.now, o.next = o.next, o.now
	o.next.reset()
}

// Flush hands the swapped-in buffer to the sender. For each recipient the
// sender is called at most once with one ordered batch: the merged broadcast
// list followed by that user's messages — assembled independently, never
// interleaved mid-tick. send must not mutate the batch.
func (o *Outgoing) Flush(userIDs []int32, send func(userID int32, batch []Message)) {
	for _, uid := range userIDs {
		user := o.now.perUser[uid]
		if len(o.now.broadcast) == 0 && len(user) == 0 {
			continue
		}
		batch := make([]Message, 0, len(o.now.broadcast)+len(user))
		batch = append(batch, o.now.broadcast...)
		batch = append(batch, user...)
		send(uid, batch)
	}
}

// PendingFor returns the not-yet-swapped messages queued for a user. Test and
// diagnostics hook; gameplay code never reads the buffers back.
func (o *Outgoing) PendingFor(userID int32) []Message {
	return o.next.perUser[userID]
}

// PendingBroadcast returns the not-yet-swapped broadcast list.
func (o *Outgoing) PendingBroadcast() []Message {
	return o.next.broadcast
}

// EncodeBatch builds the single aggregated wire frame for one recipient:
// [2B count] then per message [1B action][2B length][payload].
func EncodeBatch(batch []Message) []byte {
	w := packet.NewWriter()
	w.WriteH(uint16(len(batch)))
	for _, m := range batch {
		w.WriteC(m.Action)
		w.WriteH(uint16(len(m.Payload)))
		w.WriteBytes(m.Payload)
	}
	return w.Bytes()
}
