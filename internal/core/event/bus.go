package event

// Bus is a synchronous publish/subscribe channel. Emit invokes every
// subscriber for the event's kind, in subscription order, before returning;
// there is no cross-tick queuing inside the bus. Accessed only from the game
// loop goroutine — no locks.
//
// Subscribers must not re-enter the emitting subsystem in a way that mutates
// the collection the emitter is iterating; emitters that remove entries do a
// collect pass first and emit from the collected slice.
type Bus struct {
	handlers map[Kind][]Handler
}

// Handler receives events of the kind it was subscribed under. Implementations
// type-switch to the concrete event type.
type Handler func(Event)

func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]Handler)}
}

// Subscribe registers a handler for one event kind.
func (b *Bus) Subscribe(k Kind, h Handler) {
	b.handlers[k] = append(b.handlers[k], h)
}

// Emit delivers ev to all current subscribers of its kind, synchronously.
func (b *Bus) Emit(ev Event) {
	for _, h := range b.handlers[ev.EventKind()] {
		h(ev)
	}
}
