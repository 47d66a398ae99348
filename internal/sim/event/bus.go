package event

import "fmt"

// Listener observes published events. A returned error (or a panic) is
// captured by the bus as an error event; it never propagates to the
// publisher and never blocks later listeners.
type Listener func(Event) error

// Bus keeps a bounded ring of published events and dispatches each one
// synchronously to its listeners. Not safe for concurrent use; the
// world publishes from the tick path only.
type Bus struct {
	cap  int
	ring []Event
	head int // index of oldest
	size int

	nextSeq uint64

	global  []Listener
	scoped  map[Kind][]Listener
	inError bool
}

func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 1
	}
	return &Bus{
		cap:    capacity,
		ring:   make([]Event, capacity),
		scoped: map[Kind][]Listener{},
	}
}

// Subscribe registers a listener for every event kind.
func (b *Bus) Subscribe(l Listener) { b.global = append(b.global, l) }

// SubscribeKind registers a listener for one event kind.
func (b *Bus) SubscribeKind(k Kind, l Listener) {
	b.scoped[k] = append(b.scoped[k], l)
}

// Publish assigns the next sequence number, appends to the ring
// (evicting the oldest event past capacity), then invokes global
// listeners followed by kind-scoped listeners, each set in registration
// order. Returns the stored event.
func (b *Bus) Publish(kind Kind, minute uint64, source string, payload map[string]any) Event {
	e := Event{Kind: kind, Minute: minute, Source: source, Payload: payload}
	b.nextSeq++
	e.Seq = b.nextSeq
	b.append(e)

	for _, l := range b.global {
		b.dispatch(l, e)
	}
	for _, l := range b.scoped[kind] {
		b.dispatch(l, e)
	}
	return e
}

func (b *Bus) dispatch(l Listener, e Event) {
	err := b.invoke(l, e)
	if err == nil {
		return
	}
	// Listener failures become history, not control flow. Error events
	// are recorded without re-dispatch so a failing error-listener
	// cannot recurse.
	if b.inError {
		return
	}
	b.inError = true
	fe := Event{Kind: KindError, Minute: e.Minute, Source: e.Source, Payload: map[string]any{
		"listener_error": err.Error(),
		"event_seq":      e.Seq,
		"event_kind":     string(e.Kind),
	}}
	b.nextSeq++
	fe.Seq = b.nextSeq
	b.append(fe)
	b.inError = false
}

func (b *Bus) invoke(l Listener, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panic: %v", r)
		}
	}()
	return l(e)
}

func (b *Bus) append(e Event) {
	if b.size < b.cap {
		b.ring[(b.head+b.size)%b.cap] = e
		b.size++
		return
	}
	// Full: overwrite oldest.
	b.ring[b.head] = e
	b.head = (b.head + 1) % b.cap
}

// Recent returns the last n events in ascending sequence order. It
// never mutates bus state.
func (b *Bus) Recent(n int) []Event {
	if n <= 0 || b.size == 0 {
		return nil
	}
	if n > b.size {
		n = b.size
	}
	out := make([]Event, 0, n)
	start := b.size - n
	for i := start; i < b.size; i++ {
		out = append(out, b.ring[(b.head+i)%b.cap])
	}
	return out
}

// Len reports the current history length (≤ capacity).
func (b *Bus) Len() int { return b.size }

// LastSeq reports the most recently assigned sequence number.
func (b *Bus) LastSeq() uint64 { return b.nextSeq }

// Restore reloads history after a snapshot deserialize. The sequence
// counter resumes from the highest restored event.
func (b *Bus) Restore(events []Event) {
	b.head, b.size = 0, 0
	for _, e := range events {
		b.append(e)
		if e.Seq > b.nextSeq {
			b.nextSeq = e.Seq
		}
	}
}
