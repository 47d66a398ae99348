package clock

import "container/heap"

// Callback runs when its trigger minute is crossed by Advance. It sees
// the snapshot at the trigger point, not the end of the span.
type Callback func(now Snapshot)

type entry struct {
	at    uint64
	every uint64 // 0 for one-shot
	seq   uint64 // insertion order, breaks at-ties
	id    uint64
	fn    Callback
}

type scheduler struct {
	h       entryHeap
	nextSeq uint64
	nextID  uint64
	dead    map[uint64]bool
}

// ScheduleAt registers a one-shot callback for the given minute. A
// trigger minute already in the past fires on the next Advance.
func (c *Clock) ScheduleAt(minute uint64, fn Callback) uint64 {
	return c.sched.add(entry{at: minute, fn: fn})
}

// ScheduleEvery registers a recurring callback starting at start and
// repeating every interval minutes thereafter.
func (c *Clock) ScheduleEvery(start, interval uint64, fn Callback) uint64 {
	if interval == 0 {
		return c.ScheduleAt(start, fn)
	}
	return c.sched.add(entry{at: start, every: interval, fn: fn})
}

// CancelSchedule drops a registration. Unknown ids are a no-op.
func (c *Clock) CancelSchedule(id uint64) {
	if c.sched.dead == nil {
		c.sched.dead = map[uint64]bool{}
	}
	c.sched.dead[id] = true
}

func (s *scheduler) add(e entry) uint64 {
	s.nextSeq++
	s.nextID++
	e.seq = s.nextSeq
	e.id = s.nextID
	s.push(e)
	return e.id
}

func (s *scheduler) push(e entry) { heap.Push(&s.h, e) }

func (s *scheduler) pop() entry { return heap.Pop(&s.h).(entry) }

// peekDue returns the head entry if it triggers at or before limit,
// skipping cancelled registrations.
func (s *scheduler) peekDue(limit uint64) (entry, bool) {
	for len(s.h) > 0 {
		head := s.h[0]
		if head.at > limit {
			return entry{}, false
		}
		if s.dead[head.id] {
			heap.Pop(&s.h)
			continue
		}
		return head, true
	}
	return entry{}, false
}

type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
