package shared

import "sync"

// Hub fans snapshots out to subscribers in publish order.
//
// Every publish is stamped with a sequence number while the owner's lock is
// held. Delivery happens after the owner is released, so listeners may call
// the owner's read methods. A publish that reaches delivery after a newer one
// has already been delivered is dropped.
//
// The zero value is ready to use. When Clone is set each listener receives its own copy.
type Hub[T any] struct {
	Clone func(T) T

	mu        sync.Mutex
	subs      map[int]func(T)
	next      int
	seq       uint64
	notify    sync.Mutex
	delivered uint64
}

// Subscribe registers fn and returns a func that removes it.
func (h *Hub[T]) Subscribe(fn func(T)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]func(T))
	}
	id := h.next
	h.next++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Publish delivers v to every subscriber. The caller must hold owner; Publish releases it.
func (h *Hub[T]) Publish(owner *sync.Mutex, v T) {
	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.mu.Unlock()
	owner.Unlock()

	h.notify.Lock()
	defer h.notify.Unlock()
	if seq <= h.delivered {
		return
	}
	h.delivered = seq

	h.mu.Lock()
	listeners := make([]func(T), 0, len(h.subs))
	for _, fn := range h.subs {
		listeners = append(listeners, fn)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		if h.Clone != nil {
			fn(h.Clone(v))
			continue
		}
		fn(v)
	}
}
