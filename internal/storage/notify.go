package storage

import "sync"

// Notifier fans out coalescing change signals per group. Store
// implementations embed one and call Broadcast after every committed write;
// the orchestration layer consumes the channels via Store.Watch.
//
// Channels are buffered with capacity one and sends never block: a
// subscriber that has not drained its pending signal simply keeps the one
// already queued. Receivers re-read the full snapshot on every signal, so
// dropped intermediate signals lose nothing. Latest wins.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan struct{}
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[int]chan struct{})}
}

// Watch subscribes to change signals for a group. The returned cancel func
// must be called to release the subscription; the channel is closed on
// cancel.
func (n *Notifier) Watch(groupID string) (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.next
	n.next++

	ch := make(chan struct{}, 1)
	if n.subs[groupID] == nil {
		n.subs[groupID] = make(map[int]chan struct{})
	}
	n.subs[groupID][id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[groupID][id]; ok {
			delete(n.subs[groupID], id)
			close(sub)
		}
	}
	return ch, cancel
}

// Broadcast signals every subscriber of the group without blocking.
func (n *Notifier) Broadcast(groupID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs[groupID] {
		select {
		case ch <- struct{}{}:
		default: // signal already pending
		}
	}
}
