package relay

import "sync"

// MemoryRelay is an in-process Relay used by tests and by the degraded
// single-process mode. It keeps the bus contract: per-subject publish order
// is preserved per subscriber, delivery is best-effort (a slow subscriber
// drops events rather than blocking publishers), and there is no replay.
type MemoryRelay struct {
	mu   sync.RWMutex
	subs map[string][]*memorySubscription
}

func NewMemoryRelay() *MemoryRelay {
	return &MemoryRelay{subs: make(map[string][]*memorySubscription)}
}

type memorySubscription struct {
	relay   *MemoryRelay
	subject string
	ch      chan []byte
	done    chan struct{}
	once    sync.Once
}

func (r *MemoryRelay) Publish(subject string, payload []byte) error {
	r.mu.RLock()
	subs := append([]*memorySubscription(nil), r.subs[subject]...)
	r.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.ch <- payload:
		default: // subscriber too slow, event dropped
		}
	}
	return nil
}

func (r *MemoryRelay) Subscribe(subject string, handler func(payload []byte)) (Subscription, error) {
	sub := &memorySubscription{
		relay:   r,
		subject: subject,
		ch:      make(chan []byte, 64),
		done:    make(chan struct{}),
	}

	r.mu.Lock()
	r.subs[subject] = append(r.subs[subject], sub)
	r.mu.Unlock()

	go func() {
		for {
			select {
			case <-sub.done:
				return
			case payload := <-sub.ch:
				handler(payload)
			}
		}
	}()
	return sub, nil
}

func (s *memorySubscription) Unsubscribe() error {
	s.once.Do(func() {
		s.relay.mu.Lock()
		subs := s.relay.subs[s.subject]
		for i, candidate := range subs {
			if candidate == s {
				s.relay.subs[s.subject] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		s.relay.mu.Unlock()
		close(s.done)
	})
	return nil
}
