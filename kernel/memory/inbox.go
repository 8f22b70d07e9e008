package memory

import (
	"context"
	"sync"

	"github.com/dogmatiq/prockit/kernel"
)

// inbox is the kernel-side message queue of a single unit.
//
// There are many producers but exactly one consumer, the owning unit, so a
// blocked receive is represented by a single wake channel rather than a
// condition variable.
type inbox struct {
	m         sync.Mutex
	queue     []kernel.Envelope
	delivered int

	// arrived is signaled (non-blocking) whenever an envelope is pushed
	// while the consumer may be waiting.
	arrived chan struct{}
}

func newInbox() *inbox {
	return &inbox{
		arrived: make(chan struct{}, 1),
	}
}

// push appends env to the queue and wakes the consumer if it is blocked.
func (b *inbox) push(env kernel.Envelope) {
	b.m.Lock()
	b.queue = append(b.queue, env)
	b.delivered++
	b.m.Unlock()

	select {
	case b.arrived <- struct{}{}:
	default:
	}
}

// pop removes and returns the oldest envelope accepted by match.
//
// Envelopes rejected by match keep their position in the queue.
func (b *inbox) pop(match func(kernel.Envelope) bool) (kernel.Envelope, bool) {
	b.m.Lock()
	defer b.m.Unlock()

	for i, env := range b.queue {
		if match(env) {
			b.queue = append(b.queue[:i:i], b.queue[i+1:]...)
			return env, true
		}
	}

	return kernel.Envelope{}, false
}

// receive blocks until an envelope accepted by match is available, or until
// one of the given contexts is canceled.
//
// life is the lifecycle context of the owning unit; ctx is the context of
// the individual receive call.
func (b *inbox) receive(
	ctx context.Context,
	life context.Context,
	match func(kernel.Envelope) bool,
) (kernel.Envelope, error) {
	for {
		if env, ok := b.pop(match); ok {
			return env, nil
		}

		select {
		case <-ctx.Done():
			return kernel.Envelope{}, ctx.Err()
		case <-life.Done():
			return kernel.Envelope{}, context.Cause(life)
		case <-b.arrived:
		}
	}
}

// stats returns the current queue length and the total number of envelopes
// ever delivered.
func (b *inbox) stats() (queued, delivered int) {
	b.m.Lock()
	defer b.m.Unlock()

	return len(b.queue), b.delivered
}
