package memory

import (
	"context"
	"sync/atomic"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/prockit/kernel"
	"github.com/dogmatiq/prockit/marshal"
	"github.com/google/uuid"
)

// unit is a single execution unit hosted by an in-memory kernel.
//
// It implements kernel.Self for the code running inside it. The goroutine
// running that code is the only consumer of the unit's inbox; everything
// else the unit owns is reached through the kernel's registry.
type unit struct {
	k      *Kernel
	handle kernel.UnitID
	id     uuid.UUID
	logger logging.Logger
	inbox  *inbox
	tags   atomic.Int64
	done   chan struct{}

	// ctx is canceled, with the termination cause, when the unit is
	// killed or the kernel shuts down.
	ctx    context.Context
	cancel context.CancelCauseFunc

	// The fields below are guarded by k.m.
	links      map[kernel.UnitID]struct{}
	terminated bool  // a termination decision has been made
	fault      error // non-nil if that decision was abnormal
	dead       bool  // the goroutine has finished
}

// Handle returns the local handle of this unit.
func (u *unit) Handle() kernel.UnitID {
	return u.handle
}

// ID returns the stable global identifier of this unit.
func (u *unit) ID() uuid.UUID {
	return u.id
}

// NextTag returns a tag distinct from every tag previously returned by this
// unit.
func (u *unit) NextTag() kernel.Tag {
	return kernel.Tag(u.tags.Add(1))
}

// Context returns a context that is canceled when this unit is terminated.
func (u *unit) Context() context.Context {
	return u.ctx
}

// Marshaler returns the serializer this unit uses for its messages.
func (u *unit) Marshaler() marshal.Marshaler {
	return u.k.opts.Marshaler
}

// SpawnUnit allocates a new unit running the bootstrap function registered
// at index b, invoked with handler index h.
func (u *unit) SpawnUnit(link bool, b, h kernel.Index) (kernel.UnitID, uuid.UUID, error) {
	return u.k.spawn(u, link, b, h)
}

// Send delivers env to the inbox of the target unit.
func (u *unit) Send(to kernel.UnitID, env kernel.Envelope) error {
	return u.k.deliver(to, env)
}

// Receive blocks until the next envelope arrives, in FIFO order.
func (u *unit) Receive(ctx context.Context) (kernel.Envelope, error) {
	return u.inbox.receive(ctx, u.ctx, matchAny)
}

// ReceiveMatching blocks until an envelope with one of the given tags
// arrives, leaving non-matching envelopes queued.
func (u *unit) ReceiveMatching(ctx context.Context, tags ...kernel.Tag) (kernel.Envelope, error) {
	if len(tags) == 0 {
		panic("at least one tag must be specified")
	}

	return u.inbox.receive(ctx, u.ctx, matchTags(tags))
}

func matchAny(kernel.Envelope) bool {
	return true
}

func matchTags(tags []kernel.Tag) func(kernel.Envelope) bool {
	return func(env kernel.Envelope) bool {
		for _, t := range tags {
			if env.Tag == t {
				return true
			}
		}

		return false
	}
}
