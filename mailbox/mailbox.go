// Package mailbox provides the typed inbox of an execution unit.
package mailbox

import (
	"context"
	"fmt"

	"github.com/dogmatiq/prockit/kernel"
	"github.com/dogmatiq/prockit/marshal"
)

// Mailbox delivers inbound messages of type M to the unit that owns it.
//
// A unit has exactly one logical control path, so receiving suspends the
// unit cooperatively; it never occupies another unit's time.
type Mailbox[M any] struct {
	transport kernel.Transport
	marshaler marshal.Marshaler
}

// New returns the mailbox of the given unit, typed for messages of type M.
func New[M any](self kernel.Self) Mailbox[M] {
	return Mailbox[M]{self, self.Marshaler()}
}

// Receive blocks until the next message arrives and returns it.
//
// Messages are returned in arrival order. It returns a non-nil error only
// if ctx is canceled or the owning unit is being terminated.
func (mb Mailbox[M]) Receive(ctx context.Context) (M, error) {
	env, err := mb.transport.Receive(ctx)
	if err != nil {
		var zero M
		return zero, err
	}

	return mb.decode(env), nil
}

// ReceiveMatching blocks until a message carrying one of the given tags
// arrives and returns it.
//
// Messages with non-matching tags that arrive first remain queued; they are
// observed by later calls to Receive or ReceiveMatching, allowing unrelated
// exchanges to interleave without loss.
func (mb Mailbox[M]) ReceiveMatching(ctx context.Context, tags ...kernel.Tag) (M, error) {
	env, err := mb.transport.ReceiveMatching(ctx, tags...)
	if err != nil {
		var zero M
		return zero, err
	}

	return mb.decode(env), nil
}

// decode unmarshals the payload of env.
//
// Message types are a static contract between sender and receiver. Bytes
// that do not decode as M indicate that contract is broken, which is not a
// recoverable condition for the receiving unit.
func (mb Mailbox[M]) decode(env kernel.Envelope) M {
	var v M

	if err := mb.marshaler.Unmarshal(env.Packet, &v); err != nil {
		panic(fmt.Sprintf(
			"mailbox: unable to decode inbound message as %T: %s",
			v,
			err,
		))
	}

	return v
}
