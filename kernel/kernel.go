// Package kernel defines the capability contracts that the process-actor
// core consumes from the hosting environment.
//
// The core never talks to a scheduler or transport directly. It is written
// against three capabilities: spawning a new isolated unit (Spawner),
// exchanging one-way messages (Transport), and the identity of the unit the
// calling code runs inside (Self). An implementation of these capabilities
// lives in the kernel/memory package; a different host (a WASM runtime, an
// out-of-process scheduler) can substitute its own.
package kernel

import (
	"context"

	"github.com/dogmatiq/prockit/marshal"
	"github.com/google/uuid"
)

// UnitID is the local handle of an execution unit.
//
// It is unique within a single kernel and never reused while any reference
// to the unit may still be observed. It carries no meaning outside the
// kernel that issued it; the stable, global identity of a unit is its
// uuid.UUID key.
type UnitID uint64

// Tag is a correlation token used to match a reply to the request that
// produced it.
//
// Tags are unique within the lifetime of the unit that generated them. They
// have no meaning to any other unit, and no meaning outside the exchange
// that created them. Two different units may generate equal tags; that is
// not a collision, because a unit only ever filters its own mailbox against
// its own outstanding tags.
type Tag int64

// Untagged is the Tag value carried by envelopes that are not replies, such
// as request deliveries and state-transfer payloads.
const Untagged Tag = 0

// Envelope is the unit of exchange on the one-way transport.
//
// The payload is an opaque marshaled packet; only the tag is visible to the
// transport, so that a receiver can filter replies without decoding
// unrelated traffic.
type Envelope struct {
	Tag    Tag
	Packet marshal.Packet
}

// Spawner is the capability used to allocate new execution units.
type Spawner interface {
	// SpawnUnit allocates a new isolated unit running the bootstrap
	// function registered at index b, which is invoked with the handler
	// index h.
	//
	// Only these two scalar indices cross the isolation boundary; any
	// state the new unit needs must be delivered to it as a message after
	// it starts.
	//
	// If link is true a bidirectional failure link is established between
	// the calling unit and the new unit before the new unit runs.
	//
	// It returns the local handle and global key of the new unit. If the
	// allocation is refused it returns a *SpawnError describing the
	// refusal.
	SpawnUnit(link bool, b, h Index) (UnitID, uuid.UUID, error)
}

// Transport is the capability used to exchange one-way messages.
//
// Delivery is reliable and order-preserving for a single sender/receiver
// pair. No ordering is guaranteed across different senders to the same
// receiver.
type Transport interface {
	// Send delivers env to the inbox of the target unit.
	//
	// It returns ErrUnitNotFound if the target has already terminated. A
	// successful send says nothing about whether the target will ever
	// consume the envelope.
	Send(to UnitID, env Envelope) error

	// Receive blocks until the next envelope arrives, in FIFO order,
	// regardless of its tag.
	//
	// It returns a non-nil error only if ctx is canceled or the receiving
	// unit is being terminated.
	Receive(ctx context.Context) (Envelope, error)

	// ReceiveMatching blocks until an envelope with one of the given tags
	// arrives.
	//
	// Envelopes with non-matching tags that arrive in the meantime remain
	// queued, in arrival order, for later calls to Receive or
	// ReceiveMatching.
	ReceiveMatching(ctx context.Context, tags ...Tag) (Envelope, error)
}

// Self is the complete capability set granted to code running inside an
// execution unit.
//
// There is no ambient "current unit"; any code that needs its own identity,
// or needs to spawn or communicate, receives a Self explicitly.
type Self interface {
	Spawner
	Transport

	// Handle returns the local handle of this unit.
	Handle() UnitID

	// ID returns the stable global identifier of this unit.
	ID() uuid.UUID

	// NextTag returns a tag that is distinct from every tag previously
	// returned by this unit.
	NextTag() Tag

	// Context returns a context that is canceled when this unit is
	// terminated. Blocking operations inside the unit use it as their
	// root context.
	Context() context.Context

	// Marshaler returns the serializer this unit uses for its messages.
	Marshaler() marshal.Marshaler
}
