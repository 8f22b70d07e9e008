package prockit

import (
	"fmt"
	"reflect"

	"github.com/dogmatiq/prockit/envelope"
	"github.com/dogmatiq/prockit/kernel"
	"github.com/dogmatiq/prockit/mailbox"
	"github.com/dogmatiq/prockit/process"
)

// Handler is a state-transition function that answers requests.
//
// It is invoked once per request, always from the single control path of
// the unit that owns state, so it needs no synchronization. It must be a
// plain function; any state it needs lives in C, which is transferred to
// the serving unit when it is spawned.
type Handler[C, M, R any] func(state *C, req M) R

// Spawn allocates a new execution unit that owns the given state and
// answers requests of type M with responses of type R, forever.
//
// The state is transferred to the new unit exactly once, by value, via
// serialization; the caller's copy is never consulted again. If C is a
// zero-sized type there is nothing to transfer and the new unit starts from
// the zero value immediately.
//
// Spawning fails if the kernel refuses to allocate a unit; the returned
// error is a *kernel.SpawnError describing the refusal.
func Spawn[C, M, R any](
	self kernel.Self,
	state C,
	handler Handler[C, M, R],
) (Server[M, R], error) {
	return spawn(self, false, state, handler)
}

// SpawnLink behaves as Spawn, and additionally establishes a bidirectional
// failure link between the calling unit and the new unit.
//
// If either linked unit terminates abnormally the other is terminated with
// a fault of its own. The link exists from before the new unit runs; there
// is no window in which a failure goes unnoticed.
func SpawnLink[C, M, R any](
	self kernel.Self,
	state C,
	handler Handler[C, M, R],
) (Server[M, R], error) {
	return spawn(self, true, state, handler)
}

// spawn performs the low-level dance that turns a plain function and a
// state value into a serving unit.
//
// The spawn capability transfers only two scalar indices into the function
// table: one naming the bootstrap loop specialized for this call's types,
// one naming the handler. The state cannot ride along; it is delivered as
// the new unit's first message, and the unit's first action is to wait for
// it. The state is marshaled before the unit is allocated, so a state that
// can not cross the boundary fails the spawn while there is still nothing
// to leak.
func spawn[C, M, R any](
	self kernel.Self,
	link bool,
	state C,
	handler Handler[C, M, R],
) (Server[M, R], error) {
	var init kernel.Envelope

	transfer := reflect.TypeFor[C]().Size() != 0
	if transfer {
		env, err := envelope.MarshalInit(self.Marshaler(), state)
		if err != nil {
			return Server[M, R]{}, err
		}
		init = env
	}

	b := kernel.DefaultTable.Register(kernel.Bootstrap(serve[C, M, R]))
	h := kernel.DefaultTable.Register(handler)

	handle, id, err := self.SpawnUnit(link, b, h)
	if err != nil {
		return Server[M, R]{}, err
	}

	if transfer {
		// The new unit is blocked awaiting this message; the send only
		// fails if the kernel is already tearing the unit down.
		if err := self.Send(handle, init); err != nil {
			return Server[M, R]{}, err
		}
	}

	return Server[M, R]{process.New[M](handle, id)}, nil
}

// serve is the bootstrap loop of a server unit.
//
// It runs forever: termination only ever comes from outside, via the
// kernel, which unblocks the receive with an error.
func serve[C, M, R any](self kernel.Self, h kernel.Index) {
	fn, ok := kernel.DefaultTable.Resolve(h)
	if !ok {
		panic(fmt.Sprintf("handler index %d is not registered", h))
	}

	handler, ok := fn.(Handler[C, M, R])
	if !ok {
		panic(fmt.Sprintf("function at index %d is not a handler of the expected type", h))
	}

	var state C
	if reflect.TypeFor[C]().Size() != 0 {
		s, err := mailbox.New[C](self).Receive(self.Context())
		if err != nil {
			return
		}
		state = s
	}

	requests := mailbox.New[envelope.Request[M, R]](self)

	for {
		req, err := requests.Receive(self.Context())
		if err != nil {
			return
		}

		resp := handler(&state, req.Message)
		env := envelope.MustMarshalResponse(self.Marshaler(), req.Tag, resp)

		// If the requester terminated while the handler ran, the reply
		// is discarded along with its pending request.
		_ = self.Send(req.ReplyTo.Handle(), env)
	}
}
