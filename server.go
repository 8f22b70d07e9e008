package prockit

import (
	"context"
	"fmt"

	"github.com/dogmatiq/prockit/envelope"
	"github.com/dogmatiq/prockit/kernel"
	"github.com/dogmatiq/prockit/mailbox"
	"github.com/dogmatiq/prockit/process"
	"github.com/google/uuid"
)

// Server is a handle to an execution unit running a receive-handle-reply
// loop over captured state.
//
// It is an immutable value; copies refer to the same unit. A server whose
// unit has terminated remains a valid value, but requests to it are never
// answered.
type Server[M, R any] struct {
	ref process.Ref[M]
}

// Ref returns a reference to the serving unit.
func (s Server[M, R]) Ref() process.Ref[M] {
	return s.ref
}

// ID returns the stable global identifier of the serving unit.
func (s Server[M, R]) ID() uuid.UUID {
	return s.ref.ID()
}

// Equal returns true if s and x refer to the same serving unit.
func (s Server[M, R]) Equal(x Server[M, R]) bool {
	return s.ref.Equal(x.ref)
}

func (s Server[M, R]) String() string {
	return fmt.Sprintf("server<%s>", s.ref.ID())
}

// Request sends m to the serving unit and blocks until the correlated
// response arrives.
//
// The exchange is asynchronous underneath: the request carries a reference
// to the calling unit and a fresh tag, and the caller suspends on a
// tag-filtered receive. Unrelated messages that arrive while waiting remain
// queued for later receives.
//
// There is no built-in timeout. If the serving unit has already terminated
// the send fails with kernel.ErrUnitNotFound; if it terminates after
// accepting the request, Request blocks until ctx is canceled. Liveness
// policy belongs to the caller's ctx, or to a link with the serving unit.
func (s Server[M, R]) Request(ctx context.Context, self kernel.Self, m M) (R, error) {
	var zero R

	tag := self.NextTag()
	replyTo := process.New[R](self.Handle(), self.ID())

	env, err := envelope.MarshalRequest(self.Marshaler(), replyTo, tag, m)
	if err != nil {
		return zero, err
	}

	if err := self.Send(s.ref.Handle(), env); err != nil {
		return zero, err
	}

	return mailbox.New[R](self).ReceiveMatching(ctx, tag)
}
