// Package envelope defines the wire shapes of the request/response
// protocol between execution units.
package envelope

import (
	"github.com/dogmatiq/prockit/kernel"
	"github.com/dogmatiq/prockit/marshal"
	"github.com/dogmatiq/prockit/process"
)

// Request is the triple delivered to a server unit for each request.
//
// ReplyTo names the unit awaiting the response, and Tag is the token that
// unit will use to pick the response out of its mailbox. Together they are
// the entire pending-request state; nothing else is tracked anywhere.
type Request[M, R any] struct {
	ReplyTo process.Ref[R] `json:"reply_to" cbor:"1,keyasint"`
	Tag     kernel.Tag     `json:"tag" cbor:"2,keyasint"`
	Message M              `json:"message" cbor:"3,keyasint"`
}

// MarshalRequest marshals a request triple into an envelope.
//
// The envelope itself is untagged; the correlation tag travels inside the
// payload, because it is meaningful to the replying unit, not to the
// transport delivering the request.
func MarshalRequest[M, R any](
	ma marshal.Marshaler,
	replyTo process.Ref[R],
	tag kernel.Tag,
	m M,
) (kernel.Envelope, error) {
	pk, err := ma.Marshal(Request[M, R]{replyTo, tag, m})
	if err != nil {
		return kernel.Envelope{}, err
	}

	return kernel.Envelope{Tag: kernel.Untagged, Packet: pk}, nil
}

// MarshalResponse marshals a response value into an envelope tagged with
// the correlation tag of the request that produced it.
func MarshalResponse[R any](
	ma marshal.Marshaler,
	tag kernel.Tag,
	r R,
) (kernel.Envelope, error) {
	pk, err := ma.Marshal(r)
	if err != nil {
		return kernel.Envelope{}, err
	}

	return kernel.Envelope{Tag: tag, Packet: pk}, nil
}

// MustMarshalResponse marshals a response value into an envelope, or panics
// if it is unable to do so.
func MustMarshalResponse[R any](
	ma marshal.Marshaler,
	tag kernel.Tag,
	r R,
) kernel.Envelope {
	env, err := MarshalResponse(ma, tag, r)
	if err != nil {
		panic(err)
	}

	return env
}

// MarshalInit marshals a captured-state payload into the untagged envelope
// used by the spawn handshake.
func MarshalInit[C any](ma marshal.Marshaler, state C) (kernel.Envelope, error) {
	pk, err := ma.Marshal(state)
	if err != nil {
		return kernel.Envelope{}, err
	}

	return kernel.Envelope{Tag: kernel.Untagged, Packet: pk}, nil
}
