// Package process provides typed references to execution units.
package process

import (
	"encoding/json"
	"fmt"

	"github.com/dogmatiq/prockit/kernel"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Ref is an opaque, copyable handle to an execution unit that accepts
// messages of type M.
//
// The type parameter exists purely so that sends to the unit are checked at
// the call site; it has no runtime representation. A reference to a
// terminated unit remains a valid value; using it yields a delivery
// failure, never undefined behavior.
//
// References may be embedded in messages. Both the CBOR and JSON codecs
// recognize them, so a reference arrives on the other side of the wire
// ready to be replied to.
type Ref[M any] struct {
	handle kernel.UnitID
	id     uuid.UUID
}

// New fabricates a reference from raw unit identity.
//
// It is an escape hatch for the spawn machinery and kernel implementations.
// Application code obtains references from Spawn or from received messages,
// never by construction.
func New[M any](handle kernel.UnitID, id uuid.UUID) Ref[M] {
	return Ref[M]{handle, id}
}

// Handle returns the kernel-local handle of the referenced unit.
func (r Ref[M]) Handle() kernel.UnitID {
	return r.handle
}

// ID returns the stable global identifier of the referenced unit.
func (r Ref[M]) ID() uuid.UUID {
	return r.id
}

// Equal returns true if r and x refer to the same unit.
//
// Equality is defined on the global identifier alone.
func (r Ref[M]) Equal(x Ref[M]) bool {
	return r.id == x.id
}

func (r Ref[M]) String() string {
	return fmt.Sprintf("process<%s>", r.id)
}

// refData is the wire representation of a reference.
type refData struct {
	Handle uint64 `json:"handle" cbor:"1,keyasint"`
	ID     string `json:"id" cbor:"2,keyasint"`
}

func (r Ref[M]) wire() refData {
	return refData{
		Handle: uint64(r.handle),
		ID:     r.id.String(),
	}
}

func (r *Ref[M]) fromWire(d refData) error {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return fmt.Errorf("invalid process reference: %w", err)
	}

	r.handle = kernel.UnitID(d.Handle)
	r.id = id

	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Ref[M]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ref[M]) UnmarshalJSON(data []byte) error {
	var d refData
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}

	return r.fromWire(d)
}

// MarshalCBOR implements cbor.Marshaler.
func (r Ref[M]) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(r.wire())
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (r *Ref[M]) UnmarshalCBOR(data []byte) error {
	var d refData
	if err := cbor.Unmarshal(data, &d); err != nil {
		return err
	}

	return r.fromWire(d)
}
