// Package marshal defines the serializer capability used to move values
// across the isolation boundary between execution units.
//
// The contract is deliberately narrow: a Marshaler turns a value into a
// self-describing Packet and back. Implementations must additionally
// round-trip embedded process references (values implementing the codec's
// native marshaling hooks, as process.Ref does), so that a reply address
// serialized inside a request is valid for replying on the receiving side.
package marshal

import "fmt"

// Packet is a container for a marshaled value and the media-type that
// describes its encoding.
type Packet struct {
	// MediaType is the RFC 2045 media-type of the data.
	MediaType string

	// Data is the marshaled value.
	Data []byte
}

// NewPacket returns a packet containing the given data.
func NewPacket(mediaType string, data []byte) Packet {
	return Packet{mediaType, data}
}

// Marshaler marshals values to and from packets.
type Marshaler interface {
	// Marshal returns a packet containing v.
	Marshal(v any) (Packet, error)

	// Unmarshal decodes the value in pk into v, which must be a non-nil
	// pointer to a value of the type that produced the packet.
	//
	// The encoded bytes and the target type are a static contract between
	// sender and receiver; a mismatch is a bug in the caller, not a
	// condition Unmarshal is expected to tolerate.
	Unmarshal(pk Packet, v any) error
}

// UnsupportedMediaTypeError indicates that a packet was given to a codec
// that does not produce its media-type.
type UnsupportedMediaTypeError struct {
	MediaType string
}

func (e UnsupportedMediaTypeError) Error() string {
	return fmt.Sprintf("unsupported media-type %#v", e.MediaType)
}
