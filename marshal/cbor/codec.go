// Package cbor provides a binary marshal.Marshaler using the CBOR encoding.
package cbor

import (
	"github.com/dogmatiq/prockit/marshal"
	"github.com/fxamacker/cbor/v2"
)

// mediaType is the media-type of packets produced by this codec.
const mediaType = "application/cbor"

var (
	em cbor.EncMode
	dm cbor.DecMode
)

func init() {
	var err error

	// Canonical encoding keeps marshaling deterministic, so that encoding
	// the same value twice yields identical bytes.
	em, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}

	dm, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Codec is a marshal.Marshaler that encodes values using CBOR.
//
// It is the default codec of the in-memory kernel. Values implementing
// cbor.Marshaler and cbor.Unmarshaler control their own representation,
// which is how process references remain transport-transparent.
type Codec struct{}

// Marshal returns a packet containing v.
func (Codec) Marshal(v any) (marshal.Packet, error) {
	data, err := em.Marshal(v)
	if err != nil {
		return marshal.Packet{}, err
	}

	return marshal.NewPacket(mediaType, data), nil
}

// Unmarshal decodes the value in pk into v.
func (Codec) Unmarshal(pk marshal.Packet, v any) error {
	if pk.MediaType != mediaType {
		return marshal.UnsupportedMediaTypeError{MediaType: pk.MediaType}
	}

	return dm.Unmarshal(pk.Data, v)
}
