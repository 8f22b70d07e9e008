// Package json provides a human-readable marshal.Marshaler using the JSON
// encoding.
package json

import (
	"encoding/json"

	"github.com/dogmatiq/prockit/marshal"
)

// mediaType is the media-type of packets produced by this codec.
const mediaType = "application/json"

// Codec is a marshal.Marshaler that encodes values using JSON.
//
// Values implementing json.Marshaler and json.Unmarshaler control their own
// representation, which is how process references remain
// transport-transparent.
type Codec struct{}

// Marshal returns a packet containing v.
func (Codec) Marshal(v any) (marshal.Packet, error) {
	data, err := json.Marshal(v)
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

	return json.Unmarshal(pk.Data, v)
}
