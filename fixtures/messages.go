// Package fixtures contains test fixtures shared by the prockit test
// suites.
package fixtures

import (
	"github.com/dogmatiq/prockit/marshal"
	"github.com/dogmatiq/prockit/marshal/cbor"
	"github.com/dogmatiq/prockit/process"
)

// Marshaler is the serializer used by test fixtures.
var Marshaler marshal.Marshaler = cbor.Codec{}

// MessageStub is a basic message used in tests.
type MessageStub struct {
	Value string `json:"value" cbor:"1,keyasint"`
}

// RefStub is a message that embeds a process reference, used to verify
// that references remain valid after crossing the wire.
type RefStub struct {
	Reply process.Ref[string] `json:"reply" cbor:"1,keyasint"`
	Note  string              `json:"note" cbor:"2,keyasint"`
}
