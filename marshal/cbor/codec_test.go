package cbor_test

import (
	"github.com/dogmatiq/prockit/fixtures"
	"github.com/dogmatiq/prockit/marshal"
	. "github.com/dogmatiq/prockit/marshal/cbor"
	"github.com/dogmatiq/prockit/process"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Codec", func() {
	var codec Codec

	Describe("func Marshal()", func() {
		It("produces a packet with the CBOR media-type", func() {
			pk, err := codec.Marshal(fixtures.MessageStub{Value: "<value>"})
			Expect(err).ShouldNot(HaveOccurred())
			Expect(pk.MediaType).To(Equal("application/cbor"))
		})
	})

	Describe("func Unmarshal()", func() {
		It("round-trips a message", func() {
			in := fixtures.MessageStub{Value: "<value>"}

			pk, err := codec.Marshal(in)
			Expect(err).ShouldNot(HaveOccurred())

			var out fixtures.MessageStub
			err = codec.Unmarshal(pk, &out)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(out).To(Equal(in))
		})

		It("returns an error if the packet has a foreign media-type", func() {
			pk := marshal.NewPacket("application/json", []byte("{}"))

			var out fixtures.MessageStub
			err := codec.Unmarshal(pk, &out)
			Expect(err).To(Equal(
				marshal.UnsupportedMediaTypeError{MediaType: "application/json"},
			))
		})
	})

	When("a message embeds a process reference", func() {
		It("re-encodes to identical bytes after a round-trip", func() {
			in := fixtures.RefStub{
				Reply: process.New[string](
					3,
					uuid.MustParse("a96fefa1-2630-467a-b756-db2e428a56fd"),
				),
				Note: "<note>",
			}

			pk, err := codec.Marshal(in)
			Expect(err).ShouldNot(HaveOccurred())

			var out fixtures.RefStub
			err = codec.Unmarshal(pk, &out)
			Expect(err).ShouldNot(HaveOccurred())

			repk, err := codec.Marshal(out)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(repk).To(Equal(pk))
		})
	})
})
