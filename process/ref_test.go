package process_test

import (
	"encoding/json"

	. "github.com/dogmatiq/prockit/process"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	. "github.com/jmalloc/gomegax"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Ref", func() {
	var (
		id  uuid.UUID
		ref Ref[string]
	)

	BeforeEach(func() {
		id = uuid.MustParse("a96fefa1-2630-467a-b756-db2e428a56fd")
		ref = New[string](42, id)
	})

	Describe("func Handle()", func() {
		It("returns the local handle", func() {
			Expect(ref.Handle()).To(BeNumerically("==", 42))
		})
	})

	Describe("func ID()", func() {
		It("returns the global identifier", func() {
			Expect(ref.ID()).To(Equal(id))
		})
	})

	Describe("func Equal()", func() {
		It("returns true if the global identifiers are equal", func() {
			// Equality is defined on the global identifier alone; the
			// local handle does not participate.
			other := New[string](97, id)
			Expect(ref.Equal(other)).To(BeTrue())
		})

		It("returns false if the global identifiers differ", func() {
			other := New[string](42, uuid.MustParse("16c7843f-c94f-4fd1-ba80-fd59cab793ff"))
			Expect(ref.Equal(other)).To(BeFalse())
		})
	})

	Describe("func String()", func() {
		It("renders the global identifier", func() {
			Expect(ref.String()).To(Equal("process<a96fefa1-2630-467a-b756-db2e428a56fd>"))
		})
	})

	When("marshaled as JSON", func() {
		It("survives a round-trip intact", func() {
			data, err := json.Marshal(ref)
			Expect(err).ShouldNot(HaveOccurred())

			var out Ref[string]
			err = json.Unmarshal(data, &out)
			Expect(err).ShouldNot(HaveOccurred())

			Expect(out).To(EqualX(ref))
			Expect(out.Handle()).To(Equal(ref.Handle()))
		})

		It("returns an error if the identifier is malformed", func() {
			var out Ref[string]
			err := json.Unmarshal([]byte(`{"handle":1,"id":"<malformed>"}`), &out)
			Expect(err).Should(HaveOccurred())
		})
	})

	When("marshaled as CBOR", func() {
		It("survives a round-trip intact", func() {
			data, err := cbor.Marshal(ref)
			Expect(err).ShouldNot(HaveOccurred())

			var out Ref[string]
			err = cbor.Unmarshal(data, &out)
			Expect(err).ShouldNot(HaveOccurred())

			Expect(out).To(EqualX(ref))
			Expect(out.Handle()).To(Equal(ref.Handle()))
		})
	})
})
