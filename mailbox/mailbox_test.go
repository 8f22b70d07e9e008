package mailbox_test

import (
	"context"
	"time"

	"github.com/dogmatiq/prockit/envelope"
	"github.com/dogmatiq/prockit/fixtures"
	"github.com/dogmatiq/prockit/kernel"
	"github.com/dogmatiq/prockit/kernel/memory"
	. "github.com/dogmatiq/prockit/mailbox"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("type Mailbox", func() {
	var (
		ctx context.Context
		k   *memory.Kernel
	)

	BeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 3*time.Second)
		DeferCleanup(cancel)

		k = memory.New()
	})

	Describe("func Receive()", func() {
		It("decodes messages in delivery order", func() {
			var received []fixtures.MessageStub

			err := k.Run(ctx, func(self kernel.Self) {
				for _, v := range []string{"<a>", "<b>"} {
					env, err := envelope.MarshalInit(
						self.Marshaler(),
						fixtures.MessageStub{Value: v},
					)
					Expect(err).ShouldNot(HaveOccurred())

					err = self.Send(self.Handle(), env)
					Expect(err).ShouldNot(HaveOccurred())
				}

				mb := New[fixtures.MessageStub](self)

				for i := 0; i < 2; i++ {
					m, err := mb.Receive(ctx)
					Expect(err).ShouldNot(HaveOccurred())
					received = append(received, m)
				}
			})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(received).To(Equal([]fixtures.MessageStub{
				{Value: "<a>"},
				{Value: "<b>"},
			}))
		})

		It("aborts the unit when a message can not be decoded as the expected type", func() {
			err := k.Run(ctx, func(self kernel.Self) {
				env, err := envelope.MarshalInit(self.Marshaler(), "<text>")
				Expect(err).ShouldNot(HaveOccurred())

				err = self.Send(self.Handle(), env)
				Expect(err).ShouldNot(HaveOccurred())

				New[int32](self).Receive(ctx)
			})
			Expect(err).To(MatchError(ContainSubstring("unable to decode")))
		})
	})

	Describe("func ReceiveMatching()", func() {
		It("consumes only matching messages, retaining the rest", func() {
			var matched, retained string

			err := k.Run(ctx, func(self kernel.Self) {
				for tag, v := range map[kernel.Tag]string{
					4: "<x>",
					8: "<y>",
				} {
					env, err := envelope.MarshalResponse(self.Marshaler(), tag, v)
					Expect(err).ShouldNot(HaveOccurred())

					err = self.Send(self.Handle(), env)
					Expect(err).ShouldNot(HaveOccurred())
				}

				mb := New[string](self)

				var err error
				matched, err = mb.ReceiveMatching(ctx, 8)
				Expect(err).ShouldNot(HaveOccurred())

				retained, err = mb.ReceiveMatching(ctx, 4)
				Expect(err).ShouldNot(HaveOccurred())
			})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(matched).To(Equal("<y>"))
			Expect(retained).To(Equal("<x>"))
		})
	})
})
