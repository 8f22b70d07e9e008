package memory_test

import (
	"context"
	"errors"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/prockit/fixtures"
	"github.com/dogmatiq/prockit/kernel"
	. "github.com/dogmatiq/prockit/kernel/memory"
	"github.com/dogmatiq/prockit/marshal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// waitForever is a bootstrap that blocks until its unit is terminated.
var waitForever = kernel.DefaultTable.Register(kernel.Bootstrap(
	func(self kernel.Self, _ kernel.Index) {
		self.Receive(self.Context())
	},
))

// exitNow is a bootstrap that terminates normally, immediately.
var exitNow = kernel.DefaultTable.Register(kernel.Bootstrap(
	func(kernel.Self, kernel.Index) {},
))

// panicNow is a bootstrap that terminates abnormally, immediately.
var panicNow = kernel.DefaultTable.Register(kernel.Bootstrap(
	func(kernel.Self, kernel.Index) {
		panic("bang")
	},
))

// textEnvelope returns an envelope carrying opaque text, which the kernel
// never inspects.
func textEnvelope(tag kernel.Tag, text string) kernel.Envelope {
	return kernel.Envelope{
		Tag:    tag,
		Packet: marshal.NewPacket("text/plain", []byte(text)),
	}
}

var _ = Describe("type Kernel", func() {
	var (
		ctx context.Context
		k   *Kernel
	)

	BeforeEach(func() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 3*time.Second)
		DeferCleanup(cancel)

		k = New()
	})

	Describe("func Run()", func() {
		It("returns nil when the root function returns normally", func() {
			err := k.Run(ctx, func(kernel.Self) {})
			Expect(err).ShouldNot(HaveOccurred())
		})

		It("returns the fault of a panicking root function", func() {
			err := k.Run(ctx, func(kernel.Self) {
				panic("boom")
			})
			Expect(err).To(MatchError(ContainSubstring("boom")))
		})

		It("panics if the kernel is run a second time", func() {
			err := k.Run(ctx, func(kernel.Self) {})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(func() {
				k.Run(ctx, func(kernel.Self) {})
			}).To(PanicWith("kernel has already been run"))
		})

		It("returns the context error when ctx is canceled", func() {
			shortCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
			defer cancel()

			err := k.Run(shortCtx, func(self kernel.Self) {
				// Block until the kernel terminates this unit.
				self.Receive(self.Context())
			})
			Expect(err).To(Equal(context.DeadlineExceeded))
		})
	})

	Describe("func SpawnUnit()", func() {
		It("refuses to spawn beyond the unit limit", func() {
			k = New(WithUnitLimit(1)) // the root unit consumes the only slot

			var spawnErr error
			err := k.Run(ctx, func(self kernel.Self) {
				_, _, spawnErr = self.SpawnUnit(false, waitForever, 0)
			})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(errors.Is(spawnErr, ErrUnitLimitExceeded)).To(BeTrue())

			var se *kernel.SpawnError
			Expect(errors.As(spawnErr, &se)).To(BeTrue())
			Expect(se.ID).NotTo(BeZero())
		})

		It("refuses to spawn after the kernel has stopped", func() {
			var escaped kernel.Self
			err := k.Run(ctx, func(self kernel.Self) {
				escaped = self
			})
			Expect(err).ShouldNot(HaveOccurred())

			_, _, spawnErr := escaped.SpawnUnit(false, waitForever, 0)
			Expect(errors.Is(spawnErr, kernel.ErrKernelStopped)).To(BeTrue())
		})

		It("establishes the link before the new unit runs", func() {
			var rootHandle, childHandle kernel.UnitID
			err := k.Run(ctx, func(self kernel.Self) {
				rootHandle = self.Handle()

				var err error
				childHandle, _, err = self.SpawnUnit(true, waitForever, 0)
				Expect(err).ShouldNot(HaveOccurred())
			})
			Expect(err).ShouldNot(HaveOccurred())

			root, ok := k.UnitInfo(rootHandle)
			Expect(ok).To(BeTrue())
			Expect(root.Links).To(ConsistOf(childHandle))

			child, ok := k.UnitInfo(childHandle)
			Expect(ok).To(BeTrue())
			Expect(child.Links).To(ConsistOf(rootHandle))
		})
	})

	Describe("func Send() and Receive()", func() {
		It("delivers envelopes from a single sender in order", func() {
			var received []string

			err := k.Run(ctx, func(self kernel.Self) {
				for _, text := range []string{"<a>", "<b>", "<c>"} {
					err := self.Send(self.Handle(), textEnvelope(kernel.Untagged, text))
					Expect(err).ShouldNot(HaveOccurred())
				}

				for i := 0; i < 3; i++ {
					env, err := self.Receive(ctx)
					Expect(err).ShouldNot(HaveOccurred())
					received = append(received, string(env.Packet.Data))
				}
			})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(received).To(Equal([]string{"<a>", "<b>", "<c>"}))
		})

		It("returns an error if the target unit has terminated", func() {
			var sendErr error

			err := k.Run(ctx, func(self kernel.Self) {
				h, _, err := self.SpawnUnit(false, exitNow, 0)
				Expect(err).ShouldNot(HaveOccurred())

				err = fixtures.AwaitTermination(ctx, k, h)
				Expect(err).ShouldNot(HaveOccurred())

				sendErr = self.Send(h, textEnvelope(kernel.Untagged, "<late>"))
			})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(errors.Is(sendErr, kernel.ErrUnitNotFound)).To(BeTrue())
		})
	})

	Describe("func ReceiveMatching()", func() {
		It("consumes only the matching envelope, leaving others queued", func() {
			var matched, queued kernel.Tag

			err := k.Run(ctx, func(self kernel.Self) {
				err := self.Send(self.Handle(), textEnvelope(7, "<unrelated>"))
				Expect(err).ShouldNot(HaveOccurred())

				err = self.Send(self.Handle(), textEnvelope(9, "<awaited>"))
				Expect(err).ShouldNot(HaveOccurred())

				env, err := self.ReceiveMatching(ctx, 9)
				Expect(err).ShouldNot(HaveOccurred())
				matched = env.Tag

				env, err = self.Receive(ctx)
				Expect(err).ShouldNot(HaveOccurred())
				queued = env.Tag
			})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(matched).To(Equal(kernel.Tag(9)))
			Expect(queued).To(Equal(kernel.Tag(7)))
		})
	})

	Describe("func UnitInfo()", func() {
		It("reports delivery statistics", func() {
			var before, after UnitInfo

			err := k.Run(ctx, func(self kernel.Self) {
				self.Send(self.Handle(), textEnvelope(kernel.Untagged, "<a>"))
				self.Send(self.Handle(), textEnvelope(kernel.Untagged, "<b>"))

				info, ok := k.UnitInfo(self.Handle())
				Expect(ok).To(BeTrue())
				before = info

				_, err := self.Receive(ctx)
				Expect(err).ShouldNot(HaveOccurred())

				info, ok = k.UnitInfo(self.Handle())
				Expect(ok).To(BeTrue())
				after = info
			})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(before.QueueLen).To(Equal(2))
			Expect(before.Delivered).To(Equal(2))
			Expect(after.QueueLen).To(Equal(1))
			Expect(after.Delivered).To(Equal(2))
		})

		It("returns false for a handle that was never allocated", func() {
			_, ok := k.UnitInfo(97)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("link propagation", func() {
		It("terminates the linked peer of a panicking unit", func() {
			logger := &logging.BufferedLogger{}
			k = New(WithLogger(logger))

			inter := kernel.DefaultTable.Register(kernel.Bootstrap(
				func(self kernel.Self, _ kernel.Index) {
					_, _, err := self.SpawnUnit(true, panicNow, 0)
					Expect(err).ShouldNot(HaveOccurred())

					// Block until the link unwinds this unit.
					self.Receive(self.Context())
				},
			))

			err := k.Run(ctx, func(self kernel.Self) {
				h, _, err := self.SpawnUnit(false, inter, 0)
				Expect(err).ShouldNot(HaveOccurred())

				err = fixtures.AwaitTermination(ctx, k, h)
				Expect(err).ShouldNot(HaveOccurred())
			})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(k.Err()).To(MatchError(ContainSubstring("bang")))

			Expect(logger.Messages()).To(ContainElement(WithTransform(
				func(m logging.BufferedLogMessage) string {
					return m.Message
				},
				ContainSubstring("panic: bang"),
			)))
		})

		It("does not terminate an unlinked unit under identical conditions", func() {
			inter := kernel.DefaultTable.Register(kernel.Bootstrap(
				func(self kernel.Self, _ kernel.Index) {
					_, _, err := self.SpawnUnit(false, panicNow, 0)
					Expect(err).ShouldNot(HaveOccurred())

					self.Receive(self.Context())
				},
			))

			var alive bool
			err := k.Run(ctx, func(self kernel.Self) {
				h, _, err := self.SpawnUnit(false, inter, 0)
				Expect(err).ShouldNot(HaveOccurred())

				time.Sleep(100 * time.Millisecond)

				info, ok := k.UnitInfo(h)
				Expect(ok).To(BeTrue())
				alive = info.Alive
			})
			Expect(err).ShouldNot(HaveOccurred())

			Expect(alive).To(BeTrue())
			Expect(k.Err()).To(MatchError(ContainSubstring("bang")))
		})
	})

	Describe("func Limits()", func() {
		It("reports the configured resource limits", func() {
			k = New(
				WithMemoryLimit(17*65536),
				WithComputeLimit(1),
			)

			memLimit, computeLimit := k.Limits()
			Expect(memLimit).To(BeEquivalentTo(17 * 65536))
			Expect(computeLimit).To(BeEquivalentTo(1))
		})
	})
})
