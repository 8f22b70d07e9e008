package memory

import (
	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/prockit/marshal"
	"github.com/dogmatiq/prockit/marshal/cbor"
)

var (
	// DefaultMarshaler is the default serializer used to move messages
	// between units.
	//
	// It is overridden by the WithMarshaler() option.
	DefaultMarshaler marshal.Marshaler = cbor.Codec{}

	// DefaultUnitLimit is the default maximum number of live execution
	// units, where zero means no limit.
	//
	// It is overridden by the WithUnitLimit() option.
	DefaultUnitLimit = 0

	// DefaultLogger is the default target for log messages produced by
	// the kernel.
	//
	// It is overridden by the WithLogger() option.
	DefaultLogger = logging.DefaultLogger
)

// Option configures the behavior of a kernel.
type Option func(*kernelOptions)

// kernelOptions is a container for the options set via Option values.
type kernelOptions struct {
	Marshaler    marshal.Marshaler
	UnitLimit    int
	MemoryLimit  uint64
	ComputeLimit uint64
	Logger       logging.Logger
}

// resolveKernelOptions returns a fully-populated kernelOptions built from
// the given options.
func resolveKernelOptions(options ...Option) *kernelOptions {
	opts := &kernelOptions{
		Marshaler: DefaultMarshaler,
		UnitLimit: DefaultUnitLimit,
		Logger:    DefaultLogger,
	}

	for _, o := range options {
		o(opts)
	}

	return opts
}

// WithMarshaler returns an option that sets the serializer used to move
// messages between units.
//
// If this option is omitted or m is nil, DefaultMarshaler is used.
func WithMarshaler(m marshal.Marshaler) Option {
	return func(opts *kernelOptions) {
		if m != nil {
			opts.Marshaler = m
		}
	}
}

// WithUnitLimit returns an option that sets the maximum number of live
// execution units, including the root unit.
//
// Spawning beyond the limit is refused with ErrUnitLimitExceeded. If this
// option is omitted or n is zero, DefaultUnitLimit is used.
func WithUnitLimit(n int) Option {
	if n < 0 {
		panic("unit limit must not be negative")
	}

	return func(opts *kernelOptions) {
		opts.UnitLimit = n
	}
}

// WithMemoryLimit returns an option that records the maximum amount of
// memory, in bytes, that a single unit may use.
//
// The in-memory kernel does not enforce the limit; it is configuration
// carried for hosts that do, and is reported by Kernel.Limits().
func WithMemoryLimit(bytes uint64) Option {
	return func(opts *kernelOptions) {
		opts.MemoryLimit = bytes
	}
}

// WithComputeLimit returns an option that records the maximum number of
// compute units that a single unit may consume.
//
// The in-memory kernel does not enforce the limit; it is configuration
// carried for hosts that do, and is reported by Kernel.Limits().
func WithComputeLimit(units uint64) Option {
	return func(opts *kernelOptions) {
		opts.ComputeLimit = units
	}
}

// WithLogger returns an option that sets the target for log messages
// produced by the kernel.
//
// If this option is omitted or l is nil, DefaultLogger is used.
func WithLogger(l logging.Logger) Option {
	return func(opts *kernelOptions) {
		if l != nil {
			opts.Logger = l
		}
	}
}
