// Package memory provides an in-memory implementation of the kernel
// capabilities, hosting each execution unit on its own goroutine.
//
// Isolation is structural rather than enforced: units share no data because
// everything that crosses between them is serialized, and a unit's state is
// only ever touched by its own goroutine.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/prockit/internal/klog"
	"github.com/dogmatiq/prockit/internal/x/loggingx"
	"github.com/dogmatiq/prockit/kernel"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// ErrUnitLimitExceeded indicates that a spawn was refused because the
// configured unit limit has been reached.
var ErrUnitLimitExceeded = errors.New("unit limit exceeded")

// Kernel is an in-memory scheduler of execution units.
type Kernel struct {
	opts *kernelOptions
	cap  capacity

	m          sync.Mutex
	ctx        context.Context // non-nil while Run() is executing
	nextHandle kernel.UnitID
	units      map[kernel.UnitID]*unit
	faults     []error
	stopped    bool

	wg sync.WaitGroup
}

// New returns a new kernel with no running units.
func New(options ...Option) *Kernel {
	opts := resolveKernelOptions(options...)

	return &Kernel{
		opts:  opts,
		cap:   newCapacity(opts.UnitLimit),
		units: map[kernel.UnitID]*unit{},
	}
}

// Run hosts the root execution unit until the root function returns or ctx
// is canceled, then terminates any remaining units and waits for them.
//
// It returns the fault of the root unit, if any. Faults of other units are
// logged as they occur and available via Err().
//
// A kernel is one-shot: Run may be called at most once. Unit handles are
// never reused, and terminated units remain queryable via UnitInfo(), so a
// stopped kernel can not be restarted.
func (k *Kernel) Run(ctx context.Context, root func(kernel.Self)) error {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(kernel.ErrKernelStopped)

	k.m.Lock()
	if k.ctx != nil {
		k.m.Unlock()
		panic("kernel has already been run")
	}
	k.ctx = runCtx
	k.m.Unlock()

	u, err := k.allocate(nil, false)
	if err != nil {
		return err
	}

	klog.LogSpawn(k.opts.Logger, u.handle, u.id, false)
	k.start(u, func() {
		root(u)
	})

	<-u.done

	k.m.Lock()
	k.stopped = true
	k.m.Unlock()

	cancel(kernel.ErrKernelStopped)
	k.wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	k.m.Lock()
	defer k.m.Unlock()

	return u.fault
}

// Err returns the accumulated faults of all units that have terminated
// abnormally, combined into a single error.
//
// It returns nil if no unit has faulted.
func (k *Kernel) Err() error {
	k.m.Lock()
	defer k.m.Unlock()

	return multierr.Combine(k.faults...)
}

// Limits returns the per-unit memory limit, in bytes, and compute limit
// configured for this kernel. A zero value means the resource is not
// limited.
func (k *Kernel) Limits() (memory, compute uint64) {
	return k.opts.MemoryLimit, k.opts.ComputeLimit
}

// spawn allocates and starts a new unit on behalf of parent.
func (k *Kernel) spawn(parent *unit, link bool, b, h kernel.Index) (kernel.UnitID, uuid.UUID, error) {
	fn, ok := kernel.DefaultTable.Resolve(b)
	if !ok {
		panic(fmt.Sprintf("bootstrap index %d is not registered", b))
	}

	boot, ok := fn.(kernel.Bootstrap)
	if !ok {
		panic(fmt.Sprintf("function at index %d is not a bootstrap function", b))
	}

	u, err := k.allocate(parent, link)
	if err != nil {
		var se *kernel.SpawnError
		if errors.As(err, &se) {
			klog.LogSpawnRefused(k.opts.Logger, se.ID, se.Cause)
		}

		return 0, uuid.Nil, err
	}

	klog.LogSpawn(k.opts.Logger, u.handle, u.id, link)
	k.start(u, func() {
		boot(u, h)
	})

	return u.handle, u.id, nil
}

// allocate registers a new unit, establishing its link to parent if
// requested, but does not start it.
func (k *Kernel) allocate(parent *unit, link bool) (*unit, error) {
	k.m.Lock()
	defer k.m.Unlock()

	k.nextHandle++
	h := k.nextHandle

	if k.ctx == nil || k.stopped {
		return nil, &kernel.SpawnError{ID: h, Cause: kernel.ErrKernelStopped}
	}

	if !k.cap.Acquire() {
		return nil, &kernel.SpawnError{ID: h, Cause: ErrUnitLimitExceeded}
	}

	ctx, cancel := context.WithCancelCause(k.ctx)

	u := &unit{
		k:      k,
		handle: h,
		id:     uuid.New(),
		inbox:  newInbox(),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		links:  map[kernel.UnitID]struct{}{},
	}
	u.logger = loggingx.WithUnit(k.opts.Logger, u.handle, u.id)

	k.units[h] = u

	if link && parent != nil {
		u.links[parent.handle] = struct{}{}
		parent.links[u.handle] = struct{}{}
	}

	return u, nil
}

// start runs fn as the body of u on a new goroutine.
func (k *Kernel) start(u *unit, fn func()) {
	k.wg.Add(1)

	go func() {
		defer k.wg.Done()
		defer func() {
			k.finish(u, recover())
		}()

		fn()
	}()
}

// finish records the end of a unit's goroutine.
//
// rec is the value recovered from the unit's panic, if any. A panicking
// unit terminates abnormally, which propagates over its links.
func (k *Kernel) finish(u *unit, rec any) {
	if rec != nil {
		err := fmt.Errorf("panic: %v", rec)
		klog.LogFault(k.opts.Logger, u.handle, u.id, err)
		k.terminate(u, err)
	}

	k.m.Lock()
	u.dead = true
	normal := !u.terminated
	k.m.Unlock()

	k.cap.Release()

	if normal {
		klog.LogExit(k.opts.Logger, u.handle, u.id)
	}

	close(u.done)
}

// terminate decides that u terminates abnormally with the given cause, and
// propagates the failure to every unit linked to it.
//
// It is idempotent; only the first decision for a unit takes effect.
func (k *Kernel) terminate(u *unit, cause error) {
	k.m.Lock()

	if u.terminated || u.dead {
		k.m.Unlock()
		return
	}

	u.terminated = true
	u.fault = cause
	k.faults = append(
		k.faults,
		fmt.Errorf("unit %s: %w", klog.FormatUnit(u.handle, u.id), cause),
	)

	var peers []*unit
	for h := range u.links {
		if p, ok := k.units[h]; ok && !p.terminated && !p.dead {
			peers = append(peers, p)
		}
	}

	k.m.Unlock()

	u.cancel(cause)

	for _, p := range peers {
		klog.LogLinkKill(k.opts.Logger, p.handle, p.id, u.handle, u.id)
		k.terminate(p, fmt.Errorf(
			"linked unit %s terminated: %w",
			klog.FormatUnit(u.handle, u.id),
			cause,
		))
	}
}

// deliver enqueues env on the inbox of the target unit.
func (k *Kernel) deliver(to kernel.UnitID, env kernel.Envelope) error {
	k.m.Lock()
	u, ok := k.units[to]
	if !ok || u.terminated || u.dead {
		k.m.Unlock()
		return fmt.Errorf("unable to deliver to unit #%d: %w", to, kernel.ErrUnitNotFound)
	}
	k.m.Unlock()

	u.inbox.push(env)

	logging.Debug(
		u.logger,
		"enqueued envelope [tag %d, %s, %d bytes]",
		env.Tag,
		env.Packet.MediaType,
		len(env.Packet.Data),
	)

	return nil
}
