package fixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/dogmatiq/linger"
	"github.com/dogmatiq/prockit/kernel"
	"github.com/dogmatiq/prockit/kernel/memory"
)

// AwaitTermination blocks until the unit with the given handle has
// terminated, or ctx is canceled.
//
// It is used by tests that assert a unit dies within a bounded delay; the
// bound is ctx's deadline.
func AwaitTermination(ctx context.Context, k *memory.Kernel, h kernel.UnitID) error {
	for {
		info, ok := k.UnitInfo(h)
		if !ok {
			return fmt.Errorf("unit #%d does not exist", h)
		}

		if !info.Alive {
			return nil
		}

		if err := linger.Sleep(ctx, 5*time.Millisecond); err != nil {
			return err
		}
	}
}
