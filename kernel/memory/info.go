package memory

import (
	"sort"

	"github.com/dogmatiq/prockit/kernel"
	"github.com/google/uuid"
)

// UnitInfo describes the observable state of an execution unit.
type UnitInfo struct {
	// Handle is the local handle of the unit.
	Handle kernel.UnitID

	// ID is the stable global identifier of the unit.
	ID uuid.UUID

	// Alive is true until the unit terminates, or a decision to terminate
	// it has been made.
	Alive bool

	// QueueLen is the number of envelopes currently queued in the unit's
	// inbox.
	QueueLen int

	// Delivered is the total number of envelopes ever delivered to the
	// unit.
	Delivered int

	// Links holds the handles of the units linked to this unit.
	Links []kernel.UnitID
}

// UnitInfo returns information about the unit with the given handle.
//
// It returns false if no such unit has ever existed on this kernel.
// Information about terminated units remains available; handles are never
// reused.
func (k *Kernel) UnitInfo(h kernel.UnitID) (UnitInfo, bool) {
	k.m.Lock()
	defer k.m.Unlock()

	u, ok := k.units[h]
	if !ok {
		return UnitInfo{}, false
	}

	queued, delivered := u.inbox.stats()

	links := make([]kernel.UnitID, 0, len(u.links))
	for l := range u.links {
		links = append(links, l)
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i] < links[j]
	})

	return UnitInfo{
		Handle:    u.handle,
		ID:        u.id,
		Alive:     !u.terminated && !u.dead,
		QueueLen:  queued,
		Delivered: delivered,
		Links:     links,
	}, true
}
