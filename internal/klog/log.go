// Package klog contains utilities for logging the lifecycle of execution
// units in a consistent format.
package klog

import (
	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/prockit/kernel"
	"github.com/google/uuid"
)

// LogSpawn logs a message indicating that a unit has been spawned.
func LogSpawn(
	log logging.Logger,
	h kernel.UnitID,
	id uuid.UUID,
	linked bool,
) {
	icons := []Icon{SpawnIcon}
	if linked {
		icons = append(icons, LinkIcon)
	}

	logging.DebugString(
		log,
		String(
			[]IconWithLabel{
				UnitIDIcon.WithUnit(h, id),
			},
			icons,
			"spawned",
		),
	)
}

// LogExit logs a message indicating that a unit has terminated normally.
func LogExit(
	log logging.Logger,
	h kernel.UnitID,
	id uuid.UUID,
) {
	logging.DebugString(
		log,
		String(
			[]IconWithLabel{
				UnitIDIcon.WithUnit(h, id),
			},
			[]Icon{ExitIcon},
			"terminated",
		),
	)
}

// LogFault logs a message indicating that a unit has terminated abnormally.
func LogFault(
	log logging.Logger,
	h kernel.UnitID,
	id uuid.UUID,
	cause error,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				UnitIDIcon.WithUnit(h, id),
			},
			[]Icon{FaultIcon},
			cause.Error(),
		),
	)
}

// LogLinkKill logs a message indicating that a unit is being terminated
// because a linked unit terminated abnormally.
func LogLinkKill(
	log logging.Logger,
	h kernel.UnitID,
	id uuid.UUID,
	culpritHandle kernel.UnitID,
	culpritID uuid.UUID,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				UnitIDIcon.WithUnit(h, id),
				CauseIcon.WithUnit(culpritHandle, culpritID),
			},
			[]Icon{FaultIcon, LinkIcon},
			"terminated by linked unit",
		),
	)
}

// LogSpawnRefused logs a message indicating that the kernel refused to
// allocate a new unit.
func LogSpawnRefused(
	log logging.Logger,
	h kernel.UnitID,
	cause error,
) {
	logging.LogString(
		log,
		String(
			[]IconWithLabel{
				UnitIDIcon.WithLabel("#%d", h),
			},
			[]Icon{RefusedIcon},
			"spawn refused",
			cause.Error(),
		),
	)
}
