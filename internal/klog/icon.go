package klog

import (
	"fmt"
	"io"

	"github.com/dogmatiq/iago/must"
	"github.com/dogmatiq/prockit/kernel"
	"github.com/google/uuid"
)

const (
	// UnitIDIcon is the icon shown directly before a unit identifier. It
	// is an "equals sign", indicating that the unit "has exactly" the
	// displayed identity.
	UnitIDIcon Icon = "="

	// CauseIcon is the icon shown directly before the identity of the
	// unit whose failure caused the logged event. It is the mathematical
	// "because" symbol.
	CauseIcon Icon = "∵"

	// SpawnIcon is the icon shown when a unit starts. It is a filled
	// circle, indicating a live unit.
	SpawnIcon Icon = "●"

	// ExitIcon is the icon shown when a unit terminates normally. It is a
	// hollow circle, the spent counterpart of SpawnIcon.
	ExitIcon Icon = "○"

	// FaultIcon is the icon shown when a unit terminates abnormally. It
	// is a heavy cross, indicating a failure.
	FaultIcon Icon = "✖"

	// LinkIcon is the icon shown when an event is the consequence of a
	// failure link. It is the relational algebra "join" symbol,
	// representing the coupling of two units.
	LinkIcon Icon = "⨝"

	// RefusedIcon is the icon shown when the kernel refuses to allocate a
	// unit. It is a hollow cross; the failure concerns a unit that never
	// lived.
	RefusedIcon Icon = "☓"

	// SeparatorIcon is an icon used to separate strings of unrelated text
	// inside a log message.
	SeparatorIcon Icon = "•"
)

// Icon is a unicode symbol used as an icon in kernel log messages.
type Icon string

func (i Icon) String() string {
	return string(i)
}

// WriteTo writes a string representation of the icon to w.
// If i is the zero-value, a single space is rendered.
func (i Icon) WriteTo(w io.Writer) (int64, error) {
	s := i.String()
	if i == "" {
		s = " "
	}

	n, err := io.WriteString(w, s)
	return int64(n), err
}

// WithLabel returns an IconWithLabel containing this icon and the given
// label.
func (i Icon) WithLabel(f string, v ...interface{}) IconWithLabel {
	return IconWithLabel{
		i,
		fmt.Sprintf(f, v...),
	}
}

// WithUnit returns an IconWithLabel containing this icon and a unit
// identity as its label.
func (i Icon) WithUnit(h kernel.UnitID, id uuid.UUID) IconWithLabel {
	return i.WithLabel(FormatUnit(h, id))
}

// IconWithLabel is a container for an icon and its associated text label.
type IconWithLabel struct {
	Icon  Icon
	Label string
}

func (i IconWithLabel) String() string {
	return i.Icon.String() + " " + i.Label
}

// WriteTo writes a string representation of the icon and its label to w.
func (i IconWithLabel) WriteTo(w io.Writer) (_ int64, err error) {
	defer must.Recover(&err)

	n := must.WriteTo(w, i.Icon)
	n += must.Write(w, space1)
	n += must.WriteString(w, i.Label)

	return int64(n), err
}

// FormatUnit formats a unit identity for logging.
//
// The local handle is shown in full; only the first 8 characters of the
// global identifier are shown.
func FormatUnit(h kernel.UnitID, id uuid.UUID) string {
	return fmt.Sprintf("#%d/%s", h, id.String()[:8])
}
