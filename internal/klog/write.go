package klog

import (
	"strings"

	"github.com/dogmatiq/iago/must"
)

// String renders a log line describing a unit lifecycle event.
//
// It starts with the identities of the units involved, followed by icons
// classifying the event, followed by free-form text fragments. Empty
// fragments are elided.
func String(
	ids []IconWithLabel,
	icons []Icon,
	text ...string,
) string {
	w := &strings.Builder{}

	for _, v := range ids {
		must.WriteTo(w, v)
		must.Write(w, space2)
	}

	for _, v := range icons {
		must.WriteTo(w, v)
		must.Write(w, space1)
	}

	n := 0
	for _, v := range text {
		if v == "" {
			continue
		}

		must.Write(w, space1)

		if n > 0 {
			must.WriteTo(w, SeparatorIcon)
			must.Write(w, space1)
		}

		must.WriteString(w, v)
		n++
	}

	return w.String()
}

var (
	space1 = []byte{' '}
	space2 = []byte{' ', ' '}
)
