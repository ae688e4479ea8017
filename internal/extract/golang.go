package extract

import (
	"strings"

	"github.com/arsham/git-hotspots/schema"
)

// receiverGroup is the capture index of a Go method receiver.
const receiverGroup = 0

// CanonicalizeGo folds each method receiver into the name that follows it, so
// "(r *T)" followed by "Do" becomes "(*T) Do". Receivers are removed from the
// output and counted as redacted, including a receiver with nothing after it.
func CanonicalizeGo(elems []schema.Element) ([]schema.Element, int) {
	out := make([]schema.Element, 0, len(elems))
	var pending *string
	redacted := 0
	for _, e := range elems {
		if e.Group == receiverGroup {
			p := e.Name
			pending = &p
			redacted++
			continue
		}
		if pending != nil {
			e.Name = "(" + receiverType(*pending) + " " + e.Name
			pending = nil
		}
		out = append(out, e)
	}
	return out, redacted
}

// receiverType keeps what follows the first space of the receiver list, or
// everything after the opening parenthesis when there is no space.
func receiverType(p string) string {
	if parts := strings.Split(p, " "); len(parts) > 1 {
		return parts[1]
	}
	if p == "" {
		return ""
	}
	return p[1:]
}
