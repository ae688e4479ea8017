package extract

import (
	"testing"

	"github.com/arsham/git-hotspots/schema"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeGo(t *testing.T) {
	tcs := map[string]struct {
		in       []schema.Element
		names    []string
		redacted int
	}{
		"empty": {
			in:    nil,
			names: []string{},
		},
		"no receivers": {
			in:    []schema.Element{{Name: "A", Group: 1}, {Name: "B", Group: 1}},
			names: []string{"A", "B"},
		},
		"named pointer receiver": {
			in:       []schema.Element{{Name: "(r *T)", Group: 0}, {Name: "Do", Group: 1}},
			names:    []string{"(*T) Do"},
			redacted: 1,
		},
		"unnamed receiver": {
			in:       []schema.Element{{Name: "(T)", Group: 0}, {Name: "Do", Group: 1}},
			names:    []string{"(T) Do"},
			redacted: 1,
		},
		"receiver applies once": {
			in: []schema.Element{
				{Name: "(r T)", Group: 0},
				{Name: "Do", Group: 1},
				{Name: "helper", Group: 1},
			},
			names:    []string{"(T) Do", "helper"},
			redacted: 1,
		},
		"dangling receiver": {
			in:       []schema.Element{{Name: "A", Group: 1}, {Name: "(r T)", Group: 0}},
			names:    []string{"A"},
			redacted: 1,
		},
		"second receiver replaces first": {
			in: []schema.Element{
				{Name: "(a A)", Group: 0},
				{Name: "(b B)", Group: 0},
				{Name: "Do", Group: 1},
			},
			names:    []string{"(B) Do"},
			redacted: 2,
		},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			out, redacted := CanonicalizeGo(tc.in)
			names := make([]string, 0, len(out))
			for _, e := range out {
				names = append(names, e.Name)
			}
			assert.Equal(t, tc.names, names)
			assert.Equal(t, tc.redacted, redacted)
		})
	}
}

func TestReceiverType(t *testing.T) {
	assert.Equal(t, "*T)", receiverType("(r *T)"))
	assert.Equal(t, "T)", receiverType("(T)"))
	assert.Equal(t, "", receiverType(""))
}
