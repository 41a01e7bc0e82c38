package pstat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	testCases := []struct {
		state     State
		name      string
		scheduled bool
	}{
		{state: Unused, name: "unused"},
		{state: Embryo, name: "embryo"},
		{state: Sleeping, name: "sleep", scheduled: true},
		{state: Runnable, name: "runble", scheduled: true},
		{state: Running, name: "run", scheduled: true},
		{state: Zombie, name: "zombie"},
		{state: State(42), name: "???"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.state.String())
			assert.Equal(t, tc.scheduled, tc.state.Scheduled())
		})
	}
}
