package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/kcore/model/mem"
	"github.com/viant/kcore/model/pstat"
)

func sample() *Snapshot {
	return &Snapshot{
		BootID:  "boot-1",
		TakenAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Ticks:   320,
		Processes: []pstat.Info{
			{Pid: 1, Name: "init", State: pstat.Sleeping, Level: 3, Ticks: [pstat.Levels]int{0, 0, 0, 2}},
			{Pid: 2, Name: "P0", State: pstat.Runnable, Level: 2, Ticks: [pstat.Levels]int{0, 0, 3, 64}, WaitTicks: [pstat.Levels]int{0, 0, 9, 192}},
		},
		History:    []mem.Addr{0x7ff000, 0x401000},
		FreePages:  1018,
		Semaphores: 1,
	}
}

func TestService_SaveLoad(t *testing.T) {
	srv, err := New(afs.New())
	require.NoError(t, err)
	ctx := context.Background()
	URL := "mem://localhost/snapshot/kcore.cbor"

	expect := sample()
	require.NoError(t, srv.Save(ctx, URL, expect))
	actual, err := srv.Load(ctx, URL)
	require.NoError(t, err)
	assert.Equal(t, expect, actual)

	info, ok := actual.Process(2)
	require.True(t, ok)
	assert.Equal(t, "P0", info.Name)
	_, ok = actual.Process(9)
	assert.False(t, ok)
}

func TestService_Canonical(t *testing.T) {
	srv, err := New(nil)
	require.NoError(t, err)
	first, err := srv.Encode(sample())
	require.NoError(t, err)
	second, err := srv.Encode(sample())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestService_LoadErrors(t *testing.T) {
	srv, err := New(nil)
	require.NoError(t, err)
	_, err = srv.Load(context.Background(), "mem://localhost/snapshot/missing.cbor")
	assert.Error(t, err)

	_, err = srv.Decode([]byte{0xff, 0x00})
	assert.Error(t, err)
}
