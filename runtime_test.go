package kcore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/kcore"
	"github.com/viant/kcore/model/pstat"
	"github.com/viant/kcore/service/event"
	"github.com/viant/kcore/service/proc"
)

func newRuntime(t *testing.T, options ...kcore.Option) *kcore.Runtime {
	t.Helper()
	config := kcore.DefaultConfig()
	config.Log.Verbosity = 0
	srv, err := kcore.New(append([]kcore.Option{kcore.WithConfig(config), kcore.WithBootID("test-boot")}, options...)...)
	require.NoError(t, err)
	rt := srv.Runtime()
	t.Cleanup(func() { _ = rt.Shutdown(context.Background()) })
	return rt
}

func spin(ctx *proc.Context) {
	for {
		ctx.Tick()
	}
}

func TestRuntime_NotBooted(t *testing.T) {
	rt := newRuntime(t)
	_, err := rt.Spawn("worker", spin)
	assert.ErrorIs(t, err, kcore.ErrNotBooted)
	assert.ErrorIs(t, rt.Start(context.Background()), kcore.ErrNotBooted)
}

func TestRuntime_Scenario(t *testing.T) {
	rt := newRuntime(t)
	ctx := context.Background()
	initPid, err := rt.Boot(ctx, "init", proc.Reaper)
	require.NoError(t, err)
	var pids []int
	for _, name := range []string{"P0", "P1", "P2", "P3"} {
		pid, err := rt.Spawn(name, spin)
		require.NoError(t, err)
		pids = append(pids, pid)
	}

	cpu := proc.NewCPU(0)
	// init blocks in wait, then the workers share level 3 one tick at a
	// time until each has spent its 8 tick quantum
	for i := 0; i < 1+4*8; i++ {
		require.True(t, rt.Dispatch(cpu))
	}
	assert.EqualValues(t, 33, rt.Ticks())

	infos := rt.ProcInfo()
	require.Len(t, infos, 5)
	assert.Equal(t, initPid, infos[0].Pid)
	assert.Equal(t, 3, infos[0].Level)
	for i, info := range infos[1:] {
		assert.Equal(t, pids[i], info.Pid)
		assert.Equal(t, 2, info.Level)
		assert.Equal(t, [pstat.Levels]int{0, 0, 0, 8}, info.Ticks)
	}

	// init and four workers each hold a kernel stack and one user page
	history, err := rt.DumpAllocated(10)
	require.NoError(t, err)
	assert.Len(t, history, 10)
	_, err = rt.DumpAllocated(11)
	assert.Error(t, err)

	count, err := rt.FileNum(pids[0])
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	_, err = rt.FileNum(0)
	assert.Error(t, err)
}

func TestRuntime_Snapshot(t *testing.T) {
	rt := newRuntime(t)
	ctx := context.Background()
	_, err := rt.Boot(ctx, "init", proc.Reaper)
	require.NoError(t, err)
	_, err = rt.Spawn("worker", spin)
	require.NoError(t, err)
	_, err = rt.Semaphores().Init(1)
	require.NoError(t, err)
	cpu := proc.NewCPU(0)
	for i := 0; i < 5; i++ {
		rt.Dispatch(cpu)
	}

	URL := "mem://localhost/kcore/snapshot.cbor"
	saved, err := rt.SaveSnapshot(ctx, URL)
	require.NoError(t, err)
	assert.Equal(t, "test-boot", saved.BootID)
	assert.Len(t, saved.History, 4)
	assert.Equal(t, 1, saved.Semaphores)
	assert.Equal(t, rt.FreePages(), saved.FreePages)

	loaded, err := rt.LoadSnapshot(ctx, URL)
	require.NoError(t, err)
	assert.Equal(t, saved.Processes, loaded.Processes)
	assert.Equal(t, saved.History, loaded.History)
	assert.EqualValues(t, 5, loaded.Ticks)
}

func TestRuntime_Kill(t *testing.T) {
	rt := newRuntime(t)
	ctx := context.Background()
	_, err := rt.Boot(ctx, "init", proc.Reaper)
	require.NoError(t, err)
	free := rt.FreePages()
	pid, err := rt.Spawn("worker", spin)
	require.NoError(t, err)
	require.NoError(t, rt.Kill(pid))
	assert.Error(t, rt.Kill(1000))

	cpu := proc.NewCPU(0)
	for i := 0; i < 10; i++ {
		rt.Dispatch(cpu)
	}
	_, err = rt.FileNum(pid)
	assert.Error(t, err)
	assert.Equal(t, free, rt.FreePages())
}

func TestRuntime_Events(t *testing.T) {
	config := kcore.DefaultConfig()
	config.Log.Verbosity = 0
	config.Events.Enabled = true
	srv, err := kcore.New(kcore.WithConfig(config))
	require.NoError(t, err)
	rt := srv.Runtime()
	defer rt.Shutdown(context.Background())
	require.NotNil(t, rt.Events())

	var mux sync.Mutex
	var seen []pstat.EventType
	event.SetListenerOf[pstat.Event](rt.Events(), func(e *event.Event[pstat.Event]) {
		mux.Lock()
		seen = append(seen, e.Data.Type)
		mux.Unlock()
	})

	_, err = rt.Boot(context.Background(), "init", proc.Reaper)
	require.NoError(t, err)
	_, err = rt.Spawn("short", func(ctx *proc.Context) {})
	require.NoError(t, err)
	cpu := proc.NewCPU(0)
	for i := 0; i < 4; i++ {
		rt.Dispatch(cpu)
	}

	assert.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return len(seen) >= 4
	}, time.Second, time.Millisecond)
	mux.Lock()
	defer mux.Unlock()
	assert.Equal(t, []pstat.EventType{pstat.EventCreated, pstat.EventCreated, pstat.EventExited, pstat.EventReaped}, seen[:4])
}

func TestRuntime_Start(t *testing.T) {
	rt := newRuntime(t)
	ctx := context.Background()
	_, err := rt.Boot(ctx, "init", proc.Reaper)
	require.NoError(t, err)

	registry := rt.Semaphores()
	items, err := registry.Init(0)
	require.NoError(t, err)
	var consumed atomic.Int64
	const total = 10
	_, err = rt.Spawn("producer", func(ctx *proc.Context) {
		for i := 0; i < total; i++ {
			assert.NoError(t, registry.Post(items))
			ctx.Tick()
		}
	})
	require.NoError(t, err)
	_, err = rt.Spawn("consumer", func(ctx *proc.Context) {
		for i := 0; i < total; i++ {
			if assert.NoError(t, registry.Wait(ctx, items)) {
				consumed.Add(1)
			}
		}
	})
	require.NoError(t, err)

	require.NoError(t, rt.Start(ctx))
	assert.Eventually(t, func() bool { return len(rt.ProcInfo()) == 1 }, 5*time.Second, time.Millisecond)
	require.NoError(t, rt.Shutdown(ctx))
	assert.EqualValues(t, total, consumed.Load())
	value, err := registry.Value(items)
	require.NoError(t, err)
	assert.Equal(t, 0, value)
}
