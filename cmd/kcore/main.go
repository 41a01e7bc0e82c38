// kcore boots a kernel, runs CPU bound workers on the MLFQ for a number of
// ticks and prints the process and allocation state.
//
// Usage:
//
//	kcore [-config URL] [-procs N] [-ticks T] [-snapshot URL]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/viant/kcore"
	"github.com/viant/kcore/service/proc"
)

func main() {
	configURL := flag.String("config", "", "config URL (yaml, toml or json)")
	procs := flag.Int("procs", 4, "number of CPU bound workers")
	ticks := flag.Uint64("ticks", 500, "ticks to run")
	snapshotURL := flag.String("snapshot", "", "snapshot destination URL")
	flag.Parse()

	if err := run(*configURL, *procs, *ticks, *snapshotURL); err != nil {
		fmt.Fprintf(os.Stderr, "kcore: %v\n", err)
		os.Exit(1)
	}
}

func run(configURL string, procs int, ticks uint64, snapshotURL string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config := kcore.DefaultConfig()
	if configURL != "" {
		var err error
		if config, err = kcore.LoadConfig(ctx, configURL); err != nil {
			return err
		}
	}
	srv, err := kcore.New(kcore.WithConfig(config))
	if err != nil {
		return err
	}
	rt := srv.Runtime()
	if _, err = rt.Boot(ctx, "init", proc.Reaper); err != nil {
		return err
	}
	for i := 0; i < procs; i++ {
		if _, err = rt.Spawn(fmt.Sprintf("worker%d", i), spin); err != nil {
			return err
		}
	}
	if err = rt.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for rt.Ticks() < ticks {
		select {
		case <-ctx.Done():
			ticks = 0
		case <-ticker.C:
		}
	}
	snap, err := rt.Snapshot(context.Background())
	if err != nil {
		return err
	}
	history, err := rt.DumpAllocated(min(10, len(snap.History)))
	if err != nil {
		return err
	}
	if snapshotURL != "" {
		if _, err = rt.SaveSnapshot(context.Background(), snapshotURL); err != nil {
			return err
		}
	}
	if err = rt.Shutdown(context.Background()); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PID\tNAME\tSTATE\tLEVEL\tTICKS\tWAIT")
	for _, p := range snap.Processes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\n", p.Pid, p.Name, p.State, p.Level, p.Ticks[p.Level], p.WaitTicks[p.Level])
	}
	if err = w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nticks: %d free pages: %d\nlast allocations:\n", snap.Ticks, snap.FreePages)
	for _, addr := range history {
		fmt.Printf("  %v\n", addr)
	}
	return nil
}

func spin(ctx *proc.Context) {
	for {
		ctx.Tick()
	}
}
