// Package kcore is a teaching kernel core: a randomized physical page
// allocator, a process table scheduled by a four level feedback queue,
// sleep/wakeup and counting semaphores.
//
// The root package wires the services together from a Config:
//
//	srv, _ := kcore.New(kcore.WithConfig(cfg))
//	rt := srv.Runtime()
//	_, _ = rt.Boot(ctx, "init", proc.Reaper)
//	_, _ = rt.Spawn("worker", func(ctx *proc.Context) { ... })
//	_ = rt.Start(ctx)
//	defer rt.Shutdown(ctx)
//
// Processes interact with the kernel through the proc.Context they are
// started with and the semaphore registry returned by Runtime.Semaphores.
package kcore
