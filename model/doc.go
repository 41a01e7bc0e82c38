// Package model groups the plain data types shared across the kernel
// services.
//
// The `mem` sub-package defines page geometry and addresses; `pstat` defines
// process states, the per-process scheduling snapshot returned by process
// introspection, and the lifecycle events published by the process table.
package model
