// Package fd is the descriptor collaborator of the process table: reference
// counted open files, reference counted working directory inodes, and the
// fixed size per-process descriptor table.
package fd
