package snapshot

import (
	"time"

	"github.com/viant/kcore/model/mem"
	"github.com/viant/kcore/model/pstat"
)

// Snapshot is a point-in-time view of the kernel.
type Snapshot struct {
	BootID     string       `json:"bootID" cbor:"bootID"`
	TakenAt    time.Time    `json:"takenAt" cbor:"takenAt"`
	Ticks      uint64       `json:"ticks" cbor:"ticks"`
	Processes  []pstat.Info `json:"processes" cbor:"processes"`
	History    []mem.Addr   `json:"history" cbor:"history"`
	FreePages  int          `json:"freePages" cbor:"freePages"`
	Semaphores int          `json:"semaphores" cbor:"semaphores"`
}

// Process returns the entry for pid.
func (s *Snapshot) Process(pid int) (pstat.Info, bool) {
	for _, info := range s.Processes {
		if info.Pid == pid {
			return info, true
		}
	}
	return pstat.Info{}, false
}
