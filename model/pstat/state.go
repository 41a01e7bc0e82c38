package pstat

// State is the run state of a process slot.
type State int

const (
	Unused State = iota
	Embryo
	Sleeping
	Runnable
	Running
	Zombie
)

var stateNames = [...]string{
	Unused:   "unused",
	Embryo:   "embryo",
	Sleeping: "sleep",
	Runnable: "runble",
	Running:  "run",
	Zombie:   "zombie",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "???"
	}
	return stateNames[s]
}

// Scheduled reports whether a process in state s belongs to a level queue.
func (s State) Scheduled() bool {
	return s == Runnable || s == Running || s == Sleeping
}
