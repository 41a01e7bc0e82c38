package pstat

// Levels is the number of scheduler priority levels; 3 is the highest.
const Levels = 4

// Info is a point-in-time view of one scheduled process.
type Info struct {
	Pid       int         `json:"pid" cbor:"pid"`
	Name      string      `json:"name" cbor:"name"`
	State     State       `json:"state" cbor:"state"`
	Level     int         `json:"level" cbor:"level"`
	Ticks     [Levels]int `json:"ticks" cbor:"ticks"`
	WaitTicks [Levels]int `json:"waitTicks" cbor:"waitTicks"`
}

// EventType names a process lifecycle or scheduling transition.
type EventType string

const (
	EventCreated  EventType = "created"
	EventExited   EventType = "exited"
	EventReaped   EventType = "reaped"
	EventKilled   EventType = "killed"
	EventDemoted  EventType = "demoted"
	EventPromoted EventType = "promoted"
	EventBoosted  EventType = "boosted"
)

// Event describes a transition observed by the process table.
type Event struct {
	Type  EventType `json:"type" cbor:"type"`
	Pid   int       `json:"pid" cbor:"pid"`
	Name  string    `json:"name,omitempty" cbor:"name,omitempty"`
	Level int       `json:"level" cbor:"level"`
	Tick  uint64    `json:"tick" cbor:"tick"`
}
