package loader

// Event types for asset lifecycle notifications.
type EventType uint8

const (
	EventRegistered EventType = iota
	EventStateChanged
	EventLoadFailed
	EventUnloadFailed
)

// Event represents an asset lifecycle event.
type Event struct {
	Err   error
	Name  string
	ID    uint32
	State State
	Type  EventType
}

// Observer receives notifications about asset lifecycle events. Observers are
// invoked outside internal locks and may call back into the Registry.
type Observer interface {
	OnAssetEvent(Event)
}
