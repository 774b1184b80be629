package loader

// State is an asset's position in the load/unload lifecycle.
type State uint8

const (
	// StateUnloaded is the initial and resting state: no content held.
	StateUnloaded State = iota
	// StateWaiting means dependencies are still loading.
	StateWaiting
	// StateLoading means the asset's own content load is in flight.
	StateLoading
	// StateUnloading means the asset's own content unload is in flight.
	StateUnloading
	// StateLoaded means content is available and dependencies are loaded.
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateWaiting:
		return "waiting"
	case StateLoading:
		return "loading"
	case StateUnloading:
		return "unloading"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}
