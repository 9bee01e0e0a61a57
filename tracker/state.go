package tracker

type State int32

const (
	Idle State = iota
	PermissionRequested
	Tracking
	PermissionDenied
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PermissionRequested:
		return "permission_requested"
	case Tracking:
		return "tracking"
	case PermissionDenied:
		return "permission_denied"
	}
	return "unknown"
}

// DeniedMessage is published for display when location permission is refused.
const DeniedMessage = "location permission is required to measure speed"
