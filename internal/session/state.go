package session

// State is the session's top-level mode.
type State uint8

const (
	// StateVisualizer plays the track with no player.
	StateVisualizer State = iota + 1
	// StateGame runs the track with the pointer-driven player.
	StateGame
	// StatePaused freezes a game in progress.
	StatePaused
	// StateVoid waits between games: the track is rewound, bars stay
	// alive and the player can move and change colour.
	StateVoid
)

func (s State) String() string {
	switch s {
	case StateVisualizer:
		return "visualizer"
	case StateGame:
		return "game"
	case StatePaused:
		return "paused"
	case StateVoid:
		return "void"
	default:
		return "unknown"
	}
}
