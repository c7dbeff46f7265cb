package updater

// State is a step of the transfer state machine.
type State int

const (
	// StateIdle is the state before the connection and image are open
	StateIdle State = iota

	// StateAwaitingStart waits for the device start byte
	StateAwaitingStart

	// StateTransferring sends chunk frames, one per acknowledge
	StateTransferring

	// StateAwaitingFinalAck waits for the acknowledge that precedes end of transmission
	StateAwaitingFinalAck

	// StateComplete is reached after end of transmission has been sent
	StateComplete

	// StateFailed is reached from any other state on error
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingStart:
		return "awaiting start"
	case StateTransferring:
		return "transferring"
	case StateAwaitingFinalAck:
		return "awaiting final ack"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// Transfer is the mutable context of one transfer.
type Transfer struct {
	// TotalBytes is the image size sent in the handshake
	TotalBytes int64

	// BytesSent counts image bytes sent, padding excluded
	BytesSent int64

	// EndOfStream is set once the final chunk has been sent
	EndOfStream bool

	// Chunks is the number of chunk frames sent
	Chunks int

	// TotalChunks is the number of chunk frames the image needs
	TotalChunks int
}
