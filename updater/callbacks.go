package updater

import "time"

// Phase names reported in Progress.
const (
	// PhaseConnecting is reported while the connection and image are being opened
	PhaseConnecting = "connecting"

	// PhaseWaiting is reported while waiting for the device to request the image
	PhaseWaiting = "waiting"

	// PhaseTransferring is reported after every chunk frame
	PhaseTransferring = "transferring"

	// PhaseFinishing is reported while waiting for the final acknowledge
	PhaseFinishing = "finishing"

	// PhaseComplete is reported once end of transmission has been sent
	PhaseComplete = "complete"
)

// Progress contains information about the transfer progress.
// Passed to ProgressCallback during a session.
type Progress struct {
	// Phase describes the current operation phase:
	//   "connecting"   - Opening the connection and image
	//   "waiting"      - Waiting for the device start byte
	//   "transferring" - Sending chunk frames
	//   "finishing"    - Waiting for the final acknowledge
	//   "complete"     - Transfer completed successfully
	Phase string

	// Chunk is the number of chunk frames sent so far
	Chunk int

	// TotalChunks is the number of chunk frames the image needs
	TotalChunks int

	// BytesSent is the number of image bytes sent so far, padding excluded
	BytesSent int64

	// TotalBytes is the image size sent in the handshake
	TotalBytes int64

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// ElapsedTime is the time elapsed since the session started
	ElapsedTime time.Duration
}

// ProgressCallback is called during a session to report progress.
// Implementations should return quickly; the device is waiting.
//
// Example:
//
//	sess := updater.New(open,
//	    updater.WithProgressCallback(func(p updater.Progress) {
//	        fmt.Printf("[%s] %d/%d bytes\n", p.Phase, p.BytesSent, p.TotalBytes)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the session.
// This allows integration with any logging framework.
//
// Example with glog:
//
//	type glogLogger struct{}
//	func (glogLogger) Debug(msg string, kv ...interface{}) { glog.V(1).Infoln(msg, kv) }
//	func (glogLogger) Info(msg string, kv ...interface{})  { glog.Infoln(msg, kv) }
//	func (glogLogger) Error(msg string, kv ...interface{}) { glog.Errorln(msg, kv) }
//
//	sess := updater.New(open, updater.WithLogger(glogLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}
