package updater

import (
	"context"
	"errors"
	"fmt"

	"github.com/moffa90/go-dbfu/firmware"
	"github.com/moffa90/go-dbfu/ports"
	"github.com/moffa90/go-dbfu/protocol"
)

// OutcomeKind classifies how an update ended.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNoDeviceFound
	OutcomeFileNotFound
	OutcomeConnectionError
	OutcomeImageTooLarge
	OutcomeStall
	OutcomeCancelled
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoDeviceFound:
		return "no device found"
	case OutcomeFileNotFound:
		return "file not found"
	case OutcomeConnectionError:
		return "connection error"
	case OutcomeImageTooLarge:
		return "image too large"
	case OutcomeStall:
		return "stall"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// Outcome is the terminal result of an update, reported once at the top level.
type Outcome struct {
	Kind OutcomeKind

	// InvalidPort is set for connection errors on a port that does not exist
	InvalidPort bool

	// Code is the OS error number of a connection error, 0 if none
	Code int

	// Message is the OS error text of a connection error, or the error text otherwise
	Message string

	Err error
}

// Classify maps the error returned by port selection or Session.Run to an Outcome.
// A nil error is OutcomeSuccess.
func Classify(err error) Outcome {
	if err == nil {
		return Outcome{Kind: OutcomeSuccess}
	}

	out := Outcome{Kind: OutcomeFailed, Message: err.Error(), Err: err}

	var (
		fileErr  *FileNotFoundError
		tooLarge *firmware.ImageTooLargeError
		stallErr *StallError
		connErr  *ConnectionError
	)

	switch {
	case errors.Is(err, ports.ErrNoDeviceFound):
		out.Kind = OutcomeNoDeviceFound
	case errors.As(err, &fileErr):
		out.Kind = OutcomeFileNotFound
	case errors.As(err, &tooLarge):
		out.Kind = OutcomeImageTooLarge
	case errors.As(err, &stallErr):
		out.Kind = OutcomeStall
	case errors.As(err, &connErr):
		out.Kind = OutcomeConnectionError
		out.InvalidPort = connErr.InvalidPort()
		out.Code = connErr.Code
		out.Message = connErr.Message
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		out.Kind = OutcomeCancelled
	}

	return out
}

// Failed reports whether the outcome is anything but success.
func (o Outcome) Failed() bool {
	return o.Kind != OutcomeSuccess
}

// String returns the one-line operator message for the outcome.
func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSuccess:
		return "File Transfer Complete"
	case OutcomeNoDeviceFound:
		return "Error: No matching serial devices detected"
	case OutcomeFileNotFound:
		return "Error: Cannot Open File"
	case OutcomeConnectionError:
		if o.InvalidPort {
			return "Error: Invalid Serial Port"
		}
		if o.Code != 0 {
			return fmt.Sprintf("Error: IOError num %d: %s", o.Code, o.Message)
		}
		return fmt.Sprintf("Error: Connection failed: %s", o.Message)
	case OutcomeImageTooLarge:
		return fmt.Sprintf("Error: Image too large (maximum %d bytes)", protocol.MaxImageSize)
	case OutcomeStall:
		return "Error: Device stopped responding"
	case OutcomeCancelled:
		return "Error: Transfer cancelled"
	default:
		return "Error: " + o.Message
	}
}
