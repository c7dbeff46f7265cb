package protocol

import (
	"errors"
	"fmt"
)

// FrameError reports a malformed frame or header.
type FrameError struct {
	// Field is the part of the frame that failed validation
	Field string

	// Reason describes what was wrong with it
	Reason string
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ChecksumMismatchError reports a chunk whose trailing CRC does not match its payload.
type ChecksumMismatchError struct {
	// Expected is the checksum carried in the frame
	Expected uint16

	// Actual is the checksum computed over the received payload
	Actual uint16
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: frame carries 0x%04X, payload computes 0x%04X",
		e.Expected, e.Actual)
}

// IsChecksumMismatch returns true if the error is a ChecksumMismatchError.
func IsChecksumMismatch(err error) bool {
	var mismatch *ChecksumMismatchError
	return errors.As(err, &mismatch)
}

// ByteName returns a human-readable name for a control byte.
func ByteName(b byte) string {
	switch b {
	case HandshakeStart:
		return "START ('S')"
	case Ack:
		return "ACK (0x06)"
	case StartOfChunk:
		return "SOH (0x01)"
	case EndOfTransmission:
		return "EOT (0x54)"
	default:
		return fmt.Sprintf("0x%02X", b)
	}
}
