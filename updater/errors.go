package updater

import (
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/moffa90/go-dbfu/protocol"
	"github.com/moffa90/go-dbfu/serialport"
)

// FileNotFoundError indicates that the image could not be opened for reading.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("cannot open image %s: %v", e.Path, e.Err)
}

func (e *FileNotFoundError) Unwrap() error {
	return e.Err
}

// ConnectionError indicates a failure to open or use the serial connection.
type ConnectionError struct {
	// Port is the name of the serial port
	Port string

	// Op is the operation that failed ("open", "read", "write", "close")
	Op string

	// Code is the OS error number, 0 if the failure carried none
	Code int

	// Message is the OS error text, or the error text if there is no OS error
	Message string

	Err error
}

func newConnectionError(port, op string, err error) *ConnectionError {
	ce := &ConnectionError{Port: port, Op: op, Message: err.Error(), Err: err}

	var errno syscall.Errno
	if errors.As(err, &errno) && !errors.Is(err, serialport.ErrPortNotFound) {
		ce.Code = int(errno)
		ce.Message = errno.Error()
	}
	return ce
}

func (e *ConnectionError) Error() string {
	if e.InvalidPort() {
		return fmt.Sprintf("%s %s: invalid serial port", e.Op, e.Port)
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s %s: I/O error %d: %s", e.Op, e.Port, e.Code, e.Message)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// InvalidPort reports whether the port does not exist or is not a serial device.
func (e *ConnectionError) InvalidPort() bool {
	return errors.Is(e.Err, serialport.ErrPortNotFound)
}

// StallError indicates that the device did not send an expected byte within the read timeout.
type StallError struct {
	// Expected is the byte the session was waiting for
	Expected byte

	// State is the session state at the time of the stall
	State State

	// Waited is how long the session waited
	Waited time.Duration
}

func (e *StallError) Error() string {
	return fmt.Sprintf("device stalled: no %s after %s while %s",
		protocol.ByteName(e.Expected), e.Waited, e.State)
}
