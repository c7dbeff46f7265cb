// Package serialport opens serial connections to update targets.
//
// Two drivers are available: go.bug.st/serial (the default, also used for
// port enumeration) and github.com/tarm/serial. Both return a plain
// io.ReadWriteCloser so the transfer session stays driver independent.
package serialport

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"syscall"
	"time"

	bugst "go.bug.st/serial"

	tarm "github.com/tarm/serial"

	"github.com/moffa90/go-dbfu/protocol"
)

// Driver selects the serial library used to open a port.
type Driver string

const (
	// DriverBugST uses go.bug.st/serial
	DriverBugST Driver = "bugst"

	// DriverTarm uses github.com/tarm/serial
	DriverTarm Driver = "tarm"
)

// ErrPortNotFound is returned when the named port does not exist or is not a serial device.
var ErrPortNotFound = errors.New("serial port not found")

// Port is an open serial connection.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port configuration.
type Config struct {
	// Name is the device path, e.g. "/dev/ttyACM0" or "COM3"
	Name string

	// Baud is the line speed
	Baud int

	// Driver selects the serial library (default DriverBugST)
	Driver Driver

	// ReadTimeout bounds a single Read call; 0 blocks until data arrives.
	// A timed out Read returns 0 bytes and no error.
	ReadTimeout time.Duration
}

// DefaultConfig returns the 115200 8N1 configuration the device firmware expects.
func DefaultConfig(name string) Config {
	return Config{
		Name:   name,
		Baud:   protocol.DefaultBaudRate,
		Driver: DriverBugST,
	}
}

// Open opens the port described by cfg.
// A port that does not exist yields ErrPortNotFound. Other failures return
// the underlying OS error (a syscall.Errno where the OS reported one)
// without the port name; callers add it when reporting.
func Open(cfg Config) (Port, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: empty port name", ErrPortNotFound)
	}
	if cfg.Baud <= 0 {
		cfg.Baud = protocol.DefaultBaudRate
	}

	switch cfg.Driver {
	case DriverBugST, "":
		return openBugST(cfg)
	case DriverTarm:
		return openTarm(cfg)
	default:
		return nil, fmt.Errorf("unknown serial driver %q", cfg.Driver)
	}
}

func openBugST(cfg Config) (Port, error) {
	port, err := bugst.Open(cfg.Name, &bugst.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	})
	if err != nil {
		var portErr *bugst.PortError
		if errors.As(err, &portErr) {
			return nil, bugstOpenError(cfg.Name, portErr.Code(), err)
		}
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPortNotFound, cfg.Name)
		}
		return nil, err
	}

	if cfg.ReadTimeout > 0 {
		if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("set read timeout: %w", err)
		}
	}

	return port, nil
}

// bugstOpenError restores the OS error behind a go.bug.st/serial open failure.
// The driver replaces EBUSY and EACCES with a PortError that has no cause.
func bugstOpenError(name string, code bugst.PortErrorCode, err error) error {
	switch code {
	case bugst.PortNotFound, bugst.InvalidSerialPort:
		return fmt.Errorf("%w: %s", ErrPortNotFound, name)
	case bugst.PortBusy:
		return syscall.EBUSY
	case bugst.PermissionDenied:
		return syscall.EACCES
	default:
		return err
	}
}

func openTarm(cfg Config) (Port, error) {
	port, err := tarm.OpenPort(&tarm.Config{
		Name:        cfg.Name,
		Baud:        cfg.Baud,
		Size:        8,
		Parity:      tarm.ParityNone,
		StopBits:    tarm.Stop1,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPortNotFound, cfg.Name)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, pathErr.Err
		}
		return nil, err
	}

	if cfg.ReadTimeout > 0 {
		return &tarmPort{Port: port}, nil
	}
	return port, nil
}

// tarmPort reports a timed out read as (0, nil), matching the bugst driver.
type tarmPort struct {
	*tarm.Port
}

func (p *tarmPort) Read(b []byte) (int, error) {
	n, err := p.Port.Read(b)
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, nil
	}
	return n, err
}

// ParseDriver validates a driver name from configuration.
func ParseDriver(name string) (Driver, error) {
	switch Driver(name) {
	case DriverBugST, "":
		return DriverBugST, nil
	case DriverTarm:
		return DriverTarm, nil
	default:
		return "", fmt.Errorf("unknown serial driver %q: want %q or %q", name, DriverBugST, DriverTarm)
	}
}
