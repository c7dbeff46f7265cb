// Package ports discovers serial ports attached to update targets and resolves
// them to a single connection target.
package ports

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoDeviceFound is returned when no enumerated port matches the vendor prefix.
var ErrNoDeviceFound = errors.New("no matching serial device detected")

// Candidate is a serial port reported by the operating system.
type Candidate struct {
	// Name is the device path or COM name used to open the port
	Name string

	// Manufacturer is the vendor string of the USB device, empty if unknown
	Manufacturer string

	// Product is the USB product string, if reported
	Product string

	// VID and PID are the USB vendor and product IDs as hex strings
	VID string
	PID string

	// SerialNumber is the USB serial number, if reported
	SerialNumber string
}

func (c Candidate) String() string {
	if c.Manufacturer == "" {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Manufacturer)
}

// Lister enumerates the serial ports currently present.
type Lister interface {
	ListPorts() ([]Candidate, error)
}

// ListerFunc adapts a function to the Lister interface.
type ListerFunc func() ([]Candidate, error)

// ListPorts calls f.
func (f ListerFunc) ListPorts() ([]Candidate, error) {
	return f()
}

// Chooser asks the operator to pick one of several matching ports.
// The returned text is used as the port name without validation.
type Chooser interface {
	ChoosePort(candidates []Candidate) (string, error)
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(candidates []Candidate) (string, error)

// ChoosePort calls f.
func (f ChooserFunc) ChoosePort(candidates []Candidate) (string, error) {
	return f(candidates)
}

// Discover returns the ports whose manufacturer string begins with vendorPrefix.
// The match is case-sensitive.
func Discover(lister Lister, vendorPrefix string) ([]Candidate, error) {
	all, err := lister.ListPorts()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	var matches []Candidate
	for _, c := range all {
		if strings.HasPrefix(c.Manufacturer, vendorPrefix) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// Select resolves the port to connect to:
//   - no match returns ErrNoDeviceFound
//   - one match is selected without asking
//   - several matches are handed to chooser
//
// Nothing is opened.
func Select(lister Lister, vendorPrefix string, chooser Chooser) (string, error) {
	matches, err := Discover(lister, vendorPrefix)
	if err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", ErrNoDeviceFound
	case 1:
		return matches[0].Name, nil
	}

	if chooser == nil {
		return "", fmt.Errorf("%d matching ports and no way to choose between them", len(matches))
	}

	name, err := chooser.ChoosePort(matches)
	if err != nil {
		return "", fmt.Errorf("choose port: %w", err)
	}
	return strings.TrimSpace(name), nil
}
