package ports

import (
	"strings"

	"go.bug.st/serial/enumerator"
)

// vendorNames maps USB vendor IDs to the manufacturer string the OS reports for them.
var vendorNames = map[string]string{
	"0483": "STMicroelectronics",
	"0403": "FTDI",
	"10C4": "Silicon Labs",
	"1A86": "QinHeng Electronics",
	"067B": "Prolific Technology Inc.",
	"2341": "Arduino LLC",
	"303A": "Espressif Systems",
	"1366": "SEGGER",
	"0D28": "ARM",
}

// USBLister enumerates ports with go.bug.st/serial/enumerator.
//
// The enumerator reports USB vendor and product IDs but not the manufacturer
// string, so the manufacturer is resolved from the vendor ID.
type USBLister struct{}

// ListPorts returns every serial port on the system.
func (USBLister) ListPorts() ([]Candidate, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(details))
	for _, d := range details {
		candidates = append(candidates, fromDetails(d))
	}
	return candidates, nil
}

func fromDetails(d *enumerator.PortDetails) Candidate {
	c := Candidate{Name: d.Name}
	if !d.IsUSB {
		return c
	}

	c.VID = strings.ToUpper(d.VID)
	c.PID = strings.ToUpper(d.PID)
	c.Product = d.Product
	c.SerialNumber = d.SerialNumber
	c.Manufacturer = vendorNames[c.VID]
	return c
}
