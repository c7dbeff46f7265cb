package protocol

import "github.com/sigurn/crc16"

// CRC-16 parameters. They must match the configuration of the device's
// hardware CRC unit exactly; the initial value is not the CCITT-FALSE default.
const (
	// CRC16Polynomial is the CRC-16-CCITT polynomial (0x1021)
	CRC16Polynomial = 0x1021

	// CRC16InitialValue is the CRC-16 initial value programmed into the device CRC unit
	CRC16InitialValue = 0x1D0F

	// CRC16CheckValue is the checksum of the ASCII string "123456789"
	CRC16CheckValue = 0xE5CC
)

// CRC16Params is the parameter set used for every chunk checksum:
// no input or output reflection and no final XOR (CRC-16/AUG-CCITT).
var CRC16Params = crc16.Params{
	Poly:   CRC16Polynomial,
	Init:   CRC16InitialValue,
	RefIn:  false,
	RefOut: false,
	XorOut: 0x0000,
	Check:  CRC16CheckValue,
	Name:   "CRC-16/AUG-CCITT",
}

var crcTable = crc16.MakeTable(CRC16Params)

// Checksum computes the CRC-16 of data using CRC16Params.
//
// The frame checksum is always computed over a full ChunkSize payload,
// padding included:
//
//	sum := protocol.Checksum(chunk) // len(chunk) == protocol.ChunkSize
func Checksum(data []byte) uint16 {
	return crc16.Checksum(data, crcTable)
}
