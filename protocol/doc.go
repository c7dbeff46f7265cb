// Package protocol implements the wire format of the dual-bank firmware update protocol.
//
// This package provides the control bytes, frame builders and parsers, and the
// CRC-16 checksum shared by the host uploader and the device bootloader.
//
// # Protocol Overview
//
// The device paces the transfer; every host write is preceded by a byte from the device:
//
//	device: 'S'
//	host:   [SIZE(3, big-endian)]
//	device: ACK                      \
//	host:   [SOH][PAYLOAD(1024)][CRC] | repeated per chunk
//	device: ACK
//	host:   EOT
//
// Where:
//   - SOH = Start of Chunk (0x01)
//   - ACK = Acknowledge (0x06)
//   - EOT = End of Transmission (0x54)
//   - CRC = CRC-16 (poly 0x1021, init 0x1D0F), big-endian, over the full payload
//
// The final chunk is padded with 0xFF up to ChunkSize before the checksum is taken.
//
// # Frame Builders
//
// Use the Build* functions to create host frames:
//
//	header, err := protocol.BuildSizeHeader(size)
//	frame, err := protocol.EncodeChunk(payload)
//
// # Frame Parsers
//
// The Parse* functions implement the receiving side and are used by device simulators:
//
//	size, err := protocol.ParseSizeHeader(header)
//	payload, err := protocol.ParseChunkFrame(frame)
//	if protocol.IsChecksumMismatch(err) {
//	    // corrupted chunk
//	}
package protocol
