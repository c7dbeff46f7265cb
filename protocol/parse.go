package protocol

import (
	"encoding/binary"
	"fmt"
)

// ParseSizeHeader decodes the 3-byte big-endian image size written by the host.
func ParseSizeHeader(data []byte) (int64, error) {
	if len(data) != SizeFieldLen {
		return 0, &FrameError{
			Field:  "size header",
			Reason: fmt.Sprintf("got %d bytes, expected %d", len(data), SizeFieldLen),
		}
	}

	return int64(data[0])<<16 | int64(data[1])<<8 | int64(data[2]), nil
}

// ParseChunkFrame validates a complete chunk frame and returns its payload.
// This is the receiving side of BuildChunkFrame and is used by device simulators.
//
// Frame structure:
//
//	[SOH][PAYLOAD(ChunkSize)][CRC_H][CRC_L]
//
// A frame whose trailing checksum does not match the payload returns a
// *ChecksumMismatchError.
func ParseChunkFrame(frame []byte) ([]byte, error) {
	if len(frame) != FrameSize {
		return nil, &FrameError{
			Field:  "chunk frame",
			Reason: fmt.Sprintf("got %d bytes, expected %d", len(frame), FrameSize),
		}
	}

	if frame[0] != StartOfChunk {
		return nil, &FrameError{
			Field:  "start of chunk",
			Reason: fmt.Sprintf("got %s, expected %s", ByteName(frame[0]), ByteName(StartOfChunk)),
		}
	}

	payload := frame[MarkerLen : MarkerLen+ChunkSize]
	if err := VerifyChunk(payload, frame[MarkerLen+ChunkSize:]); err != nil {
		return nil, err
	}

	return payload, nil
}

// VerifyChunk checks a payload against the 2-byte big-endian checksum that followed it.
func VerifyChunk(payload, checksum []byte) error {
	if len(checksum) != ChecksumLen {
		return &FrameError{
			Field:  "checksum",
			Reason: fmt.Sprintf("got %d bytes, expected %d", len(checksum), ChecksumLen),
		}
	}

	expected := binary.BigEndian.Uint16(checksum)
	actual := Checksum(payload)
	if expected != actual {
		return &ChecksumMismatchError{Expected: expected, Actual: actual}
	}

	return nil
}
