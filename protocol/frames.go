package protocol

import (
	"encoding/binary"
	"fmt"
)

// BuildSizeHeader encodes the image size sent in reply to HandshakeStart.
//
// Frame structure:
//
//	[SIZE_H][SIZE_M][SIZE_L]
//
// Returns an error if size is negative or larger than MaxImageSize.
func BuildSizeHeader(size int64) ([]byte, error) {
	if size < 0 || size > MaxImageSize {
		return nil, fmt.Errorf("image size %d out of range: must be 0-%d", size, MaxImageSize)
	}

	return []byte{byte(size >> 16), byte(size >> 8), byte(size)}, nil
}

// BuildChunkFrame constructs a chunk frame from a full-capacity payload and its checksum.
//
// Frame structure:
//
//	[SOH][PAYLOAD(ChunkSize)][CRC_H][CRC_L]
//
// The payload must be exactly ChunkSize bytes; short final chunks are padded
// by the caller before the checksum is computed.
func BuildChunkFrame(payload []byte, checksum uint16) ([]byte, error) {
	if len(payload) != ChunkSize {
		return nil, fmt.Errorf("payload must be exactly %d bytes, got %d", ChunkSize, len(payload))
	}

	frame := make([]byte, 0, FrameSize)

	// Start of chunk
	frame = append(frame, StartOfChunk)

	// Payload
	frame = append(frame, payload...)

	// Checksum (big-endian)
	frame = binary.BigEndian.AppendUint16(frame, checksum)

	return frame, nil
}

// EncodeChunk computes the checksum of payload and builds its frame.
func EncodeChunk(payload []byte) ([]byte, error) {
	if len(payload) != ChunkSize {
		return nil, fmt.Errorf("payload must be exactly %d bytes, got %d", ChunkSize, len(payload))
	}
	return BuildChunkFrame(payload, Checksum(payload))
}
