package protocol

// Frame is a decoded view of one chunk frame.
type Frame struct {
	// Payload is the full ChunkSize payload, padding included
	Payload []byte

	// Checksum is the CRC-16 carried after the payload
	Checksum uint16
}

// Bytes encodes the frame for the wire.
func (f Frame) Bytes() ([]byte, error) {
	return BuildChunkFrame(f.Payload, f.Checksum)
}

// PagesToErase returns the number of flash pages the device erases for an
// image of the given size. The device always erases one page beyond the
// quotient, even for exact multiples of FlashPageSize.
func PagesToErase(size int64) int64 {
	return size/FlashPageSize + 1
}
