package protocol

// ProtocolVersion identifies the dual-bank firmware update protocol revision implemented here.
const ProtocolVersion = "1.0"

// Control bytes exchanged on the wire.
const (
	// HandshakeStart is sent by the device when it is ready to receive an image ('S')
	HandshakeStart = 'S'

	// Ack is sent by the device before every frame and once more before end of transmission
	Ack = 0x06

	// StartOfChunk prefixes every chunk frame sent by the host
	StartOfChunk = 0x01

	// EndOfTransmission is sent by the host after the final acknowledge
	EndOfTransmission = 0x54
)

// Frame layout constants.
const (
	// ChunkSize is the payload capacity of one frame in bytes
	ChunkSize = 1024

	// PaddingByte fills the unused tail of the final chunk (erased flash value)
	PaddingByte = 0xFF

	// ChecksumLen is the size of the trailing CRC-16 field
	ChecksumLen = 2

	// MarkerLen is the size of the start-of-chunk marker
	MarkerLen = 1

	// FrameSize is the size of a complete chunk frame:
	// SOH(1) + PAYLOAD(1024) + CRC(2)
	FrameSize = MarkerLen + ChunkSize + ChecksumLen

	// SizeFieldLen is the width of the big-endian image size sent after the handshake
	SizeFieldLen = 3

	// MaxImageSize is the largest image size that fits in SizeFieldLen bytes
	MaxImageSize = 1<<(8*SizeFieldLen) - 1
)

// Serial line defaults used by the reference loader.
const (
	// DefaultBaudRate is the UART speed the device firmware is configured for
	DefaultBaudRate = 115200

	// DefaultVendorPrefix matches the manufacturer string of ST-Link virtual COM ports
	DefaultVendorPrefix = "STMicroelectronics"
)

// FlashPageSize is the page size the device erases before programming.
const FlashPageSize = 2048
