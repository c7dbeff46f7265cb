// Package simulator implements the device side of the update protocol.
//
// It behaves like the bootloader firmware: it requests the image with 'S',
// reads the 3-byte size, sends ACK before every header byte, verifies each
// chunk's CRC, and stops at EOT. It is used by tests and by the mock_device
// example to exercise a Session without hardware.
package simulator

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/moffa90/go-dbfu/protocol"
)

// Result is what the simulated device received.
type Result struct {
	// Size is the image size announced in the handshake
	Size int64

	// PagesErased is the number of flash pages the device would erase for Size
	PagesErased int64

	// Frames are the chunk frames received, in order
	Frames []protocol.Frame

	// Image is the received image with padding removed
	Image []byte

	// EndOfTransmission is set when the host finished with EOT
	EndOfTransmission bool
}

// Option configures a Device.
type Option func(*Device)

// WithLatency delays every acknowledge, as a flash write would.
func WithLatency(latency time.Duration) Option {
	return func(d *Device) {
		d.latency = latency
	}
}

// WithNoise makes the device emit noise before every control byte.
func WithNoise(noise []byte) Option {
	return func(d *Device) {
		d.noise = append([]byte(nil), noise...)
	}
}

// Device simulates the bootloader end of the connection.
type Device struct {
	conn    io.ReadWriter
	latency time.Duration
	noise   []byte
}

// New creates a Device that talks over conn.
func New(conn io.ReadWriter, opts ...Option) *Device {
	d := &Device{conn: conn}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Serve runs one update from the device side.
// It returns what was received so far together with any protocol error;
// a CRC mismatch is returned as *protocol.ChecksumMismatchError.
func (d *Device) Serve() (*Result, error) {
	if err := d.send(protocol.HandshakeStart); err != nil {
		return nil, fmt.Errorf("send start: %w", err)
	}

	header := make([]byte, protocol.SizeFieldLen)
	if _, err := io.ReadFull(d.conn, header); err != nil {
		return nil, fmt.Errorf("read size header: %w", err)
	}

	size, err := protocol.ParseSizeHeader(header)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Size:        size,
		PagesErased: protocol.PagesToErase(size),
		Image:       make([]byte, 0, size),
	}

	for {
		if d.latency > 0 {
			time.Sleep(d.latency)
		}
		if err := d.send(protocol.Ack); err != nil {
			return res, fmt.Errorf("send ack: %w", err)
		}

		var marker [1]byte
		if _, err := io.ReadFull(d.conn, marker[:]); err != nil {
			return res, fmt.Errorf("read header: %w", err)
		}

		if marker[0] == protocol.EndOfTransmission {
			res.EndOfTransmission = true
			return res, nil
		}
		if marker[0] != protocol.StartOfChunk {
			return res, &protocol.FrameError{
				Field:  "packet header",
				Reason: fmt.Sprintf("got %s", protocol.ByteName(marker[0])),
			}
		}

		body := make([]byte, protocol.ChunkSize+protocol.ChecksumLen)
		if _, err := io.ReadFull(d.conn, body); err != nil {
			return res, fmt.Errorf("read chunk %d: %w", len(res.Frames), err)
		}

		payload, checksum := body[:protocol.ChunkSize], body[protocol.ChunkSize:]
		if err := protocol.VerifyChunk(payload, checksum); err != nil {
			return res, fmt.Errorf("chunk %d: %w", len(res.Frames), err)
		}

		res.Frames = append(res.Frames, protocol.Frame{
			Payload:  payload,
			Checksum: binary.BigEndian.Uint16(checksum),
		})

		remaining := size - int64(len(res.Image))
		if remaining > protocol.ChunkSize {
			remaining = protocol.ChunkSize
		}
		if remaining > 0 {
			res.Image = append(res.Image, payload[:remaining]...)
		}
	}
}

func (d *Device) send(b byte) error {
	if len(d.noise) > 0 {
		if _, err := d.conn.Write(d.noise); err != nil {
			return err
		}
	}
	_, err := d.conn.Write([]byte{b})
	return err
}

// Done carries the result of a simulated device started with Start.
type Done struct {
	Result *Result
	Err    error
}

// Start runs a simulated device on one end of an in-memory pipe and returns
// the host end. The device end is closed when Serve returns, so a host still
// waiting for a byte sees io.EOF. The outcome is delivered on the channel.
//
// Example:
//
//	host, done := simulator.Start()
//	sess := updater.New(func(string) (io.ReadWriteCloser, error) { return host, nil })
//	err := sess.Run(ctx, "sim", "app.bin")
//	d := <-done
func Start(opts ...Option) (net.Conn, <-chan Done) {
	host, device := net.Pipe()
	done := make(chan Done, 1)

	go func() {
		defer device.Close()
		res, err := New(device, opts...).Serve()
		done <- Done{Result: res, Err: err}
	}()

	return host, done
}
