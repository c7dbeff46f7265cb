package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/moffa90/go-dbfu/firmware"
	"github.com/moffa90/go-dbfu/protocol"
)

// Opener opens the serial connection to the named port.
type Opener func(name string) (io.ReadWriteCloser, error)

// Session transfers one firmware image to a device.
// It owns the connection and the image file for the duration of Run and
// closes both on every exit path.
//
// A Session is not safe for concurrent use.
type Session struct {
	open     Opener
	config   Config
	state    State
	transfer Transfer
}

// New creates a new Session that connects through open.
//
// Example:
//
//	open := func(name string) (io.ReadWriteCloser, error) {
//	    return serialport.Open(serialport.DefaultConfig(name))
//	}
//	sess := updater.New(open,
//	    updater.WithProgressCallback(progressFunc),
//	)
func New(open Opener, opts ...Option) *Session {
	if open == nil {
		panic("opener cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Session{
		open:   open,
		config: cfg,
	}
}

// State returns the current state of the session.
func (s *Session) State() State {
	return s.state
}

// Transfer returns a snapshot of the transfer context.
func (s *Session) Transfer() Transfer {
	return s.transfer
}

// Run performs the complete update sequence:
//  1. Open the connection and the image, recording its size
//  2. Wait for the device start byte and send the 3-byte image size
//  3. For every chunk: wait for ACK, send SOH + padded payload + CRC
//  4. Wait for the final ACK and send EOT
//
// The image is opened before anything is written, so a missing image
// fails with *FileNotFoundError without touching the wire.
//
// Reads from the device block until the expected byte arrives unless
// WithReadTimeout is set. The context is checked between reads.
func (s *Session) Run(ctx context.Context, portName, imagePath string) (err error) {
	startTime := time.Now()
	s.state = StateIdle
	s.transfer = Transfer{}

	defer func() {
		if err != nil {
			s.logError("transfer failed",
				"port", portName,
				"state", s.state.String(),
				"bytes_sent", s.transfer.BytesSent,
				"error", err,
			)
			s.state = StateFailed
		}
	}()

	s.reportProgress(Progress{Phase: PhaseConnecting})

	conn, err := s.open(portName)
	if err != nil {
		return newConnectionError(portName, "open", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			s.logError("close connection", "port", portName, "error", cerr)
		}
	}()

	s.logDebug("connected", "port", portName)

	img, err := firmware.Open(imagePath)
	if err != nil {
		var tooLarge *firmware.ImageTooLargeError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &FileNotFoundError{Path: imagePath, Err: err}
	}
	defer func() { _ = img.Close() }()

	return s.transferImage(ctx, conn, portName, img, startTime)
}

// transferImage runs the handshake and chunk loop over an open connection.
func (s *Session) transferImage(ctx context.Context, conn io.ReadWriter, port string, img *firmware.Image, startTime time.Time) error {
	s.transfer = Transfer{
		TotalBytes:  img.Size,
		TotalChunks: img.TotalChunks(),
	}

	// Handshake
	s.state = StateAwaitingStart
	s.reportProgress(s.progress(PhaseWaiting, startTime))
	s.logInfo("waiting for device to initiate update",
		"port", port,
		"image", img.Path,
		"size", img.Size,
	)

	if err := s.waitFor(ctx, conn, port, protocol.HandshakeStart); err != nil {
		return err
	}

	header, err := protocol.BuildSizeHeader(img.Size)
	if err != nil {
		return err
	}
	if err := s.write(conn, port, header); err != nil {
		return err
	}

	s.state = StateTransferring
	s.logDebug("handshake complete",
		"size_header", fmt.Sprintf("% X", header),
		"chunks", s.transfer.TotalChunks,
		"pages_to_erase", protocol.PagesToErase(img.Size),
	)

	// Chunk loop, paced by the device
	chunks := img.Chunks()
	for !s.transfer.EndOfStream {
		if err := s.waitFor(ctx, conn, port, protocol.Ack); err != nil {
			return err
		}

		chunk, err := chunks.Next()
		if err != nil {
			return fmt.Errorf("read image %s: %w", img.Path, err)
		}

		checksum := protocol.Checksum(chunk.Payload)
		frame, err := protocol.BuildChunkFrame(chunk.Payload, checksum)
		if err != nil {
			return err
		}

		if err := s.write(conn, port, frame); err != nil {
			return fmt.Errorf("chunk %d: %w", chunk.Index, err)
		}

		s.transfer.BytesSent += int64(chunk.Len)
		s.transfer.Chunks++
		s.transfer.EndOfStream = chunk.Last

		s.logDebug("chunk sent",
			"index", chunk.Index,
			"bytes", chunk.Len,
			"padding", chunk.Padding(),
			"checksum", fmt.Sprintf("0x%04X", checksum),
		)
		s.reportProgress(s.progress(PhaseTransferring, startTime))
	}

	// Final acknowledge and end of transmission
	s.state = StateAwaitingFinalAck
	s.reportProgress(s.progress(PhaseFinishing, startTime))

	if err := s.waitFor(ctx, conn, port, protocol.Ack); err != nil {
		return err
	}
	if err := s.write(conn, port, []byte{protocol.EndOfTransmission}); err != nil {
		return err
	}

	s.state = StateComplete
	s.reportProgress(s.progress(PhaseComplete, startTime))
	s.logInfo("transfer complete",
		"chunks", s.transfer.Chunks,
		"bytes", s.transfer.BytesSent,
		"elapsed", time.Since(startTime).String(),
	)

	return nil
}

// waitFor reads until want arrives, discarding any other bytes.
func (s *Session) waitFor(ctx context.Context, r io.Reader, port string, want byte) error {
	var (
		buf       [1]byte
		discarded int
		start     = time.Now()
	)

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("waiting for %s: %w", protocol.ByteName(want), err)
		}

		n, err := r.Read(buf[:])
		if n > 0 {
			if buf[0] == want {
				if discarded > 0 {
					s.logDebug("discarded unexpected bytes",
						"count", discarded,
						"before", protocol.ByteName(want),
					)
				}
				return nil
			}
			discarded++
		}

		if err != nil {
			return newConnectionError(port, "read", err)
		}

		if s.config.ReadTimeout > 0 && time.Since(start) >= s.config.ReadTimeout {
			return &StallError{
				Expected: want,
				State:    s.state,
				Waited:   time.Since(start),
			}
		}
	}
}

// write sends data to the device.
func (s *Session) write(w io.Writer, port string, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return newConnectionError(port, "write", err)
	}
	return nil
}

// progress builds a Progress from the current transfer context.
func (s *Session) progress(phase string, startTime time.Time) Progress {
	t := s.transfer

	var percentage float64
	switch {
	case phase == PhaseComplete:
		percentage = 100
	case t.TotalBytes > 0:
		percentage = float64(t.BytesSent) / float64(t.TotalBytes) * 100
	case t.TotalChunks > 0:
		percentage = float64(t.Chunks) / float64(t.TotalChunks) * 100
	}

	return Progress{
		Phase:       phase,
		Chunk:       t.Chunks,
		TotalChunks: t.TotalChunks,
		BytesSent:   t.BytesSent,
		TotalBytes:  t.TotalBytes,
		Percentage:  percentage,
		ElapsedTime: time.Since(startTime),
	}
}

// reportProgress calls the progress callback if configured.
func (s *Session) reportProgress(progress Progress) {
	if s.config.ProgressCallback != nil {
		s.config.ProgressCallback(progress)
	}
}

// logDebug logs a debug message if a logger is configured.
func (s *Session) logDebug(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (s *Session) logInfo(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (s *Session) logError(msg string, keysAndValues ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Error(msg, keysAndValues...)
	}
}
