package simulator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/moffa90/go-dbfu/protocol"
)

// hostSend drives the host side of the protocol by hand.
func hostSend(conn io.ReadWriter, image []byte, corruptChunk int) error {
	expect := func(want byte) error {
		var b [1]byte
		if _, err := io.ReadFull(conn, b[:]); err != nil {
			return fmt.Errorf("read %s: %w", protocol.ByteName(want), err)
		}
		if b[0] != want {
			return fmt.Errorf("got %s, want %s", protocol.ByteName(b[0]), protocol.ByteName(want))
		}
		return nil
	}

	if err := expect(protocol.HandshakeStart); err != nil {
		return err
	}
	header, err := protocol.BuildSizeHeader(int64(len(image)))
	if err != nil {
		return err
	}
	if _, err := conn.Write(header); err != nil {
		return err
	}

	for i := 0; i*protocol.ChunkSize < len(image); i++ {
		if err := expect(protocol.Ack); err != nil {
			return err
		}

		payload := bytes.Repeat([]byte{protocol.PaddingByte}, protocol.ChunkSize)
		end := (i + 1) * protocol.ChunkSize
		if end > len(image) {
			end = len(image)
		}
		copy(payload, image[i*protocol.ChunkSize:end])

		frame, err := protocol.EncodeChunk(payload)
		if err != nil {
			return err
		}
		if i == corruptChunk {
			frame[10] ^= 0xFF
		}
		if _, err := conn.Write(frame); err != nil {
			return err
		}
	}

	if err := expect(protocol.Ack); err != nil {
		return err
	}
	_, err = conn.Write([]byte{protocol.EndOfTransmission})
	return err
}

func TestServe(t *testing.T) {
	image := make([]byte, 2500)
	for i := range image {
		image[i] = byte(i * 7)
	}

	host, done := Start()
	defer host.Close()

	if err := hostSend(host, image, -1); err != nil {
		t.Fatalf("host: %v", err)
	}

	d := <-done
	if d.Err != nil {
		t.Fatalf("Serve() error: %v", d.Err)
	}

	res := d.Result
	if res.Size != 2500 {
		t.Errorf("Size = %d, want 2500", res.Size)
	}
	if res.PagesErased != 2 {
		t.Errorf("PagesErased = %d, want 2", res.PagesErased)
	}
	if len(res.Frames) != 3 {
		t.Errorf("got %d frames, want 3", len(res.Frames))
	}
	if !bytes.Equal(res.Image, image) {
		t.Error("received image differs from sent image")
	}
	if !res.EndOfTransmission {
		t.Error("EndOfTransmission not recorded")
	}
}

func TestServeChecksumMismatch(t *testing.T) {
	image := make([]byte, 3000)

	host, done := Start()
	defer host.Close()

	// The device hangs up after the bad chunk, so the host side fails too.
	if err := hostSend(host, image, 1); err == nil {
		t.Error("host completed despite corrupted chunk")
	}

	d := <-done
	if !protocol.IsChecksumMismatch(d.Err) {
		t.Fatalf("Serve() error = %v, want checksum mismatch", d.Err)
	}
	if len(d.Result.Frames) != 1 {
		t.Errorf("accepted %d frames before the bad one, want 1", len(d.Result.Frames))
	}
}

func TestServeBadHeader(t *testing.T) {
	host, done := Start()
	defer host.Close()

	var b [1]byte
	if _, err := io.ReadFull(host, b[:]); err != nil {
		t.Fatal(err)
	}
	if _, err := host.Write([]byte{0x00, 0x00, 0x05}); err != nil {
		t.Fatal(err)
	}
	if _, err := io.ReadFull(host, b[:]); err != nil {
		t.Fatal(err)
	}
	if _, err := host.Write([]byte{0x42}); err != nil {
		t.Fatal(err)
	}

	d := <-done
	var frameErr *protocol.FrameError
	if !errors.As(d.Err, &frameErr) {
		t.Fatalf("Serve() error = %v, want *protocol.FrameError", d.Err)
	}
	if d.Result.Size != 5 {
		t.Errorf("Size = %d, want 5", d.Result.Size)
	}
}

func TestServeWithNoise(t *testing.T) {
	image := []byte("hello")

	host, done := Start(WithNoise([]byte("boot\r\n")))
	defer host.Close()

	// The hand-written host does not skip noise, so read it away explicitly.
	skip := func() {
		buf := make([]byte, len("boot\r\n"))
		if _, err := io.ReadFull(host, buf); err != nil {
			t.Fatalf("read noise: %v", err)
		}
	}

	skip()
	var b [1]byte
	io.ReadFull(host, b[:])
	host.Write([]byte{0x00, 0x00, 0x05})
	skip()
	io.ReadFull(host, b[:])

	payload := bytes.Repeat([]byte{protocol.PaddingByte}, protocol.ChunkSize)
	copy(payload, image)
	frame, _ := protocol.EncodeChunk(payload)
	host.Write(frame)
	skip()
	io.ReadFull(host, b[:])
	host.Write([]byte{protocol.EndOfTransmission})

	d := <-done
	if d.Err != nil {
		t.Fatalf("Serve() error: %v", d.Err)
	}
	if !bytes.Equal(d.Result.Image, image) {
		t.Errorf("Image = %q, want %q", d.Result.Image, image)
	}
}
