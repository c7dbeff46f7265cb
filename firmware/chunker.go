package firmware

import (
	"errors"
	"fmt"
	"io"

	"github.com/moffa90/go-dbfu/protocol"
)

// Chunk is one fixed-capacity block of the image.
type Chunk struct {
	// Index is the 0-based position of the chunk in the image
	Index int

	// Payload always holds protocol.ChunkSize bytes, padded with protocol.PaddingByte
	Payload []byte

	// Len is the number of payload bytes that came from the image
	Len int

	// Last is set on the final chunk of the image
	Last bool
}

// Padding returns the number of padding bytes at the end of the payload.
func (c *Chunk) Padding() int {
	return len(c.Payload) - c.Len
}

// Chunker splits an image stream into padded chunks.
type Chunker struct {
	r     io.Reader
	size  int64
	read  int64
	index int
	done  bool
}

// NewChunker reads chunks from r. size is the expected image size; reading
// stops once size bytes have been consumed or r is exhausted, whichever
// comes first.
//
// Example:
//
//	chunks := firmware.NewChunker(bytes.NewReader(data), int64(len(data)))
func NewChunker(r io.Reader, size int64) *Chunker {
	return &Chunker{r: io.LimitReader(r, size), size: size}
}

// Next returns the next chunk, or io.EOF after the chunk marked Last.
func (c *Chunker) Next() (*Chunk, error) {
	if c.done {
		return nil, io.EOF
	}

	payload := make([]byte, protocol.ChunkSize)
	n, err := io.ReadFull(c.r, payload)

	last := false
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		last = true
	case err != nil:
		return nil, fmt.Errorf("read chunk %d: %w", c.index, err)
	}

	c.read += int64(n)
	if c.read >= c.size {
		last = true
	}

	// Pad short final chunk with erased-flash value
	for i := n; i < len(payload); i++ {
		payload[i] = protocol.PaddingByte
	}

	chunk := &Chunk{
		Index:   c.index,
		Payload: payload,
		Len:     n,
		Last:    last,
	}

	c.index++
	c.done = last

	return chunk, nil
}

// BytesRead returns the number of image bytes consumed so far.
func (c *Chunker) BytesRead() int64 {
	return c.read
}
