package firmware

import (
	"fmt"
	"os"

	"github.com/moffa90/go-dbfu/protocol"
)

// Image is an opened firmware image file.
type Image struct {
	// Path is the file the image was opened from
	Path string

	// Size is the image size in bytes, fixed when the image is opened
	Size int64

	file *os.File
}

// ImageTooLargeError indicates that an image does not fit in the 3-byte size field.
type ImageTooLargeError struct {
	Path string
	Size int64
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("image %s is %d bytes: maximum is %d", e.Path, e.Size, protocol.MaxImageSize)
}

// Open opens the image at path and records its size.
// The returned error wraps the underlying os error when the file cannot be opened.
//
// Example:
//
//	img, err := firmware.Open("app.bin")
//	if errors.Is(err, fs.ErrNotExist) {
//	    // no such file
//	}
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat image: %w", err)
	}

	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open image: %s is a directory", path)
	}

	if info.Size() > protocol.MaxImageSize {
		_ = f.Close()
		return nil, &ImageTooLargeError{Path: path, Size: info.Size()}
	}

	return &Image{
		Path: path,
		Size: info.Size(),
		file: f,
	}, nil
}

// Chunks returns a Chunker reading the image from its current position.
func (img *Image) Chunks() *Chunker {
	return NewChunker(img.file, img.Size)
}

// TotalChunks returns the number of frames needed to transfer the image.
func (img *Image) TotalChunks() int {
	return ChunkCount(img.Size)
}

// Close closes the underlying file.
func (img *Image) Close() error {
	return img.file.Close()
}

// ChunkCount returns the number of chunks an image of the given size is split into.
// An empty image still occupies one (all-padding) chunk.
func ChunkCount(size int64) int {
	if size <= 0 {
		return 1
	}
	return int((size + protocol.ChunkSize - 1) / protocol.ChunkSize)
}
