// Package firmware reads raw binary firmware images for transfer.
//
// # Image Format
//
// An image is an opaque byte stream (a .bin produced by objcopy). Its size is
// sent to the device as a 3-byte big-endian value, so images larger than
// protocol.MaxImageSize (16,777,215 bytes) are rejected when opened.
//
// # Chunking
//
// The image is consumed in fixed-capacity chunks of protocol.ChunkSize bytes:
//
//	chunk 0: bytes    0-1023
//	chunk 1: bytes 1024-2047
//	chunk 2: bytes 2048-2499 + 572 bytes of 0xFF padding
//
// Every chunk carries exactly protocol.ChunkSize payload bytes. Chunk.Len
// reports how many of them came from the image. An image whose size is an
// exact multiple of the chunk size ends with its last full chunk; no
// all-padding chunk follows it. An empty image yields a single all-padding chunk.
//
// # Usage
//
//	img, err := firmware.Open("app.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer img.Close()
//
//	chunks := img.Chunks()
//	for {
//	    chunk, err := chunks.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    // ... send chunk.Payload
//	}
package firmware
