// Package updater sends a firmware image to a device bootloader over a serial connection.
//
// # Overview
//
// A Session runs the complete update sequence:
//   - Opening the connection and the image file
//   - Waiting for the device to request the image with 'S'
//   - Sending the image size as 3 big-endian bytes
//   - Sending 1024-byte chunks, each framed with SOH and a CRC-16, one per ACK
//   - Sending EOT after the final ACK
//
// The device paces the transfer: nothing is written until the byte the
// protocol expects has been read.
//
// # Basic Usage
//
//	open := func(name string) (io.ReadWriteCloser, error) {
//	    return serialport.Open(serialport.DefaultConfig(name))
//	}
//
//	sess := updater.New(open)
//	err := sess.Run(context.Background(), "/dev/ttyACM0", "app.bin")
//	fmt.Println(updater.Classify(err))
//
// # Progress Tracking
//
//	sess := updater.New(open,
//	    updater.WithProgressCallback(func(p updater.Progress) {
//	        fmt.Printf("[%s] %d/%d bytes\n", p.Phase, p.BytesSent, p.TotalBytes)
//	    }),
//	)
//
// # Timeouts
//
// By default every wait for the device blocks until the byte arrives. The
// context is checked between reads, so a Read blocked on a silent port is
// not interrupted by cancellation. WithReadTimeout turns a silent device
// into a *StallError; the port must then be opened with a short read
// timeout so that Read returns periodically, which also lets cancellation
// take effect.
//
// # Error Handling
//
// Run returns structured errors:
//   - FileNotFoundError: the image could not be opened (nothing was written)
//   - firmware.ImageTooLargeError: the size does not fit in 3 bytes
//   - ConnectionError: opening, reading or writing the port failed
//   - StallError: the device went quiet longer than the read timeout
//
// Classify maps any of them, and ports.ErrNoDeviceFound, to the Outcome
// reported to the operator.
package updater
