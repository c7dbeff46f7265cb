package updater

import "time"

// Config holds the session configuration.
type Config struct {
	// ProgressCallback is called during the transfer to report progress (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// ReadTimeout bounds every wait for a byte from the device.
	// Zero waits forever, which is what the device firmware expects.
	ReadTimeout time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		ReadTimeout: 0,
	}
}

// Option is a functional option for configuring the Session.
type Option func(*Config)

// WithProgressCallback sets a callback function to track transfer progress.
//
// Example:
//
//	sess := updater.New(open,
//	    updater.WithProgressCallback(func(p updater.Progress) {
//	        fmt.Printf("%.1f%% complete\n", p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the session operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithReadTimeout makes waits for the device fail with *StallError after timeout.
// The connection must return from Read periodically (a serial port opened
// with a short read timeout) for the deadline to be noticed.
//
// Example:
//
//	sess := updater.New(open, updater.WithReadTimeout(10*time.Second))
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout >= 0 {
			c.ReadTimeout = timeout
		}
	}
}
