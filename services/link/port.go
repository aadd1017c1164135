package link

import (
	"io"
	"time"
)

// Port is a byte stream to the server. Read may return (0, nil) on an idle
// timeout; it should not block much longer than ~100ms so the reader can
// observe shutdown.
type Port interface {
	io.Reader
	io.Writer
}

// DiscardPort is used when no serial device is configured. Nothing is ever
// received, so the controller runs in fail-safe mode.
type DiscardPort struct{}

func (DiscardPort) Read([]byte) (int, error) {
	time.Sleep(100 * time.Millisecond)
	return 0, nil
}

func (DiscardPort) Write(p []byte) (int, error) { return len(p), nil }
