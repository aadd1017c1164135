//go:build !rp2040 && !rp2350

package link

import (
	"time"

	"go.bug.st/serial"

	"habitat-go/errcode"
)

// OpenSerial opens a host serial device as a Port, 8N1.
func OpenSerial(device string, baud int) (serial.Port, error) {
	p, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, errcode.Wrap(errcode.PortClosed, "link.open "+device, err)
	}
	if err := p.SetReadTimeout(100 * time.Millisecond); err != nil {
		_ = p.Close()
		return nil, errcode.Wrap(errcode.Error, "link.open "+device, err)
	}
	return p, nil
}
