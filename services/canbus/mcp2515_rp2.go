//go:build rp2040 || rp2350

package canbus

import (
	"context"
	"time"

	"tinygo.org/x/drivers/mcp2515"

	"habitat-go/errcode"
)

// MCP2515 is a Port on an SPI-attached MCP2515 controller. The device must
// already be configured and started by the caller.
type MCP2515 struct {
	dev  *mcp2515.Device
	poll time.Duration
}

func NewMCP2515(dev *mcp2515.Device) *MCP2515 {
	return &MCP2515{dev: dev, poll: 500 * time.Microsecond}
}

func (p *MCP2515) Receive(ctx context.Context) (Frame, error) {
	for {
		if p.dev.Received() {
			msg, err := p.dev.Rx()
			if err != nil {
				return Frame{}, err
			}
			f := Frame{ID: msg.ID, Len: msg.Dlc}
			copy(f.Data[:], msg.Data)
			return f, nil
		}
		select {
		case <-ctx.Done():
			return Frame{}, errcode.Timeout
		case <-time.After(p.poll):
		}
	}
}

func (p *MCP2515) Transmit(ctx context.Context, f Frame) error {
	if ctx.Err() != nil {
		return errcode.Timeout
	}
	return p.dev.Tx(f.ID, f.Len, f.Payload())
}
