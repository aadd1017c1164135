//go:build !rp2040 && !rp2350

package canbus

import (
	"context"
	"net"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"

	"habitat-go/errcode"
	"habitat-go/logger"
)

// SocketCAN is a Port on a Linux CAN network interface. A reader goroutine
// pumps frames into a bounded buffer; frames arriving while it is full are
// dropped.
type SocketCAN struct {
	conn   net.Conn
	tx     *socketcan.Transmitter
	frames chan Frame
	log    *logger.Logger
}

// DialSocketCAN opens iface (e.g. "can0") and starts the reader.
func DialSocketCAN(ctx context.Context, iface string, depth int, log *logger.Logger) (*SocketCAN, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, errcode.Wrap(errcode.PortClosed, "canbus.dial "+iface, err)
	}
	if depth < 1 {
		depth = 32
	}
	if log == nil {
		log = logger.Nop()
	}
	p := &SocketCAN{
		conn:   conn,
		tx:     socketcan.NewTransmitter(conn),
		frames: make(chan Frame, depth),
		log:    log.Named("socketcan"),
	}
	go p.readLoop(socketcan.NewReceiver(conn))
	return p, nil
}

func (p *SocketCAN) readLoop(rx *socketcan.Receiver) {
	defer close(p.frames)
	for rx.Receive() {
		if rx.HasErrorFrame() {
			continue
		}
		cf := rx.Frame()
		if cf.IsRemote || cf.IsExtended {
			continue
		}
		f := Frame{ID: cf.ID, Len: cf.Length, Data: cf.Data}
		select {
		case p.frames <- f:
		default:
			// drop if consumer is slow
		}
	}
	if err := rx.Err(); err != nil {
		p.log.Warnw("reader stopped", "err", err)
	}
}

func (p *SocketCAN) Receive(ctx context.Context) (Frame, error) {
	select {
	case f, ok := <-p.frames:
		if !ok {
			return Frame{}, errcode.PortClosed
		}
		return f, nil
	case <-ctx.Done():
		return Frame{}, errcode.Timeout
	}
}

func (p *SocketCAN) Transmit(ctx context.Context, f Frame) error {
	err := p.tx.TransmitFrame(ctx, can.Frame{ID: f.ID, Length: f.Len, Data: can.Data(f.Data)})
	if err != nil && ctx.Err() != nil {
		return errcode.Timeout
	}
	return err
}

func (p *SocketCAN) Close() error { return p.conn.Close() }
