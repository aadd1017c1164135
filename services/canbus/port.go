package canbus

import (
	"context"

	"habitat-go/errcode"
)

// Port is a CAN controller. Receive waits for one frame until ctx is done
// and then returns errcode.Timeout. Transmit must give up when ctx is done.
type Port interface {
	Receive(ctx context.Context) (Frame, error)
	Transmit(ctx context.Context, f Frame) error
}

// MemPort is an in-memory bus segment. The controller side uses it as a
// Port; the module side injects telemetry and observes commands.
type MemPort struct {
	rx chan Frame // module -> controller
	tx chan Frame // controller -> module
}

func NewMemPort(depth int) *MemPort {
	if depth < 1 {
		depth = 1
	}
	return &MemPort{rx: make(chan Frame, depth), tx: make(chan Frame, depth)}
}

func (m *MemPort) Receive(ctx context.Context) (Frame, error) {
	select {
	case f := <-m.rx:
		return f, nil
	default:
	}
	select {
	case f := <-m.rx:
		return f, nil
	case <-ctx.Done():
		return Frame{}, errcode.Timeout
	}
}

func (m *MemPort) Transmit(ctx context.Context, f Frame) error {
	select {
	case m.tx <- f:
		return nil
	case <-ctx.Done():
		return errcode.Timeout
	}
}

// Inject queues a frame as if a module had sent it. It never blocks.
func (m *MemPort) Inject(f Frame) bool {
	select {
	case m.rx <- f:
		return true
	default:
		return false
	}
}

// Sent yields frames transmitted by the controller.
func (m *MemPort) Sent() <-chan Frame { return m.tx }
