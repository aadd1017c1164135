//go:build rp2040 || rp2350

package link

import (
	"context"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// UARTPort adapts a uartx UART to Port.
type UARTPort struct{ U *uartx.UART }

func (p UARTPort) Read(b []byte) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	n, err := p.U.RecvSomeContext(ctx, b)
	if n == 0 && ctx.Err() != nil {
		return 0, nil
	}
	return n, err
}

func (p UARTPort) Write(b []byte) (int, error) { return p.U.Write(b) }
