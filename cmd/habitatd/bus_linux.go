//go:build !rp2040 && !rp2350

package main

import (
	"context"
	"sync"

	"habitat-go/logger"
	"habitat-go/services/canbus"
)

// socketBus tracks the live SocketCAN port across redials.
type socketBus struct {
	iface string
	depth int
	log   *logger.Logger

	mu  sync.Mutex
	cur *canbus.SocketCAN
}

func openBus(ctx context.Context, iface string, depth int, log *logger.Logger) (*socketBus, error) {
	b := &socketBus{iface: iface, depth: depth, log: log}
	if _, err := b.Redial(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *socketBus) Port() canbus.Port {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cur
}

// Redial opens a fresh socket. The bus task closes the port it replaces.
func (b *socketBus) Redial(ctx context.Context) (canbus.Port, error) {
	p, err := canbus.DialSocketCAN(ctx, b.iface, b.depth, b.log)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.cur = p
	b.mu.Unlock()
	b.log.Infow("socketcan open", "iface", b.iface)
	return p, nil
}

func (b *socketBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cur != nil {
		_ = b.cur.Close()
	}
}
