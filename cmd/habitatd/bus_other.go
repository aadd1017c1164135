//go:build !linux && !rp2040 && !rp2350

package main

import (
	"context"

	"habitat-go/errcode"
	"habitat-go/logger"
	"habitat-go/services/canbus"
)

type socketBus struct{}

func openBus(context.Context, string, int, *logger.Logger) (*socketBus, error) {
	return nil, &errcode.E{C: errcode.Unsupported, Op: "habitatd", Msg: "socketcan needs linux; use --simulate"}
}

func (*socketBus) Port() canbus.Port                          { return nil }
func (*socketBus) Redial(context.Context) (canbus.Port, error) { return nil, errcode.Unsupported }
func (*socketBus) Close()                                      {}
