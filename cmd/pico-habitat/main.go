//go:build rp2040 || rp2350

// Command pico-habitat is the controller firmware: MCP2515 on SPI0, the
// supervisory link on UART0, a rotary encoder, three status LEDs and a buzzer.
package main

import (
	"context"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/mcp2515"

	"habitat-go/logger"
	"habitat-go/services/canbus"
	"habitat-go/services/config"
	"habitat-go/services/controller"
	"habitat-go/services/input"
	"habitat-go/services/link"
	"habitat-go/services/settings"
	"habitat-go/services/supervisor"
	"habitat-go/x/timex"
)

const (
	pinCANSck  = machine.GPIO18
	pinCANSdo  = machine.GPIO19
	pinCANSdi  = machine.GPIO16
	pinCANCs   = machine.GPIO17
	pinLinkTx  = machine.GPIO0
	pinLinkRx  = machine.GPIO1
	pinEncA    = machine.GPIO10
	pinEncB    = machine.GPIO11
	pinEncSw   = machine.GPIO12
	pinLEDLink = machine.GPIO13
	pinLEDOK   = machine.GPIO14
	pinLEDErr  = machine.GPIO15
	pinBuzzer  = machine.GPIO20

	linkBaud = 115200
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)

	cfg, err := config.ForDevice("pico")
	if err != nil {
		println("config:", err.Error())
		cfg = config.Defaults()
	}
	log := logger.Get(cfg.LogLevel)
	log.Infow("boot", "device", cfg.Device)

	ctx := context.Background()
	clock := timex.NewUptime()

	bus, err := openCAN()
	if err != nil {
		log.Errorw("mcp2515 init failed", "err", err)
		halt()
	}

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{BaudRate: linkBaud, TX: pinLinkTx, RX: pinLinkRx})

	for _, p := range []machine.Pin{pinLEDLink, pinLEDOK, pinLEDErr, pinBuzzer} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
	}
	for _, p := range []machine.Pin{pinEncA, pinEncB, pinEncSw} {
		p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}

	events := input.NewChanSource(16)
	poller := &input.Poller{A: pinEncA, B: pinEncB, SW: pinEncSw, Out: events, Now: clock.NowMs}
	go poller.Run(ctx)

	ctl, err := controller.New(ctx, controller.Options{
		Config:     cfg,
		BusPort:    bus,
		LinkPort:   link.UARTPort{U: u},
		Settings:   &settings.MemoryStore{},
		Input:      events,
		Buzzer:     pinBuzzer,
		Indicators: supervisor.PinIndicators{Link: pinLEDLink, OK: pinLEDOK, Fault: pinLEDErr},
		Clock:      clock,
		Log:        log,
	})
	if err != nil {
		log.Errorw("controller init failed", "err", err)
		halt()
	}
	_ = ctl.Run(ctx)
}

func openCAN() (*canbus.MCP2515, error) {
	spi := machine.SPI0
	if err := spi.Configure(machine.SPIConfig{
		Frequency: 4_000_000,
		SCK:       pinCANSck,
		SDO:       pinCANSdo,
		SDI:       pinCANSdi,
	}); err != nil {
		return nil, err
	}
	dev := mcp2515.New(spi, pinCANCs)
	dev.Configure()
	if err := dev.Begin(mcp2515.CAN500kBps, mcp2515.Clock8MHz); err != nil {
		return nil, err
	}
	return canbus.NewMCP2515(dev), nil
}

func halt() {
	for {
		time.Sleep(time.Second)
	}
}
