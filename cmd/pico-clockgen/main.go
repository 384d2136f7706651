//go:build rp2040

// pico-clockgen programs a CY22150 clock synthesizer from command lines
// arriving over UART0. One goroutine owns the whole read/apply/reply loop, so
// driver access never needs a lock.
package main

import (
	"context"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"github.com/joesugar/raspberrypi-pico-cy22150/command"
	"github.com/joesugar/raspberrypi-pico-cy22150/drivers/cy22150"
	"github.com/joesugar/raspberrypi-pico-cy22150/errcode"
	"github.com/joesugar/raspberrypi-pico-cy22150/refclock"
)

const (
	// PIO state machine rate. The toggle program halves it, so the chip sees
	// a 12.5 MHz reference on its oscillator input.
	pioHz  = 25_000_000
	refPin = machine.GP15

	i2cHz = 100_000

	uartBaud = 115_200
	maxLine  = 128
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[clockgen] boot")

	if err := refclock.Start(refPin, pioHz); err != nil {
		println("[clockgen] refclock:", err.Error())
	}
	refHz := float64(pioHz) / 2

	machine.I2C0.Configure(machine.I2CConfig{
		SDA:       machine.GP8,
		SCL:       machine.GP9,
		Frequency: i2cHz,
	})
	if err := cy22150.Detect(machine.I2C0, 0); err != nil {
		println("[clockgen] cy22150 not found at address 0x69")
	} else {
		println("[clockgen] cy22150 found at address 0x69")
	}

	dev := cy22150.New(machine.I2C0, cy22150.Config{RefHz: refHz})
	if err := dev.Init(); err != nil {
		println("[clockgen] init:", err.Error())
	}

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: uartBaud,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})

	println("[clockgen] ready")

	ctx := context.Background()
	buf := make([]byte, 64)
	line := make([]byte, 0, maxLine)
	for {
		n, err := u.RecvSomeContext(ctx, buf)
		if err != nil {
			continue
		}
		for _, b := range buf[:n] {
			switch b {
			case '\n', '\r':
				if len(line) == 0 {
					continue
				}
				reply := handle(dev, string(line))
				line = line[:0]
				u.Write([]byte(reply))
				u.Write([]byte{'\n'})
			default:
				// Oversized lines lose their tail; the decoder will reject them.
				if len(line) < maxLine {
					line = append(line, b)
				}
			}
		}
	}
}

// handle applies one request line and renders the reply. An error reply
// means the chip was not touched (decode failures) or the bus gave up
// mid-commit.
func handle(dev *cy22150.Device, line string) string {
	req, err := command.Decode(line)
	if err != nil {
		return command.EncodeError(req.Seq, err)
	}

	if req.HasFreq {
		dev.SetFrequency(float64(req.FreqHz))
	}
	if req.HasEnable {
		dev.SetEnabled(req.Enable)
	}
	if err := dev.Commit(); err != nil {
		println("[clockgen] commit:", err.Error())
		return command.EncodeError(req.Seq, errcode.BusError)
	}

	return command.EncodeAck(command.Response{
		Seq:     req.Seq,
		FreqHz:  uint32(dev.Frequency() + 0.5),
		Enabled: dev.Enabled(),
	})
}
