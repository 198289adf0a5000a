//go:build tinygo && baremetal

package hal

import (
	"machine"
)

// Pin assignment. The sync and pixel outputs are mixed into one composite
// signal with a resistor network: sync through 1k, pixels through 470R,
// into the 75R load.
const (
	syncPin   = machine.GP16
	sckPin    = machine.GP18
	pixelPin  = machine.GP19
	buttonPin = machine.GP15
)

type tinyGoHAL struct {
	logger  *uartLogger
	led     *pinLED
	video   *tinyGoVideo
	buttons *pinButtons
}

// New returns a Raspberry Pi Pico (RP2040) HAL implementation.
//
// UART: UART0 on GP0 (TX) / GP1 (RX), 115200 8N1.
func New() HAL {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	logger := &uartLogger{uart: uart}

	ledPin := machine.LED
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	video, err := newTinyGoVideo(syncPin, machine.SPI0, sckPin, pixelPin)
	if err != nil {
		logger.WriteLineString("hal: video: " + err.Error())
		video = nil
	}

	return &tinyGoHAL{
		logger:  logger,
		led:     &pinLED{pin: ledPin},
		video:   video,
		buttons: newPinButtons(buttonPin),
	}
}

func (h *tinyGoHAL) Logger() Logger   { return h.logger }
func (h *tinyGoHAL) LED() LED         { return h.led }
func (h *tinyGoHAL) Buttons() Buttons { return h.buttons }

// Video returns nil when the video hardware failed to initialise.
func (h *tinyGoHAL) Video() Video {
	if h.video == nil {
		return nil
	}
	return h.video
}
