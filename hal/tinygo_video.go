//go:build tinygo && baremetal

package hal

import (
	"errors"
	"machine"
)

// tinyGoVideo drives the sync output from one PWM slice and shifts pixels out
// of an SPI controller.
//
// The PWM compare and top registers are double-buffered and latch at wrap,
// which gives the preloaded timer semantics the video engine expects. A PWM
// slice only raises a wrap interrupt, so the data trigger comes from a second
// slice armed by the line boundary handler to wrap at the trigger position.
// Rows are fed to the SPI transmit FIFO by DMA and the transfer-complete
// handler runs from the DMA interrupt.
type tinyGoVideo struct {
	timer pwmTimer
	spi   *machine.SPI
	tx    StreamTransmitter
	seq   lineSequencer
}

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	SetTop(top uint32)
	Top() uint32
	Set(channel uint8, value uint32)
	SetInverting(channel uint8, inverting bool)
	Enable(enable bool)
}

func pwmForPin(pin machine.Pin) (pwmDevice, uint8) {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil, 0
	}
	switch slice {
	case 0:
		return machine.PWM0, slice
	case 1:
		return machine.PWM1, slice
	case 2:
		return machine.PWM2, slice
	case 3:
		return machine.PWM3, slice
	case 4:
		return machine.PWM4, slice
	case 5:
		return machine.PWM5, slice
	case 6:
		return machine.PWM6, slice
	case 7:
		return machine.PWM7, slice
	default:
		return nil, 0
	}
}

func newTinyGoVideo(sync machine.Pin, spi *machine.SPI, sck, sdo machine.Pin) (*tinyGoVideo, error) {
	v := &tinyGoVideo{}
	v.seq.arm = armTrigger

	pwm, slice := pwmForPin(sync)
	if pwm == nil {
		return v, errors.New("no PWM slice for sync pin")
	}
	// A 64us period keeps the counter at the full system clock.
	if err := pwm.Configure(machine.PWMConfig{Period: 64_000}); err != nil {
		return v, err
	}
	ch, err := pwm.Channel(sync)
	if err != nil {
		return v, err
	}
	// Sync is active low: the output is low while the counter is below the
	// compare value.
	pwm.SetInverting(ch, true)
	v.timer = pwmTimer{pwm: pwm, slice: slice, ch: ch, hz: machine.CPUFrequency(), video: v}

	if err := spi.Configure(machine.SPIConfig{
		Frequency: 7_000_000,
		SCK:       sck,
		SDO:       sdo,
		LSBFirst:  false,
		Mode:      2,
	}); err != nil {
		return v, err
	}
	v.spi = spi
	tx, err := newDMATransmitter(spi, v.seq.transferDone)
	if err != nil {
		return v, err
	}
	v.tx = tx
	return v, nil
}

func (v *tinyGoVideo) Clocks() (timerHz, pixelHz uint32) {
	if v.spi == nil {
		return v.timer.hz, 0
	}
	return v.timer.hz, v.spi.GetBaudRate()
}

func (v *tinyGoVideo) Timer() PulseTimer              { return &v.timer }
func (v *tinyGoVideo) Transmitter() StreamTransmitter { return v.tx }
func (v *tinyGoVideo) Attach(h VideoHandlers)         { v.seq.h = h }

type pwmTimer struct {
	pwm   pwmDevice
	slice uint8
	ch    uint8
	hz    uint32
	video *tinyGoVideo
}

func (t *pwmTimer) SetCompare(ticks uint32) {
	if t.pwm != nil {
		t.pwm.Set(t.ch, ticks)
	}
}

func (t *pwmTimer) SetPeriod(ticks uint32) {
	if t.pwm != nil && ticks > 0 {
		t.pwm.SetTop(ticks - 1)
	}
}

func (t *pwmTimer) SetTrigger(ticks uint32) { t.video.seq.trigger = ticks }

func (t *pwmTimer) EnableInterrupts(ch TimerChannel) {
	if t.pwm == nil || ch&ChannelSync == 0 {
		return
	}
	if err := enableLineIRQs(t.slice, t.video.seq.wrap, t.video.seq.dataTrigger); err != nil {
		return
	}
	t.pwm.Enable(true)
}
