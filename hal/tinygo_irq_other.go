//go:build tinygo && baremetal && !rp2040

package hal

import "machine"

func enableLineIRQs(sync uint8, wrap, trigger func()) error {
	_, _, _ = sync, wrap, trigger
	return ErrNotImplemented
}

func armTrigger(at uint32) bool {
	_ = at
	return false
}

func newDMATransmitter(spi *machine.SPI, done func()) (StreamTransmitter, error) {
	_, _ = spi, done
	return nil, ErrNotImplemented
}
