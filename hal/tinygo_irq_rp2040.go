//go:build tinygo && baremetal && rp2040

package hal

import (
	"device/rp"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

// pwmSliceRegs overlays one PWM slice. Slices are laid out back to back from
// CH0_CSR.
type pwmSliceRegs struct {
	CSR volatile.Register32
	DIV volatile.Register32
	CTR volatile.Register32
	CC  volatile.Register32
	TOP volatile.Register32
}

func pwmSlice(n uint8) *pwmSliceRegs {
	base := unsafe.Pointer(&rp.PWM.CH0_CSR)
	return (*pwmSliceRegs)(unsafe.Add(base, uintptr(n)*unsafe.Sizeof(pwmSliceRegs{})))
}

var (
	wrapHandler    func()
	triggerHandler func()

	syncRegs, trigRegs *pwmSliceRegs
	syncMask, trigMask uint32
)

// enableLineIRQs routes the wrap interrupt of the sync slice to wrap and
// sets up a second slice as the data trigger timer, whose wrap calls
// trigger. Both run at the highest priority.
func enableLineIRQs(sync uint8, wrap, trigger func()) error {
	trig := uint8(7)
	if sync == trig {
		trig = 6
	}
	syncRegs, trigRegs = pwmSlice(sync), pwmSlice(trig)
	syncMask, trigMask = 1<<sync, 1<<trig
	wrapHandler, triggerHandler = wrap, trigger

	// The trigger slice counts at the sync rate and only runs while armed.
	trigRegs.CSR.Set(0)
	trigRegs.DIV.Set(syncRegs.DIV.Get())

	rp.PWM.INTR.Set(syncMask | trigMask)
	rp.PWM.INTE.SetBits(syncMask | trigMask)

	irq := interrupt.New(rp.IRQ_PWM_IRQ_WRAP, func(interrupt.Interrupt) {
		pending := rp.PWM.INTS.Get()
		rp.PWM.INTR.Set(pending)
		if pending&syncMask != 0 && wrapHandler != nil {
			wrapHandler()
		}
		if pending&trigMask != 0 {
			trigRegs.CSR.ClearBits(rp.PWM_CH0_CSR_EN)
			if triggerHandler != nil {
				triggerHandler()
			}
		}
	})
	irq.SetPriority(0)
	irq.Enable()
	return nil
}

// armTrigger starts the trigger slice so that it wraps when the sync counter
// reaches at. It reports false if the sync counter is already there.
func armTrigger(at uint32) bool {
	now := syncRegs.CTR.Get() & 0xffff
	if now >= at {
		return false
	}
	// Writes to a stopped slice take effect at once. The slice wraps one
	// tick after reaching TOP.
	trigRegs.CSR.ClearBits(rp.PWM_CH0_CSR_EN)
	trigRegs.TOP.Set(at - 1)
	trigRegs.CTR.Set(now)
	rp.PWM.INTR.Set(trigMask)
	trigRegs.CSR.SetBits(rp.PWM_CH0_CSR_EN)
	return true
}

// DREQ numbers of the SPI transmit FIFOs.
const (
	dreqSPI0Tx = 16
	dreqSPI1Tx = 18
)

const dmaChannel = 0

var dmaDone func()

// dmaTransmitter feeds the SPI transmit FIFO from DMA channel 0 and reports
// completion from the DMA interrupt once the channel has queued the last
// byte.
type dmaTransmitter struct {
	bus  *rp.SPI0_Type
	treq uint32
}

func newDMATransmitter(spi *machine.SPI, done func()) (StreamTransmitter, error) {
	treq := uint32(dreqSPI0Tx)
	if spi.Bus != rp.SPI0 {
		treq = dreqSPI1Tx
	}
	spi.Bus.SSPDMACR.SetBits(rp.SPI0_SSPDMACR_TXDMAE)

	dmaDone = done
	rp.DMA.INTS0.Set(1 << dmaChannel)
	rp.DMA.INTE0.SetBits(1 << dmaChannel)
	irq := interrupt.New(rp.IRQ_DMA_IRQ_0, func(interrupt.Interrupt) {
		rp.DMA.INTS0.Set(1 << dmaChannel)
		if dmaDone != nil {
			dmaDone()
		}
	})
	// Below the line interrupts so sync edges stay on time.
	irq.SetPriority(0x40)
	irq.Enable()
	return &dmaTransmitter{bus: spi.Bus, treq: treq}, nil
}

func (x *dmaTransmitter) Start(buf []byte) {
	if len(buf) == 0 {
		return
	}
	rp.DMA.CH0_READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(&buf[0]))))
	rp.DMA.CH0_WRITE_ADDR.Set(uint32(uintptr(unsafe.Pointer(&x.bus.SSPDR))))
	rp.DMA.CH0_TRANS_COUNT.Set(uint32(len(buf)))
	// Byte transfers, incrementing read address, paced by the SPI DREQ and
	// chained to itself, which disables chaining.
	rp.DMA.CH0_CTRL_TRIG.Set(rp.DMA_CH0_CTRL_TRIG_EN |
		rp.DMA_CH0_CTRL_TRIG_INCR_READ |
		x.treq<<rp.DMA_CH0_CTRL_TRIG_TREQ_SEL_Pos |
		dmaChannel<<rp.DMA_CH0_CTRL_TRIG_CHAIN_TO_Pos)
}

func (x *dmaTransmitter) Stop() {
	rp.DMA.CHAN_ABORT.Set(1 << dmaChannel)
}

// WriteIdle queues b behind the row. It is dropped if the FIFO is full.
func (x *dmaTransmitter) WriteIdle(b byte) {
	if x.bus.SSPSR.HasBits(rp.SPI0_SSPSR_TNF) {
		x.bus.SSPDR.Set(uint32(b))
	}
}
