// Package uart provides a memory-mapped UART with receive and transmit
// queues, and a console that connects it to a terminal.
package uart

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Default placement of the UART in the address space.
const (
	DefaultBase uint32 = 0x07000000
	WindowSize  uint32 = 0x100
)

// Register offsets relative to the UART base.
const (
	OffsetRx    uint32 = 0
	OffsetTx    uint32 = 1
	OffsetFlags uint32 = 2
)

// FlagRxAvailable is set in FLAGS while the receive queue holds data.
const FlagRxAvailable uint8 = 0x01

type register uint8

const (
	regRxFIFO register = iota + 1
	regTxFIFO
	regFlags
)

// registers maps window offsets to registers. Offsets missing from the
// table are unmapped: they read 0 and ignore writes.
var registers = map[uint32]register{
	OffsetRx:    regRxFIFO,
	OffsetTx:    regTxFIFO,
	OffsetFlags: regFlags,
}

// UART is a byte-wide serial port. All methods are safe for concurrent use;
// the CPU side runs on the emulator goroutine and the external side on the
// console goroutines.
type UART struct {
	mu    sync.Mutex
	rx    []byte
	tx    []byte
	flags uint8

	// notify has capacity one; a pending signal means TX may hold data.
	notify chan struct{}

	logger *logrus.Entry
}

// Option configures a UART.
type Option func(*UART)

// WithLogger sets the logger used for underflow warnings.
func WithLogger(l *logrus.Logger) Option {
	return func(u *UART) {
		u.logger = logrus.NewEntry(l).WithField("component", "uart")
	}
}

// New creates a UART with empty queues.
func New(opts ...Option) *UART {
	u := &UART{
		notify: make(chan struct{}, 1),
		logger: logrus.NewEntry(logrus.StandardLogger()).WithField("component", "uart"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Read8 is the bus read hook.
func (u *UART) Read8(offset uint32) uint8 {
	switch registers[offset] {
	case regRxFIFO:
		return u.ReadRxFIFO()
	case regFlags:
		return u.Flags()
	default:
		return 0
	}
}

// Write8 is the bus write hook.
func (u *UART) Write8(offset uint32, value uint8) {
	if registers[offset] == regTxFIFO {
		u.WriteTxFIFO(value)
	}
}

// ReadRxFIFO pops the oldest received byte. An empty queue logs a warning
// and reads as 0.
func (u *UART) ReadRxFIFO() uint8 {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.rx) == 0 {
		u.logger.Warn("read from empty rx fifo")
		return 0
	}

	v := u.rx[0]
	u.rx = u.rx[1:]
	if len(u.rx) == 0 {
		u.rx = nil
		u.flags &^= FlagRxAvailable
	}
	return v
}

// WriteTxFIFO queues a byte for the console.
func (u *UART) WriteTxFIFO(value uint8) {
	u.mu.Lock()
	u.tx = append(u.tx, value)
	u.mu.Unlock()

	select {
	case u.notify <- struct{}{}:
	default:
	}
}

// Flags returns the status register.
func (u *UART) Flags() uint8 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.flags
}

// PushRx queues received bytes in order.
func (u *UART) PushRx(data ...byte) {
	if len(data) == 0 {
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.rx = append(u.rx, data...)
	u.flags |= FlagRxAvailable
}

// DrainTx removes and returns every queued transmit byte.
func (u *UART) DrainTx() []byte {
	u.mu.Lock()
	defer u.mu.Unlock()

	data := u.tx
	u.tx = nil
	return data
}

// TxLen returns the number of queued transmit bytes.
func (u *UART) TxLen() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.tx)
}

// RxLen returns the number of queued receive bytes.
func (u *UART) RxLen() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.rx)
}

// Notify returns a channel that receives a value after transmit bytes are
// queued. Signals coalesce, so a receiver should drain everything.
func (u *UART) Notify() <-chan struct{} {
	return u.notify
}
