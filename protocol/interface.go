// Package protocol sequences register access to a Wii extension controller.
//
// The controller exposes a register file behind I2C address 0x52. Reads are
// cursor based: a one byte write sets the internal read pointer and the next
// read returns consecutive registers from there. The device aborts
// transactions that follow each other too closely, so every transaction is
// followed by a settle period (see Delayer).
//
// Register map used here (http://wiibrew.org/wiki/Wiimote/Extension_Controllers):
//
//	0x00..0x07  sample report (6 bytes standard, 8 bytes high resolution)
//	0xF0, 0xFB  encryption disable handshake (0x55, then 0x00)
//	0xFA..0xFF  identity block
//	0xFE        report format (0x03 = high resolution)
package protocol

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/mklimuk/wiiext"
)

// Address is the 7-bit bus address shared by all extension controllers.
const Address = 0x52

// InterMessageDelay is the minimum pause between two bus transactions.
// 200µs is reliable on every controller tested so far.
const InterMessageDelay = 200 * time.Microsecond

const (
	regSample      byte = 0x00
	regEncryption1 byte = 0xF0
	regEncryption2 byte = 0xFB
	regIdentity    byte = 0xFA
	regResolution  byte = 0xFE
)

const (
	resolutionHigh     byte = 0x03
	resolutionStandard byte = 0x01
)

// Report sizes in bytes.
const (
	ReportSize        = 6
	HighResReportSize = 8
	IdentitySize      = 6
)

type Options struct {
	Address     byte
	SettleDelay time.Duration
	Delayer     Delayer
	Logger      *slog.Logger
}

type Option func(*Options)

func WithAddress(address byte) Option {
	return func(o *Options) {
		o.Address = address
	}
}

// WithSettleDelay overrides InterMessageDelay. Handshake and resolution
// changes use twice this value.
func WithSettleDelay(delay time.Duration) Option {
	return func(o *Options) {
		o.SettleDelay = delay
	}
}

// WithDelayer selects the scheduling model: SleepDelay (default) blocks,
// ScheduledDelay suspends in the next transaction instead.
func WithDelayer(d Delayer) Option {
	return func(o *Options) {
		o.Delayer = d
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// Interface owns the bus and the delay provider for one controller.
// It is not safe for concurrent use; the driver façades serialise access.
type Interface struct {
	bus    wiiext.I2CBus
	delay  Delayer
	addr   byte
	settle time.Duration
	log    *slog.Logger
}

func New(bus wiiext.I2CBus, opts ...Option) *Interface {
	config := Options{
		Address:     Address,
		SettleDelay: InterMessageDelay,
		Delayer:     SleepDelay{},
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Interface{
		bus:    bus,
		delay:  config.Delayer,
		addr:   config.Address,
		settle: config.SettleDelay,
		log:    config.Logger,
	}
}

// Destroy hands the bus and delay provider back to the caller.
// The Interface must not be used afterwards.
func (i *Interface) Destroy() (wiiext.I2CBus, Delayer) {
	bus, delay := i.bus, i.delay
	i.bus, i.delay = nil, nil
	return bus, delay
}

func (i *Interface) Logger() *slog.Logger {
	return i.log
}

// SetCursor moves the controller read pointer to reg.
func (i *Interface) SetCursor(ctx context.Context, reg byte) error {
	return i.write(ctx, "set cursor", []byte{reg}, i.settle)
}

// WriteRegister sets a single register.
func (i *Interface) WriteRegister(ctx context.Context, reg, value byte) error {
	return i.write(ctx, "write register", []byte{reg, value}, i.settle)
}

// ReadBlock reads size bytes from the current cursor position.
func (i *Interface) ReadBlock(ctx context.Context, size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if err := i.read(ctx, "read block", buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Handshake disables report encryption. The controller is less reliable while
// processing these writes, so the doubled settle period is used around each one.
// The cursor is reset first which also recovers a controller left mid-read.
func (i *Interface) Handshake(ctx context.Context) error {
	long := 2 * i.settle
	if err := i.delay.Settle(ctx, long); err != nil {
		return err
	}
	if err := i.write(ctx, "reset cursor", []byte{regSample}, long); err != nil {
		return err
	}
	if err := i.write(ctx, "disable encryption", []byte{regEncryption1, 0x55}, long); err != nil {
		return err
	}
	return i.write(ctx, "disable encryption", []byte{regEncryption2, 0x00}, long)
}

// SetResolution switches between 6 and 8 byte reports. Writing the standard
// value back does not restore 6 byte reports on the controllers tested so far.
func (i *Interface) SetResolution(ctx context.Context, hires bool) error {
	long := 2 * i.settle
	value := resolutionStandard
	if hires {
		value = resolutionHigh
	}
	if err := i.delay.Settle(ctx, long); err != nil {
		return err
	}
	return i.write(ctx, "set resolution", []byte{regResolution, value}, long)
}

// Sample resets the cursor and reads one report of the given size.
func (i *Interface) Sample(ctx context.Context, size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if err := i.SetCursor(ctx, regSample); err != nil {
		return nil, err
	}
	return i.ReadBlock(ctx, size)
}

// ReadID returns the raw identity block.
func (i *Interface) ReadID(ctx context.Context) ([]byte, error) {
	if err := i.SetCursor(ctx, regIdentity); err != nil {
		return nil, err
	}
	return i.ReadBlock(ctx, IdentitySize)
}

func (i *Interface) write(ctx context.Context, op string, buf []byte, settle time.Duration) error {
	if err := i.delay.Wait(ctx); err != nil {
		return fmt.Errorf("protocol: %s interrupted: %w", op, err)
	}
	i.log.Debug("bus write", "op", op, "addr", fmt.Sprintf("%#x", i.addr), "data", hex.EncodeToString(buf))
	err := i.bus.WriteToAddr(ctx, i.addr, buf)
	if err != nil {
		return &wiiext.TransportError{Op: op, Err: err}
	}
	return i.delay.Settle(ctx, settle)
}

func (i *Interface) read(ctx context.Context, op string, buf []byte) error {
	if err := i.delay.Wait(ctx); err != nil {
		return fmt.Errorf("protocol: %s interrupted: %w", op, err)
	}
	err := i.bus.ReadFromAddr(ctx, i.addr, buf)
	if err != nil {
		return &wiiext.TransportError{Op: op, Err: err}
	}
	i.log.Debug("bus read", "op", op, "addr", fmt.Sprintf("%#x", i.addr), "data", hex.EncodeToString(buf))
	return i.delay.Settle(ctx, i.settle)
}

func checkSize(size int) error {
	if size != ReportSize && size != HighResReportSize {
		return fmt.Errorf("protocol: unsupported block size %d: %w", size, wiiext.ErrInvalidInputData)
	}
	return nil
}
