// Package mock emulates an extension controller at register level so drivers
// and tools can run without hardware.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mklimuk/wiiext"
)

// ErrNoDevice is returned for transactions addressed to anything but the
// emulated controller, like a NACK on a real bus.
var ErrNoDevice = fmt.Errorf("mock: no device at address")

// ErrTooFast is returned when a transaction starts before the configured
// minimum gap since the previous one elapsed.
var ErrTooFast = fmt.Errorf("mock: transaction started before settle period")

// ReportFunc produces the next sample. hires tells which layout the host
// selected; the returned slice must be 6 or 8 bytes long.
type ReportFunc func(ctx context.Context, hires bool) ([]byte, error)

// Transaction is a record of a single bus operation.
type Transaction struct {
	Write bool
	Data  []byte
}

type Options struct {
	Address  byte
	MinGap   time.Duration
	Behavior ReportFunc
	Logger   *slog.Logger
}

type Option func(*Options)

func WithAddress(address byte) Option {
	return func(o *Options) {
		o.Address = address
	}
}

// WithMinGap makes the controller reject transactions that follow the
// previous one too closely.
func WithMinGap(gap time.Duration) Option {
	return func(o *Options) {
		o.MinGap = gap
	}
}

// WithBehavior replaces the profile idle report with a custom source.
//
// Example usage:
//
//	counter := 0
//	ctrl := mock.NewController(mock.Nunchuk, mock.WithBehavior(func(ctx context.Context, hires bool) ([]byte, error) {
//		counter++
//		return []byte{byte(counter), 128, 128, 128, 128, 0xFF}, nil
//	}))
func WithBehavior(behavior ReportFunc) Option {
	return func(o *Options) {
		o.Behavior = behavior
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// Controller implements wiiext.I2CBus for a single emulated controller.
// Reports are encrypted until the host completes the 0xF0/0xFB handshake.
// Writing 0x03 to 0xFE switches to 8 byte reports; like the real hardware
// the controller does not switch back when 0x01 is written.
type Controller struct {
	mx        sync.Mutex
	profile   Profile
	config    Options
	regs      [256]byte
	cursor    byte
	unlocking bool
	encrypted bool
	hires     bool
	queue     [][]byte
	current   []byte
	failNext  error
	last      time.Time
	log       []Transaction
	released  int
}

var _ wiiext.I2CBus = &Controller{}

func NewController(profile Profile, opts ...Option) *Controller {
	config := Options{
		Address: 0x52,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	c := &Controller{
		profile: profile,
		config:  config,
	}
	c.reset()
	return c
}

// Reset emulates a power cycle: encryption and standard resolution are
// restored and queued reports are dropped.
func (c *Controller) Reset() {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.reset()
}

func (c *Controller) reset() {
	c.regs = [256]byte{}
	copy(c.regs[0xFA:], c.profile.ID[:])
	c.cursor = 0
	c.unlocking = false
	c.encrypted = true
	c.hires = false
	c.queue = nil
	c.current = nil
	c.last = time.Time{}
}

// Push queues reports returned by the following samples, in order. Once the
// queue is drained the last report keeps being returned.
func (c *Controller) Push(reports ...[]byte) {
	c.mx.Lock()
	defer c.mx.Unlock()
	for _, r := range reports {
		c.queue = append(c.queue, append([]byte(nil), r...))
	}
}

// FailNext makes the next transaction return err without touching the
// emulated state.
func (c *Controller) FailNext(err error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.failNext = err
}

func (c *Controller) Encrypted() bool {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.encrypted
}

func (c *Controller) HighRes() bool {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.hires
}

// Transactions returns a copy of the bus log.
func (c *Controller) Transactions() []Transaction {
	c.mx.Lock()
	defer c.mx.Unlock()
	return append([]Transaction(nil), c.log...)
}

// Released returns how many times Release was called.
func (c *Controller) Released() int {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.released
}

func (c *Controller) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	if err := c.begin(address); err != nil {
		return err
	}
	c.log = append(c.log, Transaction{Write: true, Data: append([]byte(nil), buffer...)})
	if len(buffer) == 0 {
		return nil
	}
	c.cursor = buffer[0]
	for _, v := range buffer[1:] {
		c.store(c.cursor, v)
		c.cursor++
	}
	return nil
}

func (c *Controller) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	if err := c.begin(address); err != nil {
		return err
	}
	if c.cursor < 0x08 {
		if err := c.sample(ctx); err != nil {
			return err
		}
	}
	for i := range buffer {
		v := c.regs[c.cursor]
		if c.encrypted {
			v = encrypt(v)
		}
		buffer[i] = v
		c.cursor++
	}
	c.log = append(c.log, Transaction{Data: append([]byte(nil), buffer...)})
	c.config.Logger.Debug("mock read", "profile", c.profile.Name, "data", fmt.Sprintf("% x", buffer))
	return nil
}

func (c *Controller) Release(ctx context.Context) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.released++
	return nil
}

func (c *Controller) begin(address byte) error {
	if c.failNext != nil {
		err := c.failNext
		c.failNext = nil
		return err
	}
	if address != c.config.Address {
		return fmt.Errorf("%w %#x", ErrNoDevice, address)
	}
	now := time.Now()
	if c.config.MinGap > 0 && !c.last.IsZero() && now.Sub(c.last) < c.config.MinGap {
		c.last = now
		return ErrTooFast
	}
	c.last = now
	return nil
}

func (c *Controller) store(reg, v byte) {
	switch reg {
	case 0xF0:
		c.unlocking = v == 0x55
	case 0xFB:
		if c.unlocking && v == 0x00 {
			c.encrypted = false
		}
		c.unlocking = false
	case 0xFE:
		if v == 0x03 {
			c.hires = true
		}
		// identity bytes stay fixed
		return
	case 0xFA, 0xFC, 0xFD, 0xFF:
		return
	}
	c.regs[reg] = v
}

func (c *Controller) sample(ctx context.Context) error {
	data, err := c.next(ctx)
	if err != nil {
		return err
	}
	for i := 0; i < 8; i++ {
		c.regs[i] = 0
	}
	copy(c.regs[:8], data)
	return nil
}

func (c *Controller) next(ctx context.Context) ([]byte, error) {
	if c.config.Behavior != nil {
		return c.config.Behavior(ctx, c.hires)
	}
	if len(c.queue) > 0 {
		c.current = c.queue[0]
		c.queue = c.queue[1:]
	}
	if c.current != nil {
		return c.current, nil
	}
	if c.hires {
		return c.profile.IdleHighRes, nil
	}
	return c.profile.Idle, nil
}

// encrypt applies the transform used by controllers that were not sent the
// encryption-disable sequence (all-zero key).
func encrypt(v byte) byte {
	return (v - 0x17) ^ 0x17
}

// Decrypt reverses the all-zero key transform.
func Decrypt(v byte) byte {
	return (v ^ 0x17) + 0x17
}
