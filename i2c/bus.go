// Package i2c provides wiiext.I2CBus implementations for buses exposed by
// the host: periph.io for Linux /dev/i2c-N devices and gobot for boards
// supported by its platform adaptors.
package i2c

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mklimuk/wiiext"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

var _ wiiext.I2CBus = &GenericBus{}

// Wii extension controllers are specified for 100kHz; most also accept 400kHz.
const DefaultSpeed = 100 * physic.KiloHertz

type GenericBus struct {
	bus i2c.BusCloser
}

type GenericBusOpts struct {
	Speed  physic.Frequency
	Logger *slog.Logger
}

type GenericBusOpt func(*GenericBusOpts)

func WithSpeed(speed physic.Frequency) GenericBusOpt {
	return func(o *GenericBusOpts) {
		o.Speed = speed
	}
}

func WithLogger(l *slog.Logger) GenericBusOpt {
	return func(o *GenericBusOpts) {
		o.Logger = l
	}
}

// NewGenericBus initialises the periph host drivers and opens dev. An empty
// dev selects the first bus available.
func NewGenericBus(dev string, opts ...GenericBusOpt) (*GenericBus, error) {
	config := GenericBusOpts{}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		config.Logger.Debug("host driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus: %w", err)
	}
	return NewGenericBusFrom(bus, config.Speed)
}

// NewGenericBusFrom wraps an already opened periph bus. A zero speed keeps
// the bus default.
func NewGenericBusFrom(bus i2c.BusCloser, speed physic.Frequency) (*GenericBus, error) {
	if speed > 0 {
		if err := bus.SetSpeed(speed); err != nil {
			_ = bus.Close()
			return nil, fmt.Errorf("could not set bus speed to %s: %w", speed, err)
		}
	}
	return &GenericBus{
		bus: bus,
	}, nil
}

func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.bus.Tx(uint16(address), buffer, nil)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

// Release is a no-op; the kernel driver recovers the bus on its own.
func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}
