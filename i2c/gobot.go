package i2c

import (
	"context"
	"fmt"
	"sync"

	"github.com/mklimuk/wiiext"
	"gobot.io/x/gobot/v2/drivers/i2c"
	"gobot.io/x/gobot/v2/platforms/nanopi"
)

var _ wiiext.I2CBus = &GobotBus{}

// GobotBus adapts a gobot I2C connector. A generic driver is started for
// every address on first use and kept until Release.
type GobotBus struct {
	mx        sync.Mutex
	connector i2c.Connector
	bus       int
	drivers   map[byte]*i2c.GenericDriver
	finalize  func() error
}

func NewGobotBus(connector i2c.Connector, bus int) *GobotBus {
	return &GobotBus{
		connector: connector,
		bus:       bus,
		drivers:   make(map[byte]*i2c.GenericDriver),
	}
}

// NewNanoPiBus connects the NanoPi NEO adaptor and uses the given bus number.
func NewNanoPiBus(bus int) (*GobotBus, error) {
	npi := nanopi.NewNeoAdaptor()
	err := npi.I2cBusAdaptor.Connect()
	if err != nil {
		return nil, fmt.Errorf("adaptor connect error: %w", err)
	}
	b := NewGobotBus(npi, bus)
	b.finalize = npi.I2cBusAdaptor.Finalize
	return b, nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mx.Lock()
	defer b.mx.Unlock()
	d, err := b.driver(address)
	if err != nil {
		return err
	}
	err = d.Read(buffer)
	if err != nil {
		return fmt.Errorf("read from %#x failed: %w", address, err)
	}
	return nil
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mx.Lock()
	defer b.mx.Unlock()
	d, err := b.driver(address)
	if err != nil {
		return err
	}
	err = d.Write(buffer)
	if err != nil {
		return fmt.Errorf("write to %#x failed: %w", address, err)
	}
	return nil
}

// Release halts all started drivers. They are started again on next access.
func (b *GobotBus) Release(ctx context.Context) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var first error
	for addr, d := range b.drivers {
		if err := d.Halt(); err != nil && first == nil {
			first = fmt.Errorf("halt %#x: %w", addr, err)
		}
		delete(b.drivers, addr)
	}
	return first
}

// Close releases the drivers and finalizes the adaptor if the bus owns it.
func (b *GobotBus) Close() error {
	err := b.Release(context.Background())
	if b.finalize != nil {
		if ferr := b.finalize(); ferr != nil && err == nil {
			err = ferr
		}
	}
	return err
}

func (b *GobotBus) driver(address byte) (*i2c.GenericDriver, error) {
	if d, ok := b.drivers[address]; ok {
		return d, nil
	}
	d := i2c.NewGenericDriver(b.connector, "wiiext", int(address), func(c i2c.Config) {
		c.SetBus(b.bus)
	})
	err := d.Start()
	if err != nil {
		return nil, fmt.Errorf("start error at %#x: %w", address, err)
	}
	b.drivers[address] = d
	return d, nil
}
