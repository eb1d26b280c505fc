package wiiext

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// I2CBus is the two-wire bus a controller is attached to. Implementations
// live in the i2c and adapter packages; mock provides an emulated device.
type I2CBus interface {
	AddressableReader
	AddressableWriter
}
