package report

import (
	"fmt"

	"github.com/mklimuk/wiiext"
)

// ControllerType is the controller family reported by the identity block.
type ControllerType int

const (
	Unrecognized ControllerType = iota
	Nunchuk
	Classic
	ClassicPro
)

func (t ControllerType) String() string {
	switch t {
	case Nunchuk:
		return "nunchuk"
	case Classic:
		return "classic"
	case ClassicPro:
		return "classic-pro"
	default:
		return "unrecognized"
	}
}

func (t ControllerType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// IdentitySize is the length of the identity block at register 0xFA.
const IdentitySize = 6

// Identify classifies a raw identity block. Bytes 2 and 3 must carry the
// extension signature 0xA4 0x20; the family is then selected by bytes 0, 1,
// 4 and 5. An unknown signature is reported as Unrecognized, not an error.
// Most clone pads (NES and SNES style included) identify as ClassicPro.
func Identify(data []byte) (ControllerType, error) {
	if len(data) != IdentitySize {
		return Unrecognized, fmt.Errorf("report: identity block of %d bytes: %w", len(data), wiiext.ErrInvalidInputData)
	}
	if data[2] != 0xA4 || data[3] != 0x20 {
		return Unrecognized, nil
	}
	switch [4]byte{data[0], data[1], data[4], data[5]} {
	case [4]byte{0x00, 0x00, 0x00, 0x00}:
		return Nunchuk, nil
	case [4]byte{0x00, 0x00, 0x03, 0x01}:
		return Classic, nil
	case [4]byte{0x01, 0x00, 0x01, 0x01}:
		return ClassicPro, nil
	default:
		return Unrecognized, nil
	}
}
