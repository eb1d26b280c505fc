package report

import (
	"fmt"

	"github.com/mklimuk/wiiext"
)

// Report sizes accepted by the decoders.
const (
	StandardSize = 6
	HighResSize  = 8
)

// DecodeClassic decodes a Classic family report. The layout is chosen from
// the length alone: 6 bytes is the standard packed format, 8 bytes the
// high resolution one.
//
// Standard layout (buttons active-low):
//
//	byte  7      6      5      4      3      2      1      0
//	0     RX<4:3>       LX<5:0>
//	1     RX<2:1>       LY<5:0>
//	2     RX<0>  LT<4:3>      RY<4:0>
//	3     LT<2:0>              RT<4:0>
//	4     BDR    BDD    BLT    B-     BH     B+     BRT    1
//	5     BZL    BB     BY     BA     BX     BZR    BDL    BDU
//
// High resolution layout: LX RX LY RY LT RT followed by the two button bytes.
func DecodeClassic(data []byte) (ClassicReading, error) {
	switch len(data) {
	case StandardSize:
		return decodeClassicStandard(data), nil
	case HighResSize:
		return decodeClassicHighRes(data), nil
	default:
		return ClassicReading{}, fmt.Errorf("report: classic report of %d bytes: %w", len(data), wiiext.ErrInvalidInputData)
	}
}

func decodeClassicStandard(data []byte) ClassicReading {
	// split fields are merged with OR; an AND merge always yields zero for
	// right stick X and most of the left trigger range
	rx := (data[2]&0x80)>>7 | (data[1]&0xC0)>>5 | (data[0]&0xC0)>>3
	lt := (data[2]&0x60)>>2 | (data[3]&0xE0)>>5
	return ClassicReading{
		LeftX:        Scale6(data[0] & 0x3F),
		LeftY:        Scale6(data[1] & 0x3F),
		RightX:       Scale5(rx),
		RightY:       Scale5(data[2] & 0x1F),
		TriggerLeft:  Scale5(lt),
		TriggerRight: Scale5(data[3] & 0x1F),
		Buttons:      decodeClassicButtons(data[4], data[5]),
	}
}

func decodeClassicHighRes(data []byte) ClassicReading {
	return ClassicReading{
		LeftX:        data[0],
		RightX:       data[1],
		LeftY:        data[2],
		RightY:       data[3],
		TriggerLeft:  data[4],
		TriggerRight: data[5],
		Buttons:      decodeClassicButtons(data[6], data[7]),
	}
}

func decodeClassicButtons(b1, b2 byte) ClassicButtons {
	return ClassicButtons{
		DpadRight: b1&0x80 == 0,
		DpadDown:  b1&0x40 == 0,
		TriggerL:  b1&0x20 == 0,
		Minus:     b1&0x10 == 0,
		Home:      b1&0x08 == 0,
		Plus:      b1&0x04 == 0,
		TriggerR:  b1&0x02 == 0,
		ZL:        b2&0x80 == 0,
		B:         b2&0x40 == 0,
		Y:         b2&0x20 == 0,
		A:         b2&0x10 == 0,
		X:         b2&0x08 == 0,
		ZR:        b2&0x04 == 0,
		DpadLeft:  b2&0x02 == 0,
		DpadUp:    b2&0x01 == 0,
	}
}

// DecodeNunchuk decodes a 6 byte Nunchuk report. Byte 5 carries the two low
// bits of each accelerometer axis and the active-low C and Z buttons.
// The low bits follow the wiibrew layout (X in bits 2-3, Y in 4-5, Z in 6-7);
// drivers that swap the X and Z bits report different 10-bit values.
func DecodeNunchuk(data []byte) (NunchukReading, error) {
	if len(data) != StandardSize {
		return NunchukReading{}, fmt.Errorf("report: nunchuk report of %d bytes: %w", len(data), wiiext.ErrInvalidInputData)
	}
	low := uint16(data[5])
	return NunchukReading{
		JoystickX: data[0],
		JoystickY: data[1],
		AccelX:    uint16(data[2])<<2 | (low>>2)&0x03,
		AccelY:    uint16(data[3])<<2 | (low>>4)&0x03,
		AccelZ:    uint16(data[4])<<2 | (low>>6)&0x03,
		C:         data[5]&0x02 == 0,
		Z:         data[5]&0x01 == 0,
	}, nil
}

// Scale5 stretches a 5-bit value to the full 8-bit range.
func Scale5(v uint8) uint8 {
	return scale(v&0x1F, 31)
}

// Scale6 stretches a 6-bit value to the full 8-bit range.
func Scale6(v uint8) uint8 {
	return scale(v&0x3F, 63)
}

func scale(v uint8, full uint16) uint8 {
	return uint8(uint16(v) * 255 / full)
}
