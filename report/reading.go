// Package report decodes raw extension controller reports, classifies identity
// blocks and applies resting-position calibration. Everything here is pure:
// no bus access and no shared state.
package report

import (
	"math"
)

// ClassicButtons holds the digital inputs of a Classic family controller.
// true means pressed.
type ClassicButtons struct {
	DpadUp    bool `yaml:"dpad_up"`
	DpadDown  bool `yaml:"dpad_down"`
	DpadLeft  bool `yaml:"dpad_left"`
	DpadRight bool `yaml:"dpad_right"`
	A         bool `yaml:"a"`
	B         bool `yaml:"b"`
	X         bool `yaml:"x"`
	Y         bool `yaml:"y"`
	TriggerL  bool `yaml:"trigger_l"`
	TriggerR  bool `yaml:"trigger_r"`
	ZL        bool `yaml:"zl"`
	ZR        bool `yaml:"zr"`
	Minus     bool `yaml:"minus"`
	Plus      bool `yaml:"plus"`
	Home      bool `yaml:"home"`
}

// Any reports whether at least one button is held.
func (b ClassicButtons) Any() bool {
	return b != ClassicButtons{}
}

// ClassicReading is a decoded Classic report with axes scaled to 0..255.
type ClassicReading struct {
	LeftX        uint8          `yaml:"left_x"`
	LeftY        uint8          `yaml:"left_y"`
	RightX       uint8          `yaml:"right_x"`
	RightY       uint8          `yaml:"right_y"`
	TriggerLeft  uint8          `yaml:"trigger_left"`
	TriggerRight uint8          `yaml:"trigger_right"`
	Buttons      ClassicButtons `yaml:"buttons"`
}

// ClassicCalibrated is a ClassicReading with every axis centred on its
// resting position.
type ClassicCalibrated struct {
	LeftX        int8           `yaml:"left_x"`
	LeftY        int8           `yaml:"left_y"`
	RightX       int8           `yaml:"right_x"`
	RightY       int8           `yaml:"right_y"`
	TriggerLeft  int8           `yaml:"trigger_left"`
	TriggerRight int8           `yaml:"trigger_right"`
	Buttons      ClassicButtons `yaml:"buttons"`
}

// accelCentre is the resting value of a 10-bit accelerometer axis.
const accelCentre = 512

// accelRadius approximates 1g in accelerometer counts.
const accelRadius = 210

// NunchukReading is a decoded Nunchuk report. Accelerometer axes are 10-bit.
type NunchukReading struct {
	JoystickX uint8  `yaml:"joystick_x"`
	JoystickY uint8  `yaml:"joystick_y"`
	AccelX    uint16 `yaml:"accel_x"`
	AccelY    uint16 `yaml:"accel_y"`
	AccelZ    uint16 `yaml:"accel_z"`
	C         bool   `yaml:"c"`
	Z         bool   `yaml:"z"`
}

// Roll returns the rotation around the Y axis in degrees.
func (r NunchukReading) Roll() float64 {
	return roll(r.AccelX, r.AccelZ)
}

// Pitch returns the tilt around the X axis in degrees; 90 is level.
func (r NunchukReading) Pitch() float64 {
	return pitch(r.AccelY)
}

// NunchukCalibrated carries a centred joystick. The accelerometer is not
// calibrated and passes through unchanged.
type NunchukCalibrated struct {
	JoystickX int8   `yaml:"joystick_x"`
	JoystickY int8   `yaml:"joystick_y"`
	AccelX    uint16 `yaml:"accel_x"`
	AccelY    uint16 `yaml:"accel_y"`
	AccelZ    uint16 `yaml:"accel_z"`
	C         bool   `yaml:"c"`
	Z         bool   `yaml:"z"`
}

func (r NunchukCalibrated) Roll() float64 {
	return roll(r.AccelX, r.AccelZ)
}

func (r NunchukCalibrated) Pitch() float64 {
	return pitch(r.AccelY)
}

func roll(x, z uint16) float64 {
	return math.Atan2(float64(int(x)-accelCentre), float64(int(z)-accelCentre)) / math.Pi * 180.0
}

func pitch(y uint16) float64 {
	v := float64(int(y)-accelCentre) / accelRadius
	// readings beyond 1g under motion would leave the acos domain
	v = math.Max(-1, math.Min(1, v))
	return math.Acos(v) / math.Pi * 180.0
}
