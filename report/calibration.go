package report

// ClassicBaseline holds the resting position of every Classic analog axis.
type ClassicBaseline struct {
	LeftX        uint8 `yaml:"left_x"`
	LeftY        uint8 `yaml:"left_y"`
	RightX       uint8 `yaml:"right_x"`
	RightY       uint8 `yaml:"right_y"`
	TriggerLeft  uint8 `yaml:"trigger_left"`
	TriggerRight uint8 `yaml:"trigger_right"`
}

// CaptureClassic records the analog axes of r as the resting position.
func CaptureClassic(r ClassicReading) ClassicBaseline {
	return ClassicBaseline{
		LeftX:        r.LeftX,
		LeftY:        r.LeftY,
		RightX:       r.RightX,
		RightY:       r.RightY,
		TriggerLeft:  r.TriggerLeft,
		TriggerRight: r.TriggerRight,
	}
}

// Apply centres r on the baseline. Buttons are copied as they are.
func (b ClassicBaseline) Apply(r ClassicReading) ClassicCalibrated {
	return ClassicCalibrated{
		LeftX:        Offset(r.LeftX, b.LeftX),
		LeftY:        Offset(r.LeftY, b.LeftY),
		RightX:       Offset(r.RightX, b.RightX),
		RightY:       Offset(r.RightY, b.RightY),
		TriggerLeft:  Offset(r.TriggerLeft, b.TriggerLeft),
		TriggerRight: Offset(r.TriggerRight, b.TriggerRight),
		Buttons:      r.Buttons,
	}
}

// NunchukBaseline holds the resting joystick position.
type NunchukBaseline struct {
	JoystickX uint8 `yaml:"joystick_x"`
	JoystickY uint8 `yaml:"joystick_y"`
}

func CaptureNunchuk(r NunchukReading) NunchukBaseline {
	return NunchukBaseline{
		JoystickX: r.JoystickX,
		JoystickY: r.JoystickY,
	}
}

func (b NunchukBaseline) Apply(r NunchukReading) NunchukCalibrated {
	return NunchukCalibrated{
		JoystickX: Offset(r.JoystickX, b.JoystickX),
		JoystickY: Offset(r.JoystickY, b.JoystickY),
		AccelX:    r.AccelX,
		AccelY:    r.AccelY,
		AccelZ:    r.AccelZ,
		C:         r.C,
		Z:         r.Z,
	}
}

// Offset returns raw-base saturated to the int8 range.
func Offset(raw, base uint8) int8 {
	v := int16(raw) - int16(base)
	if v > 127 {
		return 127
	}
	if v < -128 {
		return -128
	}
	return int8(v)
}
