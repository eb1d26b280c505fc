package report

// Reports captured from real controllers.
var (
	classicIdle      = []byte{97, 224, 145, 99, 255, 255}
	classicBtnB      = []byte{97, 224, 145, 99, 255, 191}
	classicBtnA      = []byte{97, 224, 145, 99, 255, 239}
	classicBtnX      = []byte{97, 224, 145, 99, 255, 247}
	classicBtnY      = []byte{97, 224, 145, 99, 255, 223}
	classicBtnL      = []byte{97, 224, 241, 163, 223, 255}
	classicBtnR      = []byte{97, 224, 145, 124, 253, 255}
	classicBtnZL     = []byte{97, 224, 145, 99, 255, 127}
	classicBtnZR     = []byte{97, 224, 145, 99, 255, 251}
	classicPadU      = []byte{97, 224, 145, 99, 255, 254}
	classicPadD      = []byte{97, 224, 145, 99, 191, 255}
	classicPadL      = []byte{97, 224, 145, 99, 255, 253}
	classicPadR      = []byte{97, 224, 145, 99, 127, 255}
	classicBtnMinus  = []byte{97, 224, 145, 99, 239, 255}
	classicBtnPlus   = []byte{97, 224, 145, 99, 251, 255}
	classicBtnHome   = []byte{97, 224, 145, 99, 247, 255}
	classicLJoyU     = []byte{97, 251, 145, 99, 255, 255}
	classicLJoyD     = []byte{97, 200, 145, 99, 255, 255}
	classicLJoyL     = []byte{73, 225, 145, 99, 255, 255}
	classicLJoyR     = []byte{121, 225, 145, 99, 255, 255}
	classicRJoyU     = []byte{161, 32, 29, 99, 255, 255}
	classicRJoyD     = []byte{161, 32, 3, 99, 255, 255}
	classicRJoyL     = []byte{32, 96, 144, 99, 255, 255}
	classicRJoyR     = []byte{225, 160, 16, 99, 255, 255}
	classicLTrig     = []byte{97, 224, 241, 3, 255, 255}
	classicRTrig     = []byte{97, 224, 145, 120, 255, 255}
	classicHDIdle    = []byte{132, 127, 130, 136, 31, 26, 255, 255}
	classicHDLJoyU   = []byte{134, 128, 238, 137, 31, 26, 255, 255}
	classicHDLJoyD   = []byte{130, 128, 34, 138, 31, 26, 255, 255}
	classicHDLJoyL   = []byte{36, 127, 135, 137, 31, 26, 255, 255}
	classicHDLJoyR   = []byte{229, 127, 134, 138, 31, 26, 255, 255}
	classicHDRJoyU   = []byte{132, 131, 130, 239, 31, 24, 255, 255}
	classicHDRJoyD   = []byte{132, 130, 131, 30, 31, 24, 255, 255}
	classicHDRJoyL   = []byte{133, 29, 130, 135, 31, 24, 255, 255}
	classicHDRJoyR   = []byte{133, 226, 131, 132, 31, 24, 255, 255}
	classicHDLTrig   = []byte{133, 128, 131, 137, 245, 22, 255, 255}
	classicHDRTrig   = []byte{131, 128, 131, 137, 31, 230, 255, 255}
	classicHDBtnX    = []byte{132, 128, 131, 137, 31, 26, 255, 247}
	nesIdle          = []byte{95, 223, 143, 0, 255, 255}
	snesIdle         = []byte{160, 33, 16, 0, 255, 255}
	proIdle          = []byte{160, 31, 17, 0, 255, 255}
	nunchukIdle      = []byte{126, 129, 125, 139, 170, 95}
	nunchukJoyU      = []byte{130, 221, 125, 118, 172, 191}
	nunchukJoyD      = []byte{126, 35, 130, 131, 173, 7}
	nunchukJoyL      = []byte{25, 130, 117, 126, 172, 191}
	nunchukJoyR      = []byte{225, 130, 122, 132, 173, 27}
	nunchukBtnC      = []byte{127, 128, 122, 138, 171, 181}
	nunchukBtnZ      = []byte{127, 127, 122, 134, 172, 122}
	classicID        = []byte{0, 0, 164, 32, 3, 1}
	classicProID     = []byte{1, 0, 164, 32, 1, 1}
	nunchukID        = []byte{0, 0, 164, 32, 0, 0}
	unknownSignature = []byte{0, 0, 165, 32, 3, 1}
)

const (
	// resting position slop
	zeroSlop        = 8
	nunchukZeroSlop = 5
	triggerSlop     = 8
	// minimum deflection at full travel
	axisMax = 90
)
