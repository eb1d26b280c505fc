package mock

import (
	"fmt"
	"strings"
)

// Profile describes an emulated controller: its identity block and the
// reports it sends when untouched.
type Profile struct {
	Name        string
	ID          [6]byte
	Idle        []byte
	IdleHighRes []byte
}

var (
	Nunchuk = Profile{
		Name: "nunchuk",
		ID:   [6]byte{0x00, 0x00, 0xA4, 0x20, 0x00, 0x00},
		Idle: []byte{126, 129, 125, 139, 170, 95},
		// nunchuks pad the high resolution report with zeroes
		IdleHighRes: []byte{126, 128, 148, 119, 160, 211, 0, 0},
	}
	Classic = Profile{
		Name:        "classic",
		ID:          [6]byte{0x00, 0x00, 0xA4, 0x20, 0x03, 0x01},
		Idle:        []byte{97, 224, 145, 99, 255, 255},
		IdleHighRes: []byte{132, 127, 130, 136, 31, 26, 255, 255},
	}
	ClassicPro = Profile{
		Name:        "classic-pro",
		ID:          [6]byte{0x01, 0x00, 0xA4, 0x20, 0x01, 0x01},
		Idle:        []byte{160, 31, 17, 0, 255, 255},
		IdleHighRes: []byte{128, 132, 132, 132, 0, 0, 255, 255},
	}
)

// ProfileByName looks up one of the predefined profiles.
func ProfileByName(name string) (Profile, error) {
	for _, p := range []Profile{Nunchuk, Classic, ClassicPro} {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("mock: unknown controller profile %q", name)
}
