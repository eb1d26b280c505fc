package main

import (
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/wiiext/classic"
	"github.com/mklimuk/wiiext/cmd/wiiext/console"
	"github.com/mklimuk/wiiext/nunchuk"
	"github.com/mklimuk/wiiext/protocol"
	"github.com/mklimuk/wiiext/report"
)

type calibration struct {
	Controller report.ControllerType `yaml:"controller"`
	Mode       string                `yaml:"mode,omitempty"`
	Baseline   interface{}           `yaml:"baseline"`
}

var calibrateCmd = cli.Command{
	Name:  "calibrate",
	Usage: "capture and print the resting position of the connected controller",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "hires",
			Usage: "calibrate a Classic controller in high resolution mode",
		},
		&cli.BoolFlag{
			Name:  "yes",
			Usage: "do not wait for confirmation before sampling",
		},
	},
	Action: func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := commandContext(c)

		iface := protocol.New(s.bus, s.protocolOptions(ctx)...)
		err = iface.Handshake(ctx)
		if err != nil {
			return console.ExitErr("handshake failed", err)
		}
		id, err := iface.ReadID(ctx)
		if err != nil {
			return console.ExitErr("could not read identity", err)
		}
		typ, err := report.Identify(id)
		if err != nil {
			return console.ExitErr("invalid identity", err)
		}
		console.PInfof(console.PictoController, "found %s", console.White(typ))
		if !c.Bool("yes") {
			if err := console.WaitEnter("release all sticks and triggers, then press enter"); err != nil {
				return console.Exit(console.ExitFailure, "prompt error: %s", console.Red(err))
			}
		}

		// the facade runs its own handshake; the delay provider carries over
		// so a pending settle period is honoured
		bus, delay := iface.Destroy()
		opts := append(s.protocolOptions(ctx), protocol.WithDelayer(delay))
		out := calibration{Controller: typ}
		switch typ {
		case report.Nunchuk:
			n, err := nunchuk.New(ctx, bus, opts...)
			if err != nil {
				return console.ExitErr("calibration failed", err)
			}
			defer n.Destroy()
			out.Baseline = n.Baseline()
		case report.Classic, report.ClassicPro:
			cl, err := classic.New(ctx, bus, opts...)
			if err != nil {
				return console.ExitErr("calibration failed", err)
			}
			defer cl.Destroy()
			if c.Bool("hires") {
				if err := cl.EnableHighRes(ctx); err != nil {
					return console.ExitErr("could not enable high resolution", err)
				}
			}
			out.Mode = cl.Mode().String()
			out.Baseline = cl.Baseline()
		default:
			return console.Exit(console.ExitData, "unsupported controller")
		}

		enc := yaml.NewEncoder(console.Writer())
		defer enc.Close()
		if err := enc.Encode(out); err != nil {
			return console.Exit(console.ExitFailure, "encoding error: %s", console.Red(err))
		}
		return nil
	},
}
