package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/wiiext/classic"
	"github.com/mklimuk/wiiext/cmd/wiiext/console"
	"github.com/mklimuk/wiiext/nunchuk"
	"github.com/mklimuk/wiiext/report"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

func readFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "print uncalibrated values",
		},
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"n"},
			Usage:   "stop after n samples, 0 polls until interrupted",
		},
		&cli.Float64Flag{
			Name:  "rate",
			Usage: "samples per second, overrides the configured rate",
		},
		&cli.StringFlag{
			Name:  "format",
			Value: formatText,
			Usage: "output format: text or yaml",
		},
	}
}

var readCmd = cli.Command{
	Name:  "read",
	Usage: "poll a controller and print its state",
	Subcommands: cli.Commands{
		&readClassicCmd,
		&readNunchukCmd,
	},
}

var readClassicCmd = cli.Command{
	Name:  "classic",
	Usage: "poll a Classic or Classic Pro controller",
	Flags: append(readFlags(), &cli.BoolFlag{
		Name:  "hires",
		Usage: "switch to 8 byte high resolution reports",
	}),
	Action: func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := commandContext(c)

		ctrl, err := classic.New(ctx, s.bus, s.protocolOptions(ctx)...)
		if err != nil {
			return console.ExitErr("could not initialize controller", err)
		}
		defer ctrl.Destroy()
		if c.Bool("hires") {
			// Init keeps the mode from here on
			if err := ctrl.EnableHighRes(ctx); err != nil {
				return console.ExitErr("could not enable high resolution", err)
			}
		}
		warnType(ctx, ctrl.Identify, report.Classic, report.ClassicPro)

		raw := c.Bool("raw")
		read := func(ctx context.Context) (interface{}, error) {
			if raw {
				r, err := ctrl.ReadUncalibrated(ctx)
				return r, err
			}
			r, err := ctrl.Read(ctx)
			return r, err
		}
		opts, err := pollOptions(c, s)
		if err != nil {
			return err
		}
		return poll(ctx, opts, read, ctrl.Init)
	},
}

var readNunchukCmd = cli.Command{
	Name:  "nunchuk",
	Usage: "poll a Nunchuk",
	Flags: readFlags(),
	Action: func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return err
		}
		defer s.Close()
		ctx := commandContext(c)

		ctrl, err := nunchuk.New(ctx, s.bus, s.protocolOptions(ctx)...)
		if err != nil {
			return console.ExitErr("could not initialize controller", err)
		}
		defer ctrl.Destroy()
		warnType(ctx, ctrl.Identify, report.Nunchuk)

		raw := c.Bool("raw")
		read := func(ctx context.Context) (interface{}, error) {
			if raw {
				r, err := ctrl.ReadUncalibrated(ctx)
				return r, err
			}
			r, err := ctrl.Read(ctx)
			return r, err
		}
		opts, err := pollOptions(c, s)
		if err != nil {
			return err
		}
		return poll(ctx, opts, read, ctrl.Init)
	},
}

// warnType reports a controller that does not match the driver in use.
// Decoding still goes ahead since the caller asked for it explicitly.
func warnType(ctx context.Context, identify func(context.Context) (report.ControllerType, error), want ...report.ControllerType) {
	typ, err := identify(ctx)
	if err != nil {
		console.Warnf("could not identify controller: %s", err)
		return
	}
	for _, w := range want {
		if typ == w {
			return
		}
	}
	console.Warnf("controller identifies as %s", typ)
}

// maxReinit bounds consecutive re-initialisations without a good read.
const maxReinit = 3

type pollOpts struct {
	Rate   float64
	Count  int
	Format string
}

func pollOptions(c *cli.Context, s *session) (pollOpts, error) {
	opts := pollOpts{
		Rate:   s.cfg.Rate,
		Count:  c.Int("count"),
		Format: c.String("format"),
	}
	if c.IsSet("rate") {
		opts.Rate = c.Float64("rate")
	}
	if opts.Rate <= 0 {
		return opts, console.Exit(console.ExitFailure, "rate must be positive, got %v", opts.Rate)
	}
	if opts.Format != formatText && opts.Format != formatYAML {
		return opts, console.Exit(console.ExitFailure, "unsupported format %q", opts.Format)
	}
	return opts, nil
}

// poll samples at the configured rate. A failed read triggers a full
// re-initialisation, up to maxReinit times in a row; interruption ends
// polling without an error.
func poll(ctx context.Context, opts pollOpts, read func(context.Context) (interface{}, error), reinit func(context.Context) error) error {
	limiter := rate.NewLimiter(rate.Limit(opts.Rate), 1)
	var enc *yaml.Encoder
	if opts.Format == formatYAML {
		enc = yaml.NewEncoder(console.Writer())
		defer enc.Close()
	}

	failures := 0
	for i := 0; opts.Count == 0 || i < opts.Count; {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return console.Exit(console.ExitFailure, "rate limiter: %s", err)
		}
		v, err := read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			failures++
			if failures > maxReinit {
				return console.Exit(console.ExitTransport, "giving up after %d reinitializations: %s", maxReinit, console.Red(err))
			}
			console.Warnf("read failed: %s, reinitializing", err)
			if err := reinit(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return console.ExitErr("reinitialization failed", err)
			}
			continue
		}
		failures = 0
		i++
		if enc != nil {
			if err := enc.Encode(v); err != nil {
				return console.Exit(console.ExitFailure, "encoding error: %s", console.Red(err))
			}
			continue
		}
		console.Print(formatReport(v))
	}
	return nil
}

// formatReport renders one sample as a single terminal line.
func formatReport(v interface{}) string {
	switch r := v.(type) {
	case report.ClassicCalibrated:
		return fmt.Sprintf("L %s %s  R %s %s  T %s %s  %s",
			console.Axis(r.LeftX, deadzone), console.Axis(r.LeftY, deadzone),
			console.Axis(r.RightX, deadzone), console.Axis(r.RightY, deadzone),
			console.Axis(r.TriggerLeft, deadzone), console.Axis(r.TriggerRight, deadzone),
			classicButtons(r.Buttons))
	case report.ClassicReading:
		return fmt.Sprintf("L %4d %4d  R %4d %4d  T %4d %4d  %s",
			r.LeftX, r.LeftY, r.RightX, r.RightY, r.TriggerLeft, r.TriggerRight,
			classicButtons(r.Buttons))
	case report.NunchukCalibrated:
		return fmt.Sprintf("J %s %s  A %4d %4d %4d  roll %6.1f pitch %5.1f  %s %s",
			console.Axis(r.JoystickX, deadzone), console.Axis(r.JoystickY, deadzone),
			r.AccelX, r.AccelY, r.AccelZ, r.Roll(), r.Pitch(),
			console.Button("C", r.C), console.Button("Z", r.Z))
	case report.NunchukReading:
		return fmt.Sprintf("J %4d %4d  A %4d %4d %4d  roll %6.1f pitch %5.1f  %s %s",
			r.JoystickX, r.JoystickY, r.AccelX, r.AccelY, r.AccelZ, r.Roll(), r.Pitch(),
			console.Button("C", r.C), console.Button("Z", r.Z))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// deadzone hides idle jitter around the calibrated centre.
const deadzone = 8

func classicButtons(b report.ClassicButtons) string {
	return fmt.Sprintf("%s%s%s%s %s%s%s%s %s%s%s%s %s%s%s",
		console.Button("U", b.DpadUp), console.Button("D", b.DpadDown),
		console.Button("L", b.DpadLeft), console.Button("R", b.DpadRight),
		console.Button("A", b.A), console.Button("B", b.B),
		console.Button("X", b.X), console.Button("Y", b.Y),
		console.Button("LT", b.TriggerL), console.Button("RT", b.TriggerR),
		console.Button("ZL", b.ZL), console.Button("ZR", b.ZR),
		console.Button("-", b.Minus), console.Button("H", b.Home), console.Button("+", b.Plus))
}
