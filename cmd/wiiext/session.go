package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v2"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/wiiext"
	"github.com/mklimuk/wiiext/adapter"
	"github.com/mklimuk/wiiext/cmd/wiiext/console"
	"github.com/mklimuk/wiiext/config"
	"github.com/mklimuk/wiiext/i2c"
	"github.com/mklimuk/wiiext/mock"
	"github.com/mklimuk/wiiext/protocol"
	"github.com/mklimuk/wiiext/wiictx"
)

// session is an open bus plus the configuration it was opened with.
type session struct {
	cfg   config.Config
	bus   wiiext.I2CBus
	close func() error
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if c.IsSet("adapter") {
		cfg.Adapter = c.String("adapter")
	}
	if c.IsSet("device") {
		cfg.Device = c.String("device")
	}
	if c.IsSet("bus") {
		cfg.Bus = c.Int("bus")
	}
	if c.IsSet("mock-profile") {
		cfg.Mock.Profile = c.String("mock-profile")
	}
	return cfg, cfg.Validate()
}

func openSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, console.Exit(console.ExitFailure, "configuration error: %s", console.Red(err))
	}
	s := &session{
		cfg:   cfg,
		close: func() error { return nil },
	}
	switch cfg.Adapter {
	case config.AdapterMCP2221:
		s.bus = adapter.NewMCP2221(adapter.WithIndex(cfg.Index))
	case config.AdapterGeneric:
		var opts []i2c.GenericBusOpt
		if cfg.SpeedKHz > 0 {
			opts = append(opts, i2c.WithSpeed(physic.Frequency(cfg.SpeedKHz)*physic.KiloHertz))
		}
		bus, err := i2c.NewGenericBus(cfg.Device, opts...)
		if err != nil {
			return nil, console.Exit(console.ExitTransport, "could not open bus: %s", console.Red(err))
		}
		s.bus, s.close = bus, bus.Close
	case config.AdapterNanoPi:
		bus, err := i2c.NewNanoPiBus(cfg.Bus)
		if err != nil {
			return nil, console.Exit(console.ExitTransport, "could not open bus: %s", console.Red(err))
		}
		s.bus, s.close = bus, bus.Close
	case config.AdapterMock:
		profile, err := mock.ProfileByName(cfg.Mock.Profile)
		if err != nil {
			return nil, console.Exit(console.ExitFailure, "configuration error: %s", console.Red(err))
		}
		s.bus = mock.NewController(profile, mock.WithMinGap(cfg.SettleDelay))
	default:
		return nil, console.Exit(console.ExitFailure, "unsupported adapter %q", cfg.Adapter)
	}
	slog.Debug("bus opened", "adapter", cfg.Adapter, "device", cfg.Device, "bus", cfg.Bus)
	return s, nil
}

// commandContext decorates the command context with the verbose flag and a
// logger tagged with the running command.
func commandContext(c *cli.Context) context.Context {
	ctx := wiictx.SetVerbose(c.Context, c.Bool("verbose"))
	return wiictx.WithLogger(ctx, slog.Default().With("cmd", c.Command.FullName()))
}

// protocolOptions adds the command logger from ctx to the configured timing.
func (s *session) protocolOptions(ctx context.Context) []protocol.Option {
	return append(s.cfg.ProtocolOptions(), protocol.WithLogger(wiictx.Logger(ctx)))
}

func (s *session) Close() {
	if err := s.close(); err != nil {
		slog.Warn("could not close bus", "error", fmt.Sprintf("%v", err))
	}
}
