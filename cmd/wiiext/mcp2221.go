package main

import (
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/wiiext/adapter"
	"github.com/mklimuk/wiiext/cmd/wiiext/console"
)

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "talk to the MCP2221 USB to I2C bridge directly",
	Subcommands: cli.Commands{
		&mcp2221StatusCmd,
		&mcp2221ReleaseCmd,
	},
}

var mcp2221StatusCmd = cli.Command{
	Name:  "status",
	Usage: "print the adapter I2C engine status",
	Action: func(c *cli.Context) error {
		a, err := mcp2221Adapter(c)
		if err != nil {
			return err
		}
		status, err := a.Status(commandContext(c))
		if err != nil {
			return console.Exit(console.ExitTransport, "adapter communication error: %s", console.Red(err))
		}
		return encodeStatus(status)
	},
}

// mcp2221ReleaseCmd recovers a bus left busy by an interrupted transfer.
var mcp2221ReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel the current transfer and release the bus",
	Action: func(c *cli.Context) error {
		a, err := mcp2221Adapter(c)
		if err != nil {
			return err
		}
		status, err := a.ReleaseBus(commandContext(c))
		if err != nil {
			return console.Exit(console.ExitTransport, "adapter communication error: %s", console.Red(err))
		}
		return encodeStatus(status)
	},
}

func mcp2221Adapter(c *cli.Context) (*adapter.MCP2221, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, console.Exit(console.ExitFailure, "configuration error: %s", console.Red(err))
	}
	return adapter.NewMCP2221(adapter.WithIndex(cfg.Index)), nil
}

func encodeStatus(status *adapter.MCP2221Status) error {
	enc := yaml.NewEncoder(console.Writer())
	defer enc.Close()
	if err := enc.Encode(status); err != nil {
		return console.Exit(console.ExitFailure, "encoding error: %s", console.Red(err))
	}
	return nil
}
