package main

import (
	"encoding/hex"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/wiiext/cmd/wiiext/console"
	"github.com/mklimuk/wiiext/protocol"
	"github.com/mklimuk/wiiext/report"
)

var identifyCmd = cli.Command{
	Name:  "identify",
	Usage: "detect the connected controller type",
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
		console.PInfof(console.PictoController, "%s (id %s)", console.White(typ), hex.EncodeToString(id))
		if typ == report.Unrecognized {
			return console.Exit(console.ExitData, "unsupported controller")
		}
		return nil
	},
}
