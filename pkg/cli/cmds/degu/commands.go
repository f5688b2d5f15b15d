// Package degu adds the device commands to the shell.
package degu

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/degu.go/pkg/cli/sh"
	fx "github.com/robotalks/degu.go/pkg/framework"
	"github.com/robotalks/degu.go/pkg/l1/msgs"
)

func parsed(parse func([]string) (fx.Message, error)) func(c *ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		msg, err := parse(c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		sh.DoCommand(c, msg)
	})
}

var (
	// CheckUpdateCmd exposes CheckUpdate command.
	CheckUpdateCmd = ishell.Cmd{
		Name:    "update.check",
		Aliases: []string{"upd"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.CheckUpdate{})
		}),
	}

	// ShadowGetCmd exposes ShadowGet command.
	ShadowGetCmd = ishell.Cmd{
		Name:    "shadow.get",
		Aliases: []string{"sg"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.ShadowGet{})
		}),
	}

	// ShadowUpdateCmd exposes ShadowUpdate command.
	ShadowUpdateCmd = ishell.Cmd{
		Name:    "shadow.update",
		Aliases: []string{"su"},
		Help:    "DOC",
		Func: parsed(func(args []string) (fx.Message, error) {
			return ParseShadowUpdate(args)
		}),
	}

	// SuspendCmd exposes Suspend command.
	SuspendCmd = ishell.Cmd{
		Name:    "suspend",
		Aliases: []string{"sleep"},
		Help:    "SECONDS [EXT]",
		Func: parsed(func(args []string) (fx.Message, error) {
			return ParseSuspend(args)
		}),
	}

	// PowerDownCmd exposes PowerDown command.
	PowerDownCmd = ishell.Cmd{
		Name:    "powerdown",
		Aliases: []string{"pd"},
		Help:    `[EXT] [WAKE_JSON] e.g. powerdown on ["GPIO_0",13]`,
		Func: parsed(func(args []string) (fx.Message, error) {
			return ParsePowerDown(args)
		}),
	}
)

func init() {
	sh.AddCmds(
		&CheckUpdateCmd,
		&ShadowGetCmd,
		&ShadowUpdateCmd,
		&SuspendCmd,
		&PowerDownCmd,
	)
}
