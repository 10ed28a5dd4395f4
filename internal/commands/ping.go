package commands

import (
	"fmt"

	"github.com/keshon/slashdispatch/pkg/cmd"
)

func pingCommand(d Deps) *cmd.Command {
	return &cmd.Command{
		Name:        "ping",
		Description: "Pong!",
		Run: func(c *cmd.Context, _ cmd.Args) (any, error) {
			msg := "🏓 Pong!"
			if d.Latency != nil {
				msg = fmt.Sprintf("🏓 Pong! Response time: `%dms`", d.Latency().Milliseconds())
			}
			return msg, c.Reply(msg)
		},
	}
}
