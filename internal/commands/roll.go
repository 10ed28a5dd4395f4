package commands

import (
	"fmt"
	"strings"

	"github.com/keshon/slashdispatch/pkg/cmd"
)

var formulaPresets = []string{"1d20", "1d20+5", "2d6", "2d20*2", "3d8+2", "4d6", "1d100"}

// formulaType coerces text into a parsed Formula so executors never see
// invalid input.
func formulaType() cmd.Coercer {
	return cmd.CoercerFunc{
		S: cmd.Schema{Kind: cmd.OptionString},
		Fn: func(_ *cmd.Context, raw cmd.RawOption) (any, error) {
			s, ok := raw.Value.(string)
			if !ok {
				return nil, &cmd.CoercionError{Argument: raw.Name, Kind: cmd.CoercionTypeMismatch, Detail: "expected text"}
			}
			f, err := ParseFormula(s)
			if err != nil {
				return nil, &cmd.CoercionError{Argument: raw.Name, Kind: cmd.CoercionCustom, Detail: err.Error()}
			}
			return f, nil
		},
	}
}

func suggestFormulas(_ *cmd.Context, in cmd.AutocompleteInput) ([]cmd.Choice, error) {
	typed := strings.ToLower(strings.Join(strings.Fields(in.Text()), ""))
	var out []cmd.Choice
	if typed != "" {
		if f, err := ParseFormula(typed); err == nil {
			out = append(out, cmd.Choice{Name: f.String(), Value: f.String()})
		}
	}
	for _, p := range formulaPresets {
		if p != typed && strings.HasPrefix(p, typed) {
			out = append(out, cmd.Choice{Name: p, Value: p})
		}
	}
	return out, nil
}

func rollCommand(d Deps) *cmd.Command {
	return &cmd.Command{
		Name:        "roll",
		Description: "Roll dice with crazy formulas like `2d6+1d4*2`",
		Arguments: []cmd.Argument{
			{
				Name:         "formula",
				Description:  "Supports `2d6+1d4*2-3` and similar math",
				Required:     true,
				Type:         formulaType(),
				Autocomplete: suggestFormulas,
			},
			{
				Name:        "repeat",
				Description: "Roll the formula several times",
				Type:        cmd.IntegerRange(1, 5),
			},
			{
				Name:        "private",
				Description: "Only you see the result",
				Type:        cmd.Boolean(),
			},
		},
		Run: func(c *cmd.Context, args cmd.Args) (any, error) {
			f, _ := cmd.ArgAs[Formula](args, "formula")
			times := 1
			if args.Has("repeat") {
				times = int(args.Int("repeat"))
			}
			if limit := d.Settings.Get(c.Interaction.GuildID, settingMaxRepeat); int64(times) > limit {
				return nil, c.ReplyEphemeral(fmt.Sprintf("This server allows at most %d repeats.", limit))
			}

			totals := make([]int, 0, times)
			var sb strings.Builder
			fmt.Fprintf(&sb, "**User Input**:\t`%s`\n", f)
			for i := range times {
				r := f.Roll(rollDie)
				totals = append(totals, r.Total)
				if times > 1 {
					fmt.Fprintf(&sb, "**#%d**: %s = **%d**\n", i+1, r.Detail, r.Total)
				} else {
					fmt.Fprintf(&sb, "**Calculation**:\t%s\n**Result**:\t**%d**", r.Detail, r.Total)
				}
			}

			c.Logger().Debug().Str("formula", f.String()).Ints("totals", totals).Msg("dice rolled")
			return totals, c.Respond(cmd.Response{
				Kind: cmd.ResponseMessage,
				Message: &cmd.Message{
					Embeds:    []cmd.Embed{{Title: "🎲 Dice Roll", Description: strings.TrimRight(sb.String(), "\n"), Color: embedColor}},
					Ephemeral: args.Bool("private"),
				},
			})
		},
	}
}

var diceSides = []cmd.Choice{
	{Name: "d4", Value: int64(4)},
	{Name: "d6", Value: int64(6)},
	{Name: "d8", Value: int64(8)},
	{Name: "d10", Value: int64(10)},
	{Name: "d12", Value: int64(12)},
	{Name: "d20", Value: int64(20)},
}

func diceCommand(d Deps) *cmd.Command {
	return &cmd.Command{
		Name:        "dice",
		Description: "Roll a handful of standard dice",
		Arguments: []cmd.Argument{
			{Name: "sides", Description: "Die type", Required: true, Type: cmd.IntegerChoices(diceSides...)},
			{Name: "count", Description: "How many dice", Type: cmd.IntegerRange(1, 20)},
		},
		Run: func(c *cmd.Context, args cmd.Args) (any, error) {
			count := int64(1)
			if args.Has("count") {
				count = args.Int("count")
			}
			if limit := d.Settings.Get(c.Interaction.GuildID, settingMaxDice); count > limit {
				return nil, c.ReplyEphemeral(fmt.Sprintf("This server allows at most %d dice.", limit))
			}
			f, err := ParseFormula(fmt.Sprintf("%dd%d", count, args.Int("sides")))
			if err != nil {
				return nil, err
			}
			r := f.Roll(rollDie)
			return r.Total, c.Reply(fmt.Sprintf("🎲 %s = **%d**", r.Detail, r.Total))
		},
	}
}
