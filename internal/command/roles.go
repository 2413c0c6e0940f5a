package command

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"
)

func rolesCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "roles",
		Usage: "inspect role features and policies",
		Subcommands: []*cli.Command{
			{
				Name:  "features",
				Usage: "list the gatable application features",
				Action: func(c *cli.Context) error {
					if err := requireSession(d, c); err != nil {
						return err
					}
					features, err := d.Roles.ListFeatures(c.Context)
					if err != nil {
						return err
					}
					tw := newTable(c.App.Writer)
					fmt.Fprintln(tw, "KEY\tLABEL\tACTIONS")
					for _, f := range features {
						fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Key, f.Label, strings.Join(f.Actions, ", "))
					}
					return tw.Flush()
				},
			},
			{
				Name:  "policies",
				Usage: "show the role policy matrix",
				Action: func(c *cli.Context) error {
					if err := requireRole(d, c, "admin"); err != nil {
						return err
					}
					policies, err := d.Roles.GetPolicies(c.Context)
					if err != nil {
						return err
					}
					roles := make([]string, 0, len(policies))
					for role := range policies {
						roles = append(roles, role)
					}
					sort.Strings(roles)
					tw := newTable(c.App.Writer)
					fmt.Fprintln(tw, "ROLE\tFEATURE\tACTION\tALLOWED")
					for _, role := range roles {
						for feature, actions := range policies[role] {
							for action, allowed := range actions {
								fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", role, feature, action, allowed)
							}
						}
					}
					return tw.Flush()
				},
			},
		},
	}
}

func prefsCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "inspect and set user preferences",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "show the stored preferences",
				Action: func(c *cli.Context) error {
					if err := requireSession(d, c); err != nil {
						return err
					}
					prefs := d.Session.Preferences()
					keys := make([]string, 0, len(prefs))
					for k := range prefs {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					tw := newTable(c.App.Writer)
					fmt.Fprintln(tw, "KEY\tVALUE")
					for _, k := range keys {
						fmt.Fprintf(tw, "%s\t%v\n", k, prefs[k])
					}
					return tw.Flush()
				},
			},
			{
				Name:      "set",
				Usage:     "set one preference key",
				ArgsUsage: "<key> <value>",
				Action: func(c *cli.Context) error {
					if err := requireSession(d, c); err != nil {
						return err
					}
					key, raw := c.Args().Get(0), c.Args().Get(1)
					if key == "" || raw == "" {
						return cli.Exit("usage: prefs set <key> <value>", 1)
					}
					// Values that parse as JSON keep their type, anything
					// else is stored as a string.
					var value any
					if err := json.Unmarshal([]byte(raw), &value); err != nil {
						value = raw
					}
					if err := d.Session.SetPreference(c.Context, key, value); err != nil {
						d.Log.Warn("preference saved locally but not persisted")
					}
					fmt.Fprintf(c.App.Writer, "%s = %v\n", key, value)
					return nil
				},
			},
		},
	}
}
