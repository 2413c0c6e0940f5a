package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

func loginCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "authenticate against the backend and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			username := c.String("username")
			if err := d.Session.Login(c.Context, username, c.String("password")); err != nil {
				return cli.Exit(fmt.Sprintf("login failed: %v", err), 1)
			}
			fmt.Fprintf(c.App.Writer, "logged in as %s\n", username)
			if id := d.Session.TenantID(); id != "" {
				fmt.Fprintf(c.App.Writer, "active tenant: %s\n", id)
			}
			return nil
		},
	}
}

func logoutCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "drop the stored session",
		Action: func(c *cli.Context) error {
			d.Session.Logout()
			fmt.Fprintln(c.App.Writer, "logged out")
			return nil
		},
	}
}

func whoamiCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the signed-in user",
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			user := d.Session.User()
			fmt.Fprintf(c.App.Writer, "user:   %s\n", user.Username)
			if user.Email != "" {
				fmt.Fprintf(c.App.Writer, "email:  %s\n", user.Email)
			}
			if len(user.Roles) > 0 {
				fmt.Fprintf(c.App.Writer, "roles:  %s\n", strings.Join(user.Roles, ", "))
			}
			if id := d.Session.TenantID(); id != "" {
				fmt.Fprintf(c.App.Writer, "tenant: %s\n", id)
			}
			return nil
		},
	}
}

func tenantCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "tenant",
		Usage: "inspect and switch the active tenant",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list the tenants available to the user",
				Action: func(c *cli.Context) error {
					if err := requireSession(d, c); err != nil {
						return err
					}
					active := d.Session.TenantID()
					tw := newTable(c.App.Writer)
					fmt.Fprintln(tw, "ID\tNAME\tACTIVE")
					for _, t := range d.Session.Tenants() {
						mark := ""
						if t.TenantID() == active {
							mark = "*"
						}
						fmt.Fprintf(tw, "%s\t%s\t%s\n", t.TenantID(), t.Name, mark)
					}
					return tw.Flush()
				},
			},
			{
				Name:      "use",
				Usage:     "switch the active tenant",
				ArgsUsage: "<tenant-id>",
				Action: func(c *cli.Context) error {
					if err := requireSession(d, c); err != nil {
						return err
					}
					id := c.Args().First()
					if id == "" {
						return cli.Exit("usage: tenant use <tenant-id>", 1)
					}
					for _, t := range d.Session.Tenants() {
						if t.TenantID() == id {
							d.Session.SetTenant(id)
							fmt.Fprintf(c.App.Writer, "active tenant: %s\n", id)
							return nil
						}
					}
					return cli.Exit(fmt.Sprintf("unknown tenant %q", id), 1)
				},
			},
		},
	}
}
