package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func productionCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "production",
		Usage: "browse production work centers, BOMs, routings and orders",
		Subcommands: []*cli.Command{
			workCentersCommand(d),
			machineCentersCommand(d),
			bomsCommand(d),
			routingsCommand(d),
			productionOrdersCommand(d),
		},
	}
}

func workCentersCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "workcenters",
		Usage: "list work centers",
		Flags: listFlags(),
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			page, err := d.Production.ListWorkCenters(c.Context, listQuery(c))
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "CODE\tNAME\tCAPACITY\tBLOCKED")
			for _, wc := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%g\t%v\n", wc.Code, wc.Name, wc.Capacity, wc.Blocked)
			}
			return tw.Flush()
		},
	}
}

func machineCentersCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "machines",
		Usage: "list machine centers",
		Flags: listFlags(),
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			page, err := d.Production.ListMachineCenters(c.Context, listQuery(c))
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "CODE\tNAME\tWORK CENTER\tCAPACITY")
			for _, mc := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%g\n", mc.Code, mc.Name, orDash(mc.WorkCenterCode), mc.Capacity)
			}
			return tw.Flush()
		},
	}
}

func bomsCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "boms",
		Usage: "list and transition bills of materials",
		Flags: listFlags(),
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			page, err := d.Production.ListBOMs(c.Context, listQuery(c))
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "ID\tITEM\tVERSION\tSTATUS\tLINES")
			for _, b := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
					b.ID, b.ItemNo, orDash(b.Version), orDash(b.Status), len(b.Lines))
			}
			return tw.Flush()
		},
		Subcommands: []*cli.Command{
			transitionCommand(d, "certify", "certify a bill of materials", d.certifyBOM),
			transitionCommand(d, "close", "close a bill of materials", d.closeBOM),
		},
	}
}

func routingsCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "routings",
		Usage: "list and transition routings",
		Flags: listFlags(),
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			page, err := d.Production.ListRoutings(c.Context, listQuery(c))
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "ID\tNO\tDESCRIPTION\tSTATUS\tOPERATIONS")
			for _, r := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
					r.ID, r.No, orDash(r.Description), orDash(r.Status), len(r.Operations))
			}
			return tw.Flush()
		},
		Subcommands: []*cli.Command{
			transitionCommand(d, "certify", "certify a routing", d.certifyRouting),
			transitionCommand(d, "close", "close a routing", d.closeRouting),
		},
	}
}

func productionOrdersCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "list and transition production orders",
		Flags: listFlags(),
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			page, err := d.Production.ListProductionOrders(c.Context, listQuery(c))
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "ID\tNO\tITEM\tQTY\tSTATUS\tDUE")
			for _, po := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%s\t%s\n",
					po.ID, orDash(po.No), po.ItemNo, po.Qty, orDash(po.Status), orDash(po.DueDate))
			}
			return tw.Flush()
		},
		Subcommands: []*cli.Command{
			transitionCommand(d, "release", "release a production order", d.releaseOrder),
			transitionCommand(d, "finish", "finish a production order", d.finishOrder),
			transitionCommand(d, "cancel", "cancel a production order", d.cancelOrder),
			transitionCommand(d, "reopen", "reopen a production order", d.reopenOrder),
		},
	}
}

// transitionCommand wraps the one-shot status transitions, which all take a
// single document id.
func transitionCommand(d *Deps, name, usage string, run func(c *cli.Context, id string) error) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if err := requireRole(d, c, "admin"); err != nil {
				return err
			}
			id := c.Args().First()
			if id == "" {
				return cli.Exit(fmt.Sprintf("usage: %s <id>", name), 1)
			}
			if err := run(c, id); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s: ok\n", name)
			return nil
		},
	}
}

func (d *Deps) certifyBOM(c *cli.Context, id string) error {
	return d.Production.CertifyBOM(c.Context, id)
}

func (d *Deps) closeBOM(c *cli.Context, id string) error {
	return d.Production.CloseBOM(c.Context, id)
}

func (d *Deps) certifyRouting(c *cli.Context, id string) error {
	return d.Production.CertifyRouting(c.Context, id)
}

func (d *Deps) closeRouting(c *cli.Context, id string) error {
	return d.Production.CloseRouting(c.Context, id)
}

func (d *Deps) releaseOrder(c *cli.Context, id string) error {
	return d.Production.ReleaseProductionOrder(c.Context, id)
}

func (d *Deps) finishOrder(c *cli.Context, id string) error {
	return d.Production.FinishProductionOrder(c.Context, id)
}

func (d *Deps) cancelOrder(c *cli.Context, id string) error {
	return d.Production.CancelProductionOrder(c.Context, id)
}

func (d *Deps) reopenOrder(c *cli.Context, id string) error {
	return d.Production.ReopenProductionOrder(c.Context, id)
}
