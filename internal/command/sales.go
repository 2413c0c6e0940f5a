package command

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/CarlosJoao1/vivae-erp-console/internal/erp"
	"github.com/CarlosJoao1/vivae-erp-console/internal/pricing"
)

func ordersCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "work with sales orders",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list sales orders",
				Action: func(c *cli.Context) error {
					if err := requireSession(d, c); err != nil {
						return err
					}
					orders, err := d.Sales.ListOrders(c.Context)
					if err != nil {
						return err
					}
					tw := newTable(c.App.Writer)
					fmt.Fprintln(tw, "ID\tNUMBER\tDATE\tCLIENT\tTOTAL")
					for _, o := range orders {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
							o.ID, orDash(o.Number), orDash(o.Date), orDash(o.Client),
							pricing.FormatAmount(o.Total))
					}
					return tw.Flush()
				},
			},
			{
				Name:      "show",
				Usage:     "show one order with its computed totals",
				ArgsUsage: "<order-id>",
				Action: func(c *cli.Context) error {
					if err := requireSession(d, c); err != nil {
						return err
					}
					id := c.Args().First()
					if id == "" {
						return cli.Exit("usage: orders show <order-id>", 1)
					}
					o, err := d.Sales.GetOrder(c.Context, id)
					if err != nil {
						return err
					}
					printOrderHeader(c, o.Number, o.Date, o.Client, o.Currency)
					printLines(c, o.Lines)
					printTotals(c.App.Writer, erp.OrderTotals(o))
					fmt.Fprintf(c.App.Writer, "pdf: %s\n", d.Sales.OrderPDFURL(o.ID))
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "create an order from a JSON document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "path to the order JSON"},
				},
				Action: func(c *cli.Context) error {
					if err := requireSession(d, c); err != nil {
						return err
					}
					var order erp.Order
					if err := readJSONFile(c.String("file"), &order); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					created, err := d.Sales.CreateOrder(c.Context, &order)
					if err != nil {
						return err
					}
					if created == nil {
						created = &order
					}
					fmt.Fprintf(c.App.Writer, "created order %s\n", orDash(created.Number))
					printTotals(c.App.Writer, erp.OrderTotals(created))
					return nil
				},
			},
			{
				Name:      "send",
				Usage:     "send an order by email",
				ArgsUsage: "<order-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Required: true},
					&cli.StringFlag{Name: "cc"},
				},
				Action: func(c *cli.Context) error {
					if err := requireSession(d, c); err != nil {
						return err
					}
					id := c.Args().First()
					if id == "" {
						return cli.Exit("usage: orders send <order-id> --to ...", 1)
					}
					req := erp.EmailRequest{To: c.String("to"), CC: c.String("cc")}
					if err := d.Sales.SendOrderEmail(c.Context, id, req); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "order %s sent to %s\n", id, req.To)
					return nil
				},
			},
		},
	}
}

func invoicesCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "invoices",
		Usage: "work with sales invoices",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list sales invoices",
				Action: func(c *cli.Context) error {
					if err := requireSession(d, c); err != nil {
						return err
					}
					invoices, err := d.Sales.ListInvoices(c.Context)
					if err != nil {
						return err
					}
					tw := newTable(c.App.Writer)
					fmt.Fprintln(tw, "ID\tNUMBER\tDATE\tCLIENT\tSTATUS\tTOTAL")
					for _, inv := range invoices {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
							inv.ID, orDash(inv.Number), orDash(inv.Date), orDash(inv.Client),
							orDash(inv.Status), pricing.FormatAmount(inv.Total))
					}
					return tw.Flush()
				},
			},
			{
				Name:      "show",
				Usage:     "show one invoice with its computed totals",
				ArgsUsage: "<invoice-id>",
				Action: func(c *cli.Context) error {
					if err := requireSession(d, c); err != nil {
						return err
					}
					id := c.Args().First()
					if id == "" {
						return cli.Exit("usage: invoices show <invoice-id>", 1)
					}
					inv, err := d.Sales.GetInvoice(c.Context, id)
					if err != nil {
						return err
					}
					printOrderHeader(c, inv.Number, inv.Date, inv.Client, inv.Currency)
					printLines(c, inv.Lines)
					printTotals(c.App.Writer, erp.InvoiceTotals(inv))
					fmt.Fprintf(c.App.Writer, "pdf: %s\n", d.Sales.InvoicePDFURL(inv.ID))
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "create an invoice from a JSON document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "path to the invoice JSON"},
				},
				Action: func(c *cli.Context) error {
					if err := requireSession(d, c); err != nil {
						return err
					}
					var invoice erp.Invoice
					if err := readJSONFile(c.String("file"), &invoice); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					created, err := d.Sales.CreateInvoice(c.Context, &invoice)
					if err != nil {
						return err
					}
					if created == nil {
						created = &invoice
					}
					fmt.Fprintf(c.App.Writer, "created invoice %s\n", orDash(created.Number))
					printTotals(c.App.Writer, erp.InvoiceTotals(created))
					return nil
				},
			},
		},
	}
}

func printOrderHeader(c *cli.Context, number, date, client, currency string) {
	tw := newTable(c.App.Writer)
	fmt.Fprintf(tw, "Number\t%s\n", orDash(number))
	fmt.Fprintf(tw, "Date\t%s\n", orDash(date))
	fmt.Fprintf(tw, "Client\t%s\n", orDash(client))
	fmt.Fprintf(tw, "Currency\t%s\n", orDash(currency))
	tw.Flush()
	fmt.Fprintln(c.App.Writer)
}

func printLines(c *cli.Context, lines []erp.Line) {
	tw := newTable(c.App.Writer)
	fmt.Fprintln(tw, "DESCRIPTION\tQTY\tPRICE\tDISCOUNT\tNET")
	for _, ln := range lines {
		pl := pricing.Line{
			Qty:            ln.Qty,
			Price:          ln.Price,
			DiscountRate:   ln.DiscountRate,
			DiscountAmount: ln.DiscountAmount,
		}
		gross := pricing.Gross(pl)
		fmt.Fprintf(tw, "%s\t%g\t%s\t%s\t%s\n",
			ln.Description, ln.Qty,
			pricing.FormatAmount(ln.Price),
			pricing.FormatAmount(pricing.LineDiscount(pl, gross)),
			pricing.FormatAmount(pricing.Net(pl)))
	}
	tw.Flush()
	fmt.Fprintln(c.App.Writer)
}

func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
