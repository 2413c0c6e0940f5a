package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/CarlosJoao1/vivae-erp-console/internal/erp"
	"github.com/CarlosJoao1/vivae-erp-console/internal/pricing"
)

func clientsCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "clients",
		Usage: "manage clients and their price agreements",
		Subcommands: []*cli.Command{
			clientsListCommand(d),
			clientsShowCommand(d),
			clientsCreateCommand(d),
			clientsDeleteCommand(d),
			clientsPricesCommand(d),
			clientsResolvePriceCommand(d),
		},
	}
}

func clientsListCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list clients",
		Flags: listFlags(),
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			page, err := d.MasterData.ListClients(c.Context, listQuery(c))
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "ID\tCODE\tNAME\tTYPE\tEMAIL")
			for _, cl := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					cl.ID, orDash(cl.Code), cl.Name, orDash(cl.Type), orDash(cl.Email))
			}
			tw.Flush()
			fmt.Fprintf(c.App.Writer, "%d of %d clients\n", len(page.Items), page.Total)
			return nil
		},
	}
}

func clientsShowCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "show one client",
		ArgsUsage: "<client-id>",
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			id := c.Args().First()
			if id == "" {
				return cli.Exit("usage: clients show <client-id>", 1)
			}
			cl, err := d.MasterData.GetClient(c.Context, id)
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintf(tw, "ID\t%s\n", cl.ID)
			fmt.Fprintf(tw, "Code\t%s\n", orDash(cl.Code))
			fmt.Fprintf(tw, "Name\t%s\n", cl.Name)
			fmt.Fprintf(tw, "Type\t%s\n", orDash(cl.Type))
			fmt.Fprintf(tw, "Tax id\t%s\n", orDash(cl.TaxID))
			fmt.Fprintf(tw, "Email\t%s\n", orDash(cl.Email))
			fmt.Fprintf(tw, "Phone\t%s\n", orDash(cl.Phone))
			fmt.Fprintf(tw, "Country\t%s\n", orDash(cl.CountryCode))
			return tw.Flush()
		},
	}
}

func clientsCreateCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "create a client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "code"},
			&cli.StringFlag{Name: "type", Value: "clinic", Usage: "clinic, dentist or other"},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "phone"},
			&cli.StringFlag{Name: "tax-id"},
			&cli.StringFlag{Name: "country"},
		},
		Action: func(c *cli.Context) error {
			if err := requireRole(d, c, "admin"); err != nil {
				return err
			}
			created, err := d.MasterData.CreateClient(c.Context, &erp.Client{
				Name:        c.String("name"),
				Code:        c.String("code"),
				Type:        c.String("type"),
				Email:       c.String("email"),
				Phone:       c.String("phone"),
				TaxID:       c.String("tax-id"),
				CountryCode: c.String("country"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "created client %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}
}

func clientsDeleteCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "delete a client",
		ArgsUsage: "<client-id>",
		Action: func(c *cli.Context) error {
			if err := requireRole(d, c, "admin"); err != nil {
				return err
			}
			id := c.Args().First()
			if id == "" {
				return cli.Exit("usage: clients delete <client-id>", 1)
			}
			if err := d.MasterData.DeleteClient(c.Context, id); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "deleted client %s\n", id)
			return nil
		},
	}
}

func clientsPricesCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:      "prices",
		Usage:     "list a client's price agreements",
		ArgsUsage: "<client-id>",
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			id := c.Args().First()
			if id == "" {
				return cli.Exit("usage: clients prices <client-id>", 1)
			}
			prices, err := d.MasterData.ListClientPrices(c.Context, id)
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "SALE TYPE\tCODE\tMIN QTY\tUNIT PRICE\tFROM\tTO")
			for _, p := range prices {
				fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%s\t%s\n",
					orDash(p.SaleType), p.Code, p.MinQty,
					pricing.FormatAmount(p.UnitPrice),
					orDash(p.StartDate), orDash(p.EndDate))
			}
			return tw.Flush()
		},
	}
}

func clientsResolvePriceCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:      "resolve-price",
		Usage:     "resolve the unit price for an item, quantity and date",
		ArgsUsage: "<client-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sale-type", Required: true, Usage: "service or item"},
			&cli.StringFlag{Name: "code", Required: true},
			&cli.Float64Flag{Name: "qty", Value: 1},
			&cli.TimestampFlag{Name: "date", Layout: "2006-01-02", Usage: "pricing date (default today)"},
			&cli.BoolFlag{Name: "local", Usage: "resolve locally over the fetched agreement rows"},
		},
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			clientID := c.Args().First()
			if clientID == "" {
				return cli.Exit("usage: clients resolve-price <client-id> --sale-type ... --code ...", 1)
			}
			query := pricing.PriceQuery{
				SaleType: c.String("sale-type"),
				Code:     c.String("code"),
				Qty:      c.Float64("qty"),
				Date:     time.Now(),
			}
			if ts := c.Timestamp("date"); ts != nil {
				query.Date = *ts
			}

			var price *float64
			if c.Bool("local") {
				rows, err := d.MasterData.ListClientPrices(c.Context, clientID)
				if err != nil {
					return err
				}
				priceRows := make([]pricing.PriceRow, len(rows))
				for i, r := range rows {
					priceRows[i] = r.PriceRow()
				}
				price = pricing.ResolveUnitPrice(priceRows, query)
			} else {
				var err error
				price, err = d.MasterData.ResolvePrice(c.Context, clientID, query)
				if err != nil {
					return err
				}
			}

			if price == nil {
				fmt.Fprintln(c.App.Writer, "no agreement price applies")
				return nil
			}
			fmt.Fprintf(c.App.Writer, "unit price: %s\n", pricing.FormatAmount(*price))
			return nil
		},
	}
}
