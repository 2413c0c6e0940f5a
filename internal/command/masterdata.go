package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/CarlosJoao1/vivae-erp-console/internal/erp"
	"github.com/CarlosJoao1/vivae-erp-console/internal/pricing"
)

func masterDataCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "masterdata",
		Usage: "browse the master data catalogs",
		Subcommands: []*cli.Command{
			patientsListCommand(d),
			techniciansListCommand(d),
			servicesListCommand(d),
			countriesListCommand(d),
			namedCatalogCommand(d, "currencies", "list currencies", d.MasterData.ListCurrencies),
			namedCatalogCommand(d, "payment-types", "list payment types", d.MasterData.ListPaymentTypes),
			namedCatalogCommand(d, "payment-forms", "list payment forms", d.MasterData.ListPaymentForms),
			namedCatalogCommand(d, "payment-methods", "list payment methods", d.MasterData.ListPaymentMethods),
			seriesListCommand(d),
		},
	}
}

func patientsListCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "patients",
		Usage: "list patients",
		Flags: listFlags(),
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			page, err := d.MasterData.ListPatients(c.Context, listQuery(c))
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "ID\tNAME\tBIRTHDATE\tPHONE")
			for _, p := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, orDash(p.Birthdate), orDash(p.Phone))
			}
			tw.Flush()
			fmt.Fprintf(c.App.Writer, "%d of %d patients\n", len(page.Items), page.Total)
			return nil
		},
	}
}

func techniciansListCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "technicians",
		Usage: "list technicians",
		Flags: listFlags(),
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			page, err := d.MasterData.ListTechnicians(c.Context, listQuery(c))
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tWORK CENTER")
			for _, t := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Name, orDash(t.Email), orDash(t.WorkCenter))
			}
			tw.Flush()
			fmt.Fprintf(c.App.Writer, "%d of %d technicians\n", len(page.Items), page.Total)
			return nil
		},
	}
}

func servicesListCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "services",
		Usage: "list billable services",
		Flags: listFlags(),
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			page, err := d.MasterData.ListServices(c.Context, listQuery(c))
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "ID\tCODE\tNAME\tPRICE")
			for _, s := range page.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, orDash(s.Code), s.Name, pricing.FormatAmount(s.Price))
			}
			tw.Flush()
			fmt.Fprintf(c.App.Writer, "%d of %d services\n", len(page.Items), page.Total)
			return nil
		},
	}
}

func countriesListCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "countries",
		Usage: "list countries",
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			countries, err := d.MasterData.ListCountries(c.Context)
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "CODE\tNAME")
			for _, country := range countries {
				fmt.Fprintf(tw, "%s\t%s\n", country.Code, country.Name)
			}
			return tw.Flush()
		},
	}
}

// namedCatalogCommand renders the small id/code/name financial catalogs,
// which all share a shape.
func namedCatalogCommand(d *Deps, name, usage string, fetch func(ctx context.Context) ([]erp.SimpleNamed, error)) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			items, err := fetch(c.Context)
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "ID\tCODE\tNAME")
			for _, item := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", item.ID, orDash(item.Code), item.Name)
			}
			return tw.Flush()
		},
	}
}

func seriesListCommand(d *Deps) *cli.Command {
	return &cli.Command{
		Name:  "series",
		Usage: "list document numbering series",
		Action: func(c *cli.Context) error {
			if err := requireSession(d, c); err != nil {
				return err
			}
			series, err := d.MasterData.ListSeries(c.Context)
			if err != nil {
				return err
			}
			tw := newTable(c.App.Writer)
			fmt.Fprintln(tw, "ID\tCODE\tNAME\tPREFIX\tNEXT")
			for _, s := range series {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", s.ID, orDash(s.Code), s.Name, orDash(s.Prefix), s.NextNum)
			}
			return tw.Flush()
		},
	}
}
