// Package command builds the console's CLI surface. Every command is a thin
// presentation layer over the session manager and the typed API services.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/CarlosJoao1/vivae-erp-console/internal/erp"
	"github.com/CarlosJoao1/vivae-erp-console/internal/session"
	"github.com/CarlosJoao1/vivae-erp-console/pkg/config"
)

// Deps carries everything the commands need, wired once in main.
type Deps struct {
	Config     *config.Config
	Log        *zap.Logger
	Session    *session.Manager
	MasterData *erp.MasterDataService
	Sales      *erp.SalesService
	Production *erp.ProductionService
	Roles      *erp.RolesService
}

// NewApp builds the CLI command tree.
func NewApp(d *Deps) *cli.App {
	return &cli.App{
		Name:    d.Config.App.Name,
		Usage:   "terminal console for the Vivae ERP backend",
		Version: d.Config.App.Version,
		Commands: []*cli.Command{
			loginCommand(d),
			logoutCommand(d),
			whoamiCommand(d),
			tenantCommand(d),
			clientsCommand(d),
			ordersCommand(d),
			invoicesCommand(d),
			masterDataCommand(d),
			productionCommand(d),
			rolesCommand(d),
			prefsCommand(d),
		},
	}
}

// requireSession resumes a persisted session and fails with a clear message
// when none exists.
func requireSession(d *Deps, c *cli.Context) error {
	if d.Session.Token() == "" {
		return cli.Exit("not logged in: run 'login' first", 1)
	}
	if d.Session.User() == nil {
		if err := d.Session.Resume(c.Context); err != nil {
			return cli.Exit(fmt.Sprintf("session expired: %v (run 'login' again)", err), 1)
		}
	}
	return nil
}

// requireRole additionally checks the signed-in user's roles.
func requireRole(d *Deps, c *cli.Context, role string) error {
	if err := requireSession(d, c); err != nil {
		return err
	}
	if !d.Session.User().HasRole(role) {
		return cli.Exit(fmt.Sprintf("this command requires the %q role", role), 1)
	}
	return nil
}

// listFlags are the shared listing parameters.
func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "filter text"},
		&cli.IntFlag{Name: "page", Value: 1, Usage: "page number"},
		&cli.IntFlag{Name: "page-size", Value: 20, Usage: "rows per page"},
	}
}

func listQuery(c *cli.Context) erp.ListQuery {
	return erp.ListQuery{
		Q:        c.String("query"),
		Page:     c.Int("page"),
		PageSize: c.Int("page-size"),
	}
}
